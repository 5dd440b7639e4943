package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/simaogato/folio-backend/internal/domain"
	"github.com/simaogato/folio-backend/internal/usecase/payment"
	"github.com/simaogato/folio-backend/internal/usecase/portfolio"
	"github.com/simaogato/folio-backend/internal/usecase/profile"
)

const dateLayout = "2006-01-02"

// Server implements the folio.v1.PortfolioService gRPC server
type Server struct {
	PortfolioService *portfolio.PortfolioService
	ProfileService   *profile.ProfileService
	PaymentService   *payment.PaymentService
	Log              zerolog.Logger
}

// NewServer creates a new gRPC server instance
func NewServer(
	portfolioService *portfolio.PortfolioService,
	profileService *profile.ProfileService,
	paymentService *payment.PaymentService,
	log zerolog.Logger,
) *Server {
	return &Server{
		PortfolioService: portfolioService,
		ProfileService:   profileService,
		PaymentService:   paymentService,
		Log:              log.With().Str("component", "grpc").Logger(),
	}
}

var _ PortfolioServiceServer = (*Server)(nil)

// userID returns the caller set by AuthInterceptor
func (s *Server) userID(ctx context.Context) (uuid.UUID, error) {
	id, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, invalidArgument(ctx, "missing user id")
	}
	return id, nil
}

// portfolioID resolves the caller's portfolio
func (s *Server) portfolioID(ctx context.Context) (uuid.UUID, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := s.PortfolioService.GetPortfolioID(ctx, userID)
	if err != nil {
		return uuid.Nil, s.mapError(ctx, err)
	}
	return id, nil
}

// GetPortfolio handles the GetPortfolio RPC
func (s *Server) GetPortfolio(ctx context.Context, _ *Empty) (*PortfolioResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := s.PortfolioService.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return treeToProto(tree), nil
}

// CreateFromPreset handles the CreateFromPreset RPC
func (s *Server) CreateFromPreset(ctx context.Context, req *CreateFromPresetRequest) (*PortfolioResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if req.PresetCode == "" {
		return nil, invalidArgument(ctx, "preset_code is required")
	}
	tree, err := s.PortfolioService.CreateFromPreset(ctx, userID, req.PresetCode)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return treeToProto(tree), nil
}

// GetRecommendations handles the GetRecommendations RPC
func (s *Server) GetRecommendations(ctx context.Context, _ *Empty) (*PresetsResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	presets, err := s.PortfolioService.GetRecommendations(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return presetsToProto(presets), nil
}

// FindPresets handles the FindPresets RPC
func (s *Server) FindPresets(ctx context.Context, req *FindPresetsRequest) (*PresetsResponse, error) {
	presets, err := s.PortfolioService.FindPresetsNear(ctx, req.TargetReturnPercent, req.Limit)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return presetsToProto(presets), nil
}

// GetCategories handles the GetCategories RPC
func (s *Server) GetCategories(ctx context.Context, _ *Empty) (*CategoriesResponse, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.PortfolioService.GetCategories(ctx, portfolioID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryToProto(c))
	}
	return &CategoriesResponse{Categories: out}, nil
}

// UpdateCategoryPortions handles the UpdateCategoryPortions RPC
func (s *Server) UpdateCategoryPortions(ctx context.Context, req *UpdateCategoryPortionsRequest) (*Empty, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	updates, err := portionsFromProto(ctx, req.Portions)
	if err != nil {
		return nil, err
	}
	if err := s.PortfolioService.UpdateCategoryPortions(ctx, portfolioID, updates); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// AddCategory handles the AddCategory RPC
func (s *Server) AddCategory(ctx context.Context, req *AddCategoryRequest) (*Category, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}

	var src domain.NewCategorySource
	if req.MasterCategoryID != "" {
		id, err := uuid.Parse(req.MasterCategoryID)
		if err != nil {
			return nil, invalidArgument(ctx, "invalid master_category_id format: %v", err)
		}
		src.MasterCategoryID = &id
	}
	if req.Custom != nil {
		src.Custom = &domain.CustomCategory{Name: req.Custom.Name, Description: req.Custom.Description}
	}

	c, err := s.PortfolioService.AddCategory(ctx, portfolioID, src)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := categoryToProto(*c)
	return &out, nil
}

// DeleteCategory handles the DeleteCategory RPC
func (s *Server) DeleteCategory(ctx context.Context, req *CategoryRequest) (*Empty, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID(ctx, "category_id", req.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.PortfolioService.DeleteCategory(ctx, portfolioID, categoryID); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// UpdateCategoryInfo handles the UpdateCategoryInfo RPC
func (s *Server) UpdateCategoryInfo(ctx context.Context, req *UpdateCategoryInfoRequest) (*Empty, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID(ctx, "category_id", req.CategoryID)
	if err != nil {
		return nil, err
	}
	info := domain.CategoryInfo{Name: req.Name, Description: req.Description}
	if err := s.PortfolioService.UpdateCategoryInfo(ctx, portfolioID, categoryID, info); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// GetAvailableCategories handles the GetAvailableCategories RPC
func (s *Server) GetAvailableCategories(ctx context.Context, _ *Empty) (*MasterCategoriesResponse, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.PortfolioService.GetAvailableCategories(ctx, portfolioID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := make([]MasterCategory, 0, len(categories))
	for _, mc := range categories {
		out = append(out, MasterCategory{ID: mc.ID.String(), Code: mc.Code, Name: mc.Name, Description: mc.Description})
	}
	return &MasterCategoriesResponse{Categories: out}, nil
}

// GetItems handles the GetItems RPC
func (s *Server) GetItems(ctx context.Context, req *GetItemsRequest) (*ItemsResponse, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}

	if req.CategoryID == "" {
		items, err := s.PortfolioService.GetItemsAbsolute(ctx, portfolioID)
		if err != nil {
			return nil, s.mapError(ctx, err)
		}
		out := make([]Item, 0, len(items))
		for _, it := range items {
			out = append(out, itemToProto(it))
		}
		return &ItemsResponse{Items: out}, nil
	}

	categoryID, err := parseID(ctx, "category_id", req.CategoryID)
	if err != nil {
		return nil, err
	}
	items, err := s.PortfolioService.GetItemsRelative(ctx, portfolioID, categoryID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		msg := itemToProto(it.Item)
		rel := float64(it.RelativePortion)
		msg.RelativePortion = &rel
		out = append(out, msg)
	}
	return &ItemsResponse{Items: out}, nil
}

// UpdateItemPortions handles the UpdateItemPortions RPC
func (s *Server) UpdateItemPortions(ctx context.Context, req *UpdateItemPortionsRequest) (*Empty, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	updates, err := portionsFromProto(ctx, req.Portions)
	if err != nil {
		return nil, err
	}

	if req.CategoryID == "" {
		err = s.PortfolioService.UpdateItemAbsolutePortions(ctx, portfolioID, updates)
	} else {
		categoryID, perr := parseID(ctx, "category_id", req.CategoryID)
		if perr != nil {
			return nil, perr
		}
		err = s.PortfolioService.UpdateItemRelativePortions(ctx, portfolioID, categoryID, updates)
	}
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// AddItem handles the AddItem RPC
func (s *Server) AddItem(ctx context.Context, req *AddItemRequest) (*Item, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID(ctx, "category_id", req.CategoryID)
	if err != nil {
		return nil, err
	}

	var src domain.NewItemSource
	if req.MasterItemID != "" {
		id, err := uuid.Parse(req.MasterItemID)
		if err != nil {
			return nil, invalidArgument(ctx, "invalid master_item_id format: %v", err)
		}
		src.MasterItemID = &id
	}
	if req.Custom != nil {
		src.Custom = &domain.CustomItem{
			Name:           req.Custom.Name,
			Description:    req.Custom.Description,
			ExpectedReturn: returnFromProto(req.Custom.ExpectedReturn),
		}
	}

	it, err := s.PortfolioService.AddItem(ctx, portfolioID, categoryID, src)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := itemToProto(*it)
	return &out, nil
}

// DeleteItem handles the DeleteItem RPC
func (s *Server) DeleteItem(ctx context.Context, req *ItemRequest) (*Empty, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	itemID, err := parseID(ctx, "item_id", req.ItemID)
	if err != nil {
		return nil, err
	}
	if err := s.PortfolioService.DeleteItem(ctx, portfolioID, itemID); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// UpdateItemInfo handles the UpdateItemInfo RPC
func (s *Server) UpdateItemInfo(ctx context.Context, req *UpdateItemInfoRequest) (*Empty, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	itemID, err := parseID(ctx, "item_id", req.ItemID)
	if err != nil {
		return nil, err
	}
	info := domain.ItemInfo{
		Name:           req.Name,
		Description:    req.Description,
		ExpectedReturn: returnFromProto(req.ExpectedReturn),
	}
	if err := s.PortfolioService.UpdateItemInfo(ctx, portfolioID, itemID, info); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// GetAvailableItems handles the GetAvailableItems RPC
func (s *Server) GetAvailableItems(ctx context.Context, req *CategoryRequest) (*MasterItemsResponse, error) {
	portfolioID, err := s.portfolioID(ctx)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID(ctx, "category_id", req.CategoryID)
	if err != nil {
		return nil, err
	}
	items, err := s.PortfolioService.GetAvailableItems(ctx, portfolioID, categoryID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := make([]MasterItem, 0, len(items))
	for _, mi := range items {
		out = append(out, MasterItem{
			ID:               mi.ID.String(),
			MasterCategoryID: mi.MasterCategoryID.String(),
			Name:             mi.Name,
			Description:      mi.Description,
			ExpectedReturn:   returnToProto(mi.ExpectedReturn),
		})
	}
	return &MasterItemsResponse{Items: out}, nil
}

// AssessRisk handles the AssessRisk RPC
func (s *Server) AssessRisk(ctx context.Context, req *AssessRiskRequest) (*RiskTypeResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	riskType, err := s.ProfileService.AssessRisk(ctx, userID, req.Score)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &RiskTypeResponse{RiskType: string(riskType)}, nil
}

// GetRiskType handles the GetRiskType RPC
func (s *Server) GetRiskType(ctx context.Context, _ *Empty) (*RiskTypeResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	riskType, err := s.ProfileService.GetRiskType(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	if riskType == nil {
		return &RiskTypeResponse{}, nil
	}
	return &RiskTypeResponse{RiskType: string(*riskType)}, nil
}

// ClearRiskType handles the ClearRiskType RPC
func (s *Server) ClearRiskType(ctx context.Context, _ *Empty) (*Empty, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ProfileService.ClearRiskType(ctx, userID); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// CreatePlan handles the CreatePlan RPC
func (s *Server) CreatePlan(ctx context.Context, req *PlanRequest) (*PlanResponse, error) {
	plan, err := s.planFromProto(ctx, req)
	if err != nil {
		return nil, err
	}
	stored, err := s.ProfileService.CreatePlan(ctx, plan)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return planToProto(stored), nil
}

// UpdatePlan handles the UpdatePlan RPC
func (s *Server) UpdatePlan(ctx context.Context, req *PlanRequest) (*PlanResponse, error) {
	plan, err := s.planFromProto(ctx, req)
	if err != nil {
		return nil, err
	}
	stored, err := s.ProfileService.UpdatePlan(ctx, plan)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return planToProto(stored), nil
}

// GetPlan handles the GetPlan RPC
func (s *Server) GetPlan(ctx context.Context, _ *Empty) (*PlanResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := s.ProfileService.GetPlan(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return planToProto(plan), nil
}

// ClearPlan handles the ClearPlan RPC
func (s *Server) ClearPlan(ctx context.Context, _ *Empty) (*Empty, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ProfileService.ClearPlan(ctx, userID); err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &Empty{}, nil
}

// GetSchedules handles the GetSchedules RPC
func (s *Server) GetSchedules(ctx context.Context, _ *Empty) (*SchedulesResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	schedules, err := s.PaymentService.GetSchedules(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return schedulesToProto(schedules), nil
}

// RecordPayment handles the RecordPayment RPC
func (s *Server) RecordPayment(ctx context.Context, req *RecordPaymentRequest) (*PaymentSchedule, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	scheduleID, err := parseID(ctx, "schedule_id", req.ScheduleID)
	if err != nil {
		return nil, err
	}

	// Parse amount from string to decimal
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, invalidArgument(ctx, "invalid amount format: %v", err)
	}

	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, err = time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			return nil, invalidArgument(ctx, "invalid paid_at format: %v", err)
		}
	}

	schedule, err := s.PaymentService.RecordPayment(ctx, userID, scheduleID, amount, paidAt)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	out := scheduleToProto(*schedule)
	return &out, nil
}

// GetPaidPayments handles the GetPaidPayments RPC
func (s *Server) GetPaidPayments(ctx context.Context, _ *Empty) (*SchedulesResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.PaymentService.GetPaidPayments(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return schedulesToProto(paid), nil
}

// GetProgress handles the GetProgress RPC
func (s *Server) GetProgress(ctx context.Context, _ *Empty) (*ProgressResponse, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.PaymentService.GetProgress(ctx, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	return &ProgressResponse{
		TotalPrincipal:    p.TotalPrincipal.String(),
		CurrentAssetValue: p.CurrentAssetValue.String(),
		TotalReturnAmount: p.TotalReturnAmount.String(),
		TotalReturnRate:   p.TotalReturnRate.StringFixed(2),
		TotalProgressRate: p.TotalProgressRate.StringFixed(2),
		PaidCount:         p.PaidCount,
		RemainingPeriod:   p.RemainingPeriod,
		Currency:          p.Currency,
		Display: ProgressDisplay{
			TotalPrincipal:    p.Display.TotalPrincipal,
			CurrentAssetValue: p.Display.CurrentAssetValue,
			TotalReturnAmount: p.Display.TotalReturnAmount,
			TargetAmount:      p.Display.TargetAmount,
		},
	}, nil
}

// planFromProto parses a plan request for the calling user
func (s *Server) planFromProto(ctx context.Context, req *PlanRequest) (domain.InvestmentPlan, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return domain.InvestmentPlan{}, err
	}

	plan := domain.InvestmentPlan{
		UserID:     userID,
		PaymentDay: req.PaymentDay,
		Period:     req.Period,
	}

	if req.InitialAmount != "" {
		if plan.InitialAmount, err = decimal.NewFromString(req.InitialAmount); err != nil {
			return plan, invalidArgument(ctx, "invalid initial_amount format: %v", err)
		}
	}
	if plan.MonthlyAmount, err = decimal.NewFromString(req.MonthlyAmount); err != nil {
		return plan, invalidArgument(ctx, "invalid monthly_amount format: %v", err)
	}
	if plan.ExpectedReturn, err = decimal.NewFromString(req.ExpectedReturn); err != nil {
		return plan, invalidArgument(ctx, "invalid expected_return format: %v", err)
	}
	if plan.TargetAmount, err = decimal.NewFromString(req.TargetAmount); err != nil {
		return plan, invalidArgument(ctx, "invalid target_amount format: %v", err)
	}
	if plan.StartDate, err = time.Parse(dateLayout, req.StartDate); err != nil {
		return plan, invalidArgument(ctx, "invalid start_date format: %v", err)
	}
	return plan, nil
}
