package grpc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/folio-backend/internal/domain"
)

func parseID(ctx context.Context, field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalidArgument(ctx, "invalid %s format: %v", field, err)
	}
	return id, nil
}

func portionsFromProto(ctx context.Context, in []Portion) ([]domain.PortionUpdate, error) {
	out := make([]domain.PortionUpdate, 0, len(in))
	for _, p := range in {
		id, err := parseID(ctx, "id", p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.PortionUpdate{ID: id, Portion: p.Portion})
	}
	return out, nil
}

func returnToProto(r domain.ExpectedReturn) ExpectedReturn {
	return ExpectedReturn{Min: r.Min, Max: r.Max}
}

func returnFromProto(r *ExpectedReturn) *domain.ExpectedReturn {
	if r == nil {
		return nil
	}
	return &domain.ExpectedReturn{Min: r.Min, Max: r.Max}
}

// treeToProto nests items under their categories, keeping stored order
func treeToProto(tree *domain.PortfolioTree) *PortfolioResponse {
	byCategory := make(map[uuid.UUID][]Item, len(tree.Categories))
	for _, it := range tree.Items {
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], itemToProto(it))
	}

	categories := make([]Category, 0, len(tree.Categories))
	for _, c := range tree.Categories {
		msg := categoryToProto(c)
		msg.Items = byCategory[c.ID]
		categories = append(categories, msg)
	}

	return &PortfolioResponse{
		ID:             tree.ID.String(),
		Name:           tree.Name,
		Description:    tree.Description,
		ExpectedReturn: returnToProto(tree.ExpectedReturn),
		IsCustomized:   tree.IsCustomized,
		UpdatedAt:      tree.UpdatedAt.Format(time.RFC3339),
		Categories:     categories,
	}
}

func categoryToProto(c domain.Category) Category {
	return Category{
		ID:          c.ID.String(),
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		Portion:     float64(c.Portion),
	}
}

func itemToProto(it domain.Item) Item {
	msg := Item{
		ID:             it.ID.String(),
		CategoryID:     it.CategoryID.String(),
		Name:           it.Name,
		Description:    it.Description,
		Portion:        float64(it.Portion),
		ExpectedReturn: returnToProto(it.ExpectedReturn),
		IsCustom:       it.IsCustom,
		IsCustomReturn: it.IsCustomReturn,
	}
	if it.MasterItemID != nil {
		msg.MasterItemID = it.MasterItemID.String()
	}
	return msg
}

func presetsToProto(presets []domain.Preset) *PresetsResponse {
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		out = append(out, Preset{
			ID:                  p.ID.String(),
			Code:                p.Code,
			Name:                p.Name,
			Description:         p.Description,
			TargetReturnPercent: p.TargetReturnPercent,
			ExpectedReturn:      returnToProto(p.ExpectedReturn),
		})
	}
	return &PresetsResponse{Presets: out}
}

func planToProto(p *domain.InvestmentPlan) *PlanResponse {
	return &PlanResponse{
		ID:             p.ID.String(),
		Version:        p.Version,
		InitialAmount:  p.InitialAmount.String(),
		MonthlyAmount:  p.MonthlyAmount.String(),
		StartDate:      p.StartDate.Format(dateLayout),
		PaymentDay:     p.PaymentDay,
		Period:         p.Period,
		ExpectedReturn: p.ExpectedReturn.String(),
		TargetAmount:   p.TargetAmount.String(),
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
	}
}

func scheduleToProto(s domain.PaymentSchedule) PaymentSchedule {
	msg := PaymentSchedule{
		ID:           s.ID.String(),
		PlanID:       s.PlanID.String(),
		Sequence:     s.Sequence,
		ExpectedDate: s.ExpectedDate.Format(dateLayout),
		Amount:       s.Amount.String(),
		Status:       string(s.Status),
	}
	if s.ActualPaidAmount != nil {
		msg.ActualPaidAmount = s.ActualPaidAmount.String()
	}
	if s.ActualPaidDate != nil {
		msg.ActualPaidDate = s.ActualPaidDate.Format(time.RFC3339)
	}
	return msg
}

func schedulesToProto(in []domain.PaymentSchedule) *SchedulesResponse {
	out := make([]PaymentSchedule, 0, len(in))
	for _, s := range in {
		out = append(out, scheduleToProto(s))
	}
	return &SchedulesResponse{Schedules: out}
}
