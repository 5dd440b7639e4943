package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "folio.v1.PortfolioService"

// PortfolioServiceServer is the server API of folio.v1.PortfolioService
type PortfolioServiceServer interface {
	GetPortfolio(context.Context, *Empty) (*PortfolioResponse, error)
	CreateFromPreset(context.Context, *CreateFromPresetRequest) (*PortfolioResponse, error)
	GetRecommendations(context.Context, *Empty) (*PresetsResponse, error)
	FindPresets(context.Context, *FindPresetsRequest) (*PresetsResponse, error)

	GetCategories(context.Context, *Empty) (*CategoriesResponse, error)
	UpdateCategoryPortions(context.Context, *UpdateCategoryPortionsRequest) (*Empty, error)
	AddCategory(context.Context, *AddCategoryRequest) (*Category, error)
	DeleteCategory(context.Context, *CategoryRequest) (*Empty, error)
	UpdateCategoryInfo(context.Context, *UpdateCategoryInfoRequest) (*Empty, error)
	GetAvailableCategories(context.Context, *Empty) (*MasterCategoriesResponse, error)

	GetItems(context.Context, *GetItemsRequest) (*ItemsResponse, error)
	UpdateItemPortions(context.Context, *UpdateItemPortionsRequest) (*Empty, error)
	AddItem(context.Context, *AddItemRequest) (*Item, error)
	DeleteItem(context.Context, *ItemRequest) (*Empty, error)
	UpdateItemInfo(context.Context, *UpdateItemInfoRequest) (*Empty, error)
	GetAvailableItems(context.Context, *CategoryRequest) (*MasterItemsResponse, error)

	AssessRisk(context.Context, *AssessRiskRequest) (*RiskTypeResponse, error)
	GetRiskType(context.Context, *Empty) (*RiskTypeResponse, error)
	ClearRiskType(context.Context, *Empty) (*Empty, error)
	CreatePlan(context.Context, *PlanRequest) (*PlanResponse, error)
	UpdatePlan(context.Context, *PlanRequest) (*PlanResponse, error)
	GetPlan(context.Context, *Empty) (*PlanResponse, error)
	ClearPlan(context.Context, *Empty) (*Empty, error)

	GetSchedules(context.Context, *Empty) (*SchedulesResponse, error)
	RecordPayment(context.Context, *RecordPaymentRequest) (*PaymentSchedule, error)
	GetPaidPayments(context.Context, *Empty) (*SchedulesResponse, error)
	GetProgress(context.Context, *Empty) (*ProgressResponse, error)
}

type srv = PortfolioServiceServer

// ServiceDesc describes folio.v1.PortfolioService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PortfolioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("GetPortfolio", srv.GetPortfolio),
		unary("CreateFromPreset", srv.CreateFromPreset),
		unary("GetRecommendations", srv.GetRecommendations),
		unary("FindPresets", srv.FindPresets),
		unary("GetCategories", srv.GetCategories),
		unary("UpdateCategoryPortions", srv.UpdateCategoryPortions),
		unary("AddCategory", srv.AddCategory),
		unary("DeleteCategory", srv.DeleteCategory),
		unary("UpdateCategoryInfo", srv.UpdateCategoryInfo),
		unary("GetAvailableCategories", srv.GetAvailableCategories),
		unary("GetItems", srv.GetItems),
		unary("UpdateItemPortions", srv.UpdateItemPortions),
		unary("AddItem", srv.AddItem),
		unary("DeleteItem", srv.DeleteItem),
		unary("UpdateItemInfo", srv.UpdateItemInfo),
		unary("GetAvailableItems", srv.GetAvailableItems),
		unary("AssessRisk", srv.AssessRisk),
		unary("GetRiskType", srv.GetRiskType),
		unary("ClearRiskType", srv.ClearRiskType),
		unary("CreatePlan", srv.CreatePlan),
		unary("UpdatePlan", srv.UpdatePlan),
		unary("GetPlan", srv.GetPlan),
		unary("ClearPlan", srv.ClearPlan),
		unary("GetSchedules", srv.GetSchedules),
		unary("RecordPayment", srv.RecordPayment),
		unary("GetPaidPayments", srv.GetPaidPayments),
		unary("GetProgress", srv.GetProgress),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "folio/v1/portfolio",
}

// RegisterPortfolioServiceServer registers the service implementation on s
func RegisterPortfolioServiceServer(s grpc.ServiceRegistrar, impl PortfolioServiceServer) {
	s.RegisterService(&ServiceDesc, impl)
}

// FullMethod returns the /service/method path of an RPC
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unary builds the method descriptor of one RPC from a method expression
func unary[Req, Resp any](name string, call func(PortfolioServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(impl any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(impl.(PortfolioServiceServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: impl, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// PortfolioServiceClient is a typed client of folio.v1.PortfolioService.
// Every call uses the json content-subtype.
type PortfolioServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPortfolioServiceClient creates a client on an existing connection
func NewPortfolioServiceClient(cc grpc.ClientConnInterface) *PortfolioServiceClient {
	return &PortfolioServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PortfolioServiceClient) GetPortfolio(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PortfolioResponse, error) {
	return invoke[PortfolioResponse](ctx, c.cc, "GetPortfolio", in, opts)
}

func (c *PortfolioServiceClient) CreateFromPreset(ctx context.Context, in *CreateFromPresetRequest, opts ...grpc.CallOption) (*PortfolioResponse, error) {
	return invoke[PortfolioResponse](ctx, c.cc, "CreateFromPreset", in, opts)
}

func (c *PortfolioServiceClient) GetRecommendations(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PresetsResponse, error) {
	return invoke[PresetsResponse](ctx, c.cc, "GetRecommendations", in, opts)
}

func (c *PortfolioServiceClient) FindPresets(ctx context.Context, in *FindPresetsRequest, opts ...grpc.CallOption) (*PresetsResponse, error) {
	return invoke[PresetsResponse](ctx, c.cc, "FindPresets", in, opts)
}

func (c *PortfolioServiceClient) GetCategories(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*CategoriesResponse, error) {
	return invoke[CategoriesResponse](ctx, c.cc, "GetCategories", in, opts)
}

func (c *PortfolioServiceClient) UpdateCategoryPortions(ctx context.Context, in *UpdateCategoryPortionsRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "UpdateCategoryPortions", in, opts)
}

func (c *PortfolioServiceClient) AddCategory(ctx context.Context, in *AddCategoryRequest, opts ...grpc.CallOption) (*Category, error) {
	return invoke[Category](ctx, c.cc, "AddCategory", in, opts)
}

func (c *PortfolioServiceClient) DeleteCategory(ctx context.Context, in *CategoryRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteCategory", in, opts)
}

func (c *PortfolioServiceClient) UpdateCategoryInfo(ctx context.Context, in *UpdateCategoryInfoRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "UpdateCategoryInfo", in, opts)
}

func (c *PortfolioServiceClient) GetAvailableCategories(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*MasterCategoriesResponse, error) {
	return invoke[MasterCategoriesResponse](ctx, c.cc, "GetAvailableCategories", in, opts)
}

func (c *PortfolioServiceClient) GetItems(ctx context.Context, in *GetItemsRequest, opts ...grpc.CallOption) (*ItemsResponse, error) {
	return invoke[ItemsResponse](ctx, c.cc, "GetItems", in, opts)
}

func (c *PortfolioServiceClient) UpdateItemPortions(ctx context.Context, in *UpdateItemPortionsRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "UpdateItemPortions", in, opts)
}

func (c *PortfolioServiceClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*Item, error) {
	return invoke[Item](ctx, c.cc, "AddItem", in, opts)
}

func (c *PortfolioServiceClient) DeleteItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteItem", in, opts)
}

func (c *PortfolioServiceClient) UpdateItemInfo(ctx context.Context, in *UpdateItemInfoRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "UpdateItemInfo", in, opts)
}

func (c *PortfolioServiceClient) GetAvailableItems(ctx context.Context, in *CategoryRequest, opts ...grpc.CallOption) (*MasterItemsResponse, error) {
	return invoke[MasterItemsResponse](ctx, c.cc, "GetAvailableItems", in, opts)
}

func (c *PortfolioServiceClient) AssessRisk(ctx context.Context, in *AssessRiskRequest, opts ...grpc.CallOption) (*RiskTypeResponse, error) {
	return invoke[RiskTypeResponse](ctx, c.cc, "AssessRisk", in, opts)
}

func (c *PortfolioServiceClient) GetRiskType(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*RiskTypeResponse, error) {
	return invoke[RiskTypeResponse](ctx, c.cc, "GetRiskType", in, opts)
}

func (c *PortfolioServiceClient) ClearRiskType(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "ClearRiskType", in, opts)
}

func (c *PortfolioServiceClient) CreatePlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*PlanResponse, error) {
	return invoke[PlanResponse](ctx, c.cc, "CreatePlan", in, opts)
}

func (c *PortfolioServiceClient) UpdatePlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*PlanResponse, error) {
	return invoke[PlanResponse](ctx, c.cc, "UpdatePlan", in, opts)
}

func (c *PortfolioServiceClient) GetPlan(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*PlanResponse, error) {
	return invoke[PlanResponse](ctx, c.cc, "GetPlan", in, opts)
}

func (c *PortfolioServiceClient) ClearPlan(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "ClearPlan", in, opts)
}

func (c *PortfolioServiceClient) GetSchedules(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SchedulesResponse, error) {
	return invoke[SchedulesResponse](ctx, c.cc, "GetSchedules", in, opts)
}

func (c *PortfolioServiceClient) RecordPayment(ctx context.Context, in *RecordPaymentRequest, opts ...grpc.CallOption) (*PaymentSchedule, error) {
	return invoke[PaymentSchedule](ctx, c.cc, "RecordPayment", in, opts)
}

func (c *PortfolioServiceClient) GetPaidPayments(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*SchedulesResponse, error) {
	return invoke[SchedulesResponse](ctx, c.cc, "GetPaidPayments", in, opts)
}

func (c *PortfolioServiceClient) GetProgress(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ProgressResponse, error) {
	return invoke[ProgressResponse](ctx, c.cc, "GetProgress", in, opts)
}
