package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The report API is described with protobuf well-known types, so the service
// descriptor is declared here instead of being generated from a .proto file.
const (
	ReportServiceName = "satisfaction.v1.ReportService"

	ComputeScoresMethod  = "/" + ReportServiceName + "/ComputeScores"
	RenderChartMethod    = "/" + ReportServiceName + "/RenderChart"
	ListCategoriesMethod = "/" + ReportServiceName + "/ListCategories"

	// FilenameHeader carries the export file name of a RenderChart response.
	FilenameHeader = "x-export-filename"
)

// ReportServiceServer is the server API for the report service.
//
// ComputeScores and RenderChart take {"dataset", "category", "month"};
// ListCategories takes {"dataset"}.
type ReportServiceServer interface {
	ComputeScores(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderChart(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
	ListCategories(context.Context, *structpb.Struct) (*structpb.ListValue, error)
}

func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportServiceDesc, srv)
}

var ReportServiceDesc = grpc.ServiceDesc{
	ServiceName: ReportServiceName,
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ComputeScores", Handler: computeScoresHandler},
		{MethodName: "RenderChart", Handler: renderChartHandler},
		{MethodName: "ListCategories", Handler: listCategoriesHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func computeScoresHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).ComputeScores(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ComputeScoresMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).ComputeScores(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func renderChartHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).RenderChart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RenderChartMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).RenderChart(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listCategoriesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).ListCategories(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListCategoriesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ReportServiceServer).ListCategories(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// ReportServiceClient calls the report service over a client connection.
type ReportServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewReportServiceClient(cc grpc.ClientConnInterface) *ReportServiceClient {
	return &ReportServiceClient{cc: cc}
}

func (c *ReportServiceClient) ComputeScores(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ComputeScoresMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReportServiceClient) RenderChart(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, RenderChartMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReportServiceClient) ListCategories(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListCategoriesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
