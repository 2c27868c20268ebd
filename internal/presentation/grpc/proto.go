package grpc

// proto.go defines the gRPC server interface for bib/creditrisk/v1/credit_risk.proto.
// Messages travel with the JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "bib.creditrisk.v1.CreditRiskService"

	AssessApplicantMethod = "/" + ServiceName + "/AssessApplicant"
	ReloadModelMethod     = "/" + ServiceName + "/ReloadModel"
)

// CreditRiskServiceServer is the server API for CreditRiskService.
type CreditRiskServiceServer interface {
	AssessApplicant(context.Context, *AssessApplicantRequest) (*AssessApplicantResponse, error)
	ReloadModel(context.Context, *ReloadModelRequest) (*ReloadModelResponse, error)
	mustEmbedUnimplementedCreditRiskServiceServer()
}

// UnimplementedCreditRiskServiceServer provides forward-compatible default implementations.
type UnimplementedCreditRiskServiceServer struct{}

func (UnimplementedCreditRiskServiceServer) AssessApplicant(context.Context, *AssessApplicantRequest) (*AssessApplicantResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessApplicant not implemented")
}
func (UnimplementedCreditRiskServiceServer) ReloadModel(context.Context, *ReloadModelRequest) (*ReloadModelResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReloadModel not implemented")
}
func (UnimplementedCreditRiskServiceServer) mustEmbedUnimplementedCreditRiskServiceServer() {}

// RegisterCreditRiskServiceServer registers the CreditRiskServiceServer with the gRPC server.
func RegisterCreditRiskServiceServer(s grpclib.ServiceRegistrar, srv CreditRiskServiceServer) {
	s.RegisterService(&_CreditRiskService_serviceDesc, srv)
}

var _CreditRiskService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CreditRiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessApplicant", Handler: _CreditRiskService_AssessApplicant_Handler},
		{MethodName: "ReloadModel", Handler: _CreditRiskService_ReloadModel_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _CreditRiskService_AssessApplicant_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(AssessApplicantRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditRiskServiceServer).AssessApplicant(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: AssessApplicantMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CreditRiskServiceServer).AssessApplicant(ctx, req.(*AssessApplicantRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CreditRiskService_ReloadModel_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ReloadModelRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditRiskServiceServer).ReloadModel(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: ReloadModelMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CreditRiskServiceServer).ReloadModel(ctx, req.(*ReloadModelRequest))
	}
	return interceptor(ctx, req, info, handler)
}
