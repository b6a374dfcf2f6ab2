package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "tusec.v1.StockViewerService"

// Full method names, as seen by interceptors and clients
const (
	MethodListStocks   = "/" + ServiceName + "/ListStocks"
	MethodListUsers    = "/" + ServiceName + "/ListUsers"
	MethodGetHistory   = "/" + ServiceName + "/GetHistory"
	MethodGetUser      = "/" + ServiceName + "/GetUser"
	MethodRegisterUser = "/" + ServiceName + "/RegisterUser"
	MethodBuyStock     = "/" + ServiceName + "/BuyStock"
	MethodAuthenticate = "/" + ServiceName + "/Authenticate"
	MethodWatchMarket  = "/" + ServiceName + "/WatchMarket"
)

// StockViewerServiceServer is the server API for the StockViewerService.
// Request and response bodies are well-known types so no generated code is needed.
type StockViewerServiceServer interface {
	ListStocks(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListUsers(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RegisterUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BuyStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Authenticate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchMarket(*emptypb.Empty, grpc.ServerStream) error
}

// RegisterStockViewerServiceServer registers srv on s
func RegisterStockViewerServiceServer(s grpc.ServiceRegistrar, srv StockViewerServiceServer) {
	s.RegisterService(&StockViewerServiceDesc, srv)
}

// StockViewerServiceDesc is the grpc.ServiceDesc for the StockViewerService
var StockViewerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StockViewerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListStocks", Handler: emptyHandler(MethodListStocks, StockViewerServiceServer.ListStocks)},
		{MethodName: "ListUsers", Handler: emptyHandler(MethodListUsers, StockViewerServiceServer.ListUsers)},
		{MethodName: "GetHistory", Handler: structHandler(MethodGetHistory, StockViewerServiceServer.GetHistory)},
		{MethodName: "GetUser", Handler: structHandler(MethodGetUser, StockViewerServiceServer.GetUser)},
		{MethodName: "RegisterUser", Handler: structHandler(MethodRegisterUser, StockViewerServiceServer.RegisterUser)},
		{MethodName: "BuyStock", Handler: structHandler(MethodBuyStock, StockViewerServiceServer.BuyStock)},
		{MethodName: "Authenticate", Handler: structHandler(MethodAuthenticate, StockViewerServiceServer.Authenticate)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchMarket",
			Handler:       watchMarketHandler,
			ServerStreams: true,
		},
	},
	Metadata: "tusec/v1/stock_viewer.proto",
}

func emptyHandler(
	fullMethod string,
	call func(StockViewerServiceServer, context.Context, *emptypb.Empty) (*structpb.Struct, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StockViewerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(StockViewerServiceServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func structHandler(
	fullMethod string,
	call func(StockViewerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StockViewerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(StockViewerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchMarketHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(StockViewerServiceServer).WatchMarket(in, stream)
}
