package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the allocation service
const ServiceName = "wealthflow.widgets.v1.AllocationService"

// AllocationServiceServer is the server API for the allocation service
type AllocationServiceServer interface {
	SetAllocation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleLock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleInstrument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Equalize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SplitAmount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListInstruments(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var _ AllocationServiceServer = (*Server)(nil)

// FullMethod returns the full RPC path of a method, e.g. "/wealthflow.widgets.v1.AllocationService/Equalize"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// RegisterAllocationServiceServer registers the service on a gRPC server
func RegisterAllocationServiceServer(s grpc.ServiceRegistrar, srv AllocationServiceServer) {
	s.RegisterService(&allocationServiceDesc, srv)
}

type unaryMethod func(AllocationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler adapts a server method to the grpc.MethodDesc handler signature
func unaryHandler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AllocationServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(AllocationServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var allocationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AllocationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("SetAllocation", AllocationServiceServer.SetAllocation),
		unaryHandler("ToggleLock", AllocationServiceServer.ToggleLock),
		unaryHandler("ToggleInstrument", AllocationServiceServer.ToggleInstrument),
		unaryHandler("Equalize", AllocationServiceServer.Equalize),
		unaryHandler("SplitAmount", AllocationServiceServer.SplitAmount),
		unaryHandler("Simulate", AllocationServiceServer.Simulate),
		unaryHandler("ListInstruments", AllocationServiceServer.ListInstruments),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wealthflow/widgets/v1/allocation.proto",
}
