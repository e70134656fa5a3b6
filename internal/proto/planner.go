package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName    = "planner.v1.Planner"
	agendaFullName = "/" + ServiceName + "/Agenda"
)

// PlannerServer is the server side of planner.v1.Planner. Messages are
// google.protobuf.Struct values so clients need no generated code.
type PlannerServer interface {
	Agenda(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var PlannerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PlannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Agenda",
			Handler:    agendaHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "planner/v1/planner.proto",
}

func agendaHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PlannerServer).Agenda(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: agendaFullName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PlannerServer).Agenda(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type PlannerClient struct {
	cc grpc.ClientConnInterface
}

func NewPlannerClient(cc grpc.ClientConnInterface) *PlannerClient {
	return &PlannerClient{cc: cc}
}

func (c *PlannerClient) Agenda(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, agendaFullName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
