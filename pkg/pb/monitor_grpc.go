package pb

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
	structpb "google.golang.org/protobuf/types/known/structpb"
)

const (
	Monitor_ProcessFrame_FullMethodName        = "/proctor.v1.Monitor/ProcessFrame"
	Monitor_SubmitDueToCheating_FullMethodName = "/proctor.v1.Monitor/SubmitDueToCheating"
)

// MonitorClient is the client API for the proctoring Monitor service.
// ProcessFrame takes a FrameRequest object and returns a FusionResult;
// SubmitDueToCheating takes a SubmitRequest object.
type MonitorClient interface {
	ProcessFrame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitDueToCheating(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type monitorClient struct {
	cc grpc.ClientConnInterface
}

func NewMonitorClient(cc grpc.ClientConnInterface) MonitorClient {
	return &monitorClient{cc}
}

func (c *monitorClient) ProcessFrame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, Monitor_ProcessFrame_FullMethodName, in, out, cOpts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *monitorClient) SubmitDueToCheating(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, Monitor_SubmitDueToCheating_FullMethodName, in, out, cOpts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MonitorServer is the server API for the Monitor service.
type MonitorServer interface {
	ProcessFrame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitDueToCheating(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedMonitorServer()
}

// UnimplementedMonitorServer must be embedded by value.
type UnimplementedMonitorServer struct{}

func (UnimplementedMonitorServer) ProcessFrame(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ProcessFrame not implemented")
}
func (UnimplementedMonitorServer) SubmitDueToCheating(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitDueToCheating not implemented")
}
func (UnimplementedMonitorServer) mustEmbedUnimplementedMonitorServer() {}
func (UnimplementedMonitorServer) testEmbeddedByValue()                 {}

func RegisterMonitorServer(s grpc.ServiceRegistrar, srv MonitorServer) {
	if t, ok := srv.(interface{ testEmbeddedByValue() }); ok {
		t.testEmbeddedByValue()
	}
	s.RegisterService(&Monitor_ServiceDesc, srv)
}

func _Monitor_ProcessFrame_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MonitorServer).ProcessFrame(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Monitor_ProcessFrame_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MonitorServer).ProcessFrame(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _Monitor_SubmitDueToCheating_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MonitorServer).SubmitDueToCheating(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Monitor_SubmitDueToCheating_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MonitorServer).SubmitDueToCheating(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var Monitor_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "proctor.v1.Monitor",
	HandlerType: (*MonitorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProcessFrame",
			Handler:    _Monitor_ProcessFrame_Handler,
		},
		{
			MethodName: "SubmitDueToCheating",
			Handler:    _Monitor_SubmitDueToCheating_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proctor/v1/monitor.proto",
}
