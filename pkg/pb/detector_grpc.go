// Package pb holds the gRPC service bindings shared by the proctoring
// backend and the inference service. Payloads use protobuf well-known
// types so both sides agree without a generated message package.
package pb

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	status "google.golang.org/grpc/status"
	emptypb "google.golang.org/protobuf/types/known/emptypb"
	structpb "google.golang.org/protobuf/types/known/structpb"
	wrapperspb "google.golang.org/protobuf/types/known/wrapperspb"
)

const _ = grpc.SupportPackageIsVersion9

const (
	Detector_DetectFaces_FullMethodName      = "/proctor.inference.v1.Detector/DetectFaces"
	Detector_DetectObjects_FullMethodName    = "/proctor.inference.v1.Detector/DetectObjects"
	Detector_EstimateGaze_FullMethodName     = "/proctor.inference.v1.Detector/EstimateGaze"
	Detector_EstimateHeadPose_FullMethodName = "/proctor.inference.v1.Detector/EstimateHeadPose"
	Detector_Health_FullMethodName           = "/proctor.inference.v1.Detector/Health"
)

// DetectorClient is the client API for the inference Detector service.
// Every detection call takes the encoded image bytes and returns a JSON
// object as a Struct.
type DetectorClient interface {
	DetectFaces(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	DetectObjects(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	EstimateGaze(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	EstimateHeadPose(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
	Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type detectorClient struct {
	cc grpc.ClientConnInterface
}

func NewDetectorClient(cc grpc.ClientConnInterface) DetectorClient {
	return &detectorClient{cc}
}

func (c *detectorClient) DetectFaces(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Detector_DetectFaces_FullMethodName, in, opts)
}

func (c *detectorClient) DetectObjects(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Detector_DetectObjects_FullMethodName, in, opts)
}

func (c *detectorClient) EstimateGaze(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Detector_EstimateGaze_FullMethodName, in, opts)
}

func (c *detectorClient) EstimateHeadPose(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Detector_EstimateHeadPose_FullMethodName, in, opts)
}

func (c *detectorClient) Health(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, Detector_Health_FullMethodName, in, opts)
}

func (c *detectorClient) invoke(ctx context.Context, method string, in any, opts []grpc.CallOption) (*structpb.Struct, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DetectorServer is the server API for the Detector service. It is
// implemented by the inference service and by in-process fakes in tests.
type DetectorServer interface {
	DetectFaces(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	DetectObjects(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	EstimateGaze(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	EstimateHeadPose(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
	Health(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	mustEmbedUnimplementedDetectorServer()
}

// UnimplementedDetectorServer must be embedded by value.
type UnimplementedDetectorServer struct{}

func (UnimplementedDetectorServer) DetectFaces(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DetectFaces not implemented")
}
func (UnimplementedDetectorServer) DetectObjects(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DetectObjects not implemented")
}
func (UnimplementedDetectorServer) EstimateGaze(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EstimateGaze not implemented")
}
func (UnimplementedDetectorServer) EstimateHeadPose(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EstimateHeadPose not implemented")
}
func (UnimplementedDetectorServer) Health(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Health not implemented")
}
func (UnimplementedDetectorServer) mustEmbedUnimplementedDetectorServer() {}
func (UnimplementedDetectorServer) testEmbeddedByValue()                  {}

func RegisterDetectorServer(s grpc.ServiceRegistrar, srv DetectorServer) {
	if t, ok := srv.(interface{ testEmbeddedByValue() }); ok {
		t.testEmbeddedByValue()
	}
	s.RegisterService(&Detector_ServiceDesc, srv)
}

func detectorBytesHandler(method string, call func(DetectorServer, context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.BytesValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DetectorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DetectorServer), ctx, req.(*wrapperspb.BytesValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _Detector_Health_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectorServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Detector_Health_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DetectorServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

var Detector_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "proctor.inference.v1.Detector",
	HandlerType: (*DetectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "DetectFaces",
			Handler:    detectorBytesHandler(Detector_DetectFaces_FullMethodName, DetectorServer.DetectFaces),
		},
		{
			MethodName: "DetectObjects",
			Handler:    detectorBytesHandler(Detector_DetectObjects_FullMethodName, DetectorServer.DetectObjects),
		},
		{
			MethodName: "EstimateGaze",
			Handler:    detectorBytesHandler(Detector_EstimateGaze_FullMethodName, DetectorServer.EstimateGaze),
		},
		{
			MethodName: "EstimateHeadPose",
			Handler:    detectorBytesHandler(Detector_EstimateHeadPose_FullMethodName, DetectorServer.EstimateHeadPose),
		},
		{
			MethodName: "Health",
			Handler:    _Detector_Health_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "proctor/inference/v1/detector.proto",
}
