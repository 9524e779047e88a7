package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	pb "EXAM_PROCTOR/go-backend/pkg/pb"
)

// DetectorClient talks to the Python inference service over gRPC and
// implements every fusion collaborator.
type DetectorClient struct {
	conn    *grpc.ClientConn
	client  pb.DetectorClient
	url     string
	timeout time.Duration
}

func NewDetectorClient(url string, timeout time.Duration, maxMessageMB int, extra ...grpc.DialOption) (*DetectorClient, error) {
	logging.Info("connecting to detector service", "url", url)

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageMB*1024*1024),
			grpc.MaxCallSendMsgSize(maxMessageMB*1024*1024),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create detector client for %s: %w", url, err)
	}

	return &DetectorClient{
		conn:    conn,
		client:  pb.NewDetectorClient(conn),
		url:     url,
		timeout: timeout,
	}, nil
}

type facesReply struct {
	Faces []models.Face `json:"faces"`
}

type objectsReply struct {
	SuspiciousObjects []models.SuspiciousObject `json:"suspicious_objects"`
}

func (dc *DetectorClient) DetectFaces(ctx context.Context, image []byte) ([]models.Face, error) {
	var reply facesReply
	if err := dc.call(ctx, "detect faces", dc.client.DetectFaces, image, &reply); err != nil {
		return nil, err
	}
	if reply.Faces == nil {
		reply.Faces = []models.Face{}
	}
	return reply.Faces, nil
}

func (dc *DetectorClient) DetectObjects(ctx context.Context, image []byte) ([]models.SuspiciousObject, error) {
	var reply objectsReply
	if err := dc.call(ctx, "detect objects", dc.client.DetectObjects, image, &reply); err != nil {
		return nil, err
	}
	if reply.SuspiciousObjects == nil {
		reply.SuspiciousObjects = []models.SuspiciousObject{}
	}
	return reply.SuspiciousObjects, nil
}

func (dc *DetectorClient) EstimateGaze(ctx context.Context, image []byte) (models.GazeObservation, error) {
	var obs models.GazeObservation
	if err := dc.call(ctx, "estimate gaze", dc.client.EstimateGaze, image, &obs); err != nil {
		return models.GazeObservation{}, err
	}
	return obs, nil
}

func (dc *DetectorClient) EstimateHeadPose(ctx context.Context, face []byte) (models.RawPose, error) {
	var pose models.RawPose
	if err := dc.call(ctx, "estimate head pose", dc.client.EstimateHeadPose, face, &pose); err != nil {
		return models.RawPose{}, err
	}
	return pose, nil
}

type detectorCall func(context.Context, *wrapperspb.BytesValue, ...grpc.CallOption) (*structpb.Struct, error)

func (dc *DetectorClient) call(ctx context.Context, what string, fn detectorCall, image []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, dc.timeout)
	defer cancel()

	reply, err := fn(ctx, wrapperspb.Bytes(image))
	if err != nil {
		return fmt.Errorf("could not %s: %w", what, err)
	}
	if err := pb.FromStruct(reply, out); err != nil {
		return fmt.Errorf("could not %s: %w", what, err)
	}
	return nil
}

func (dc *DetectorClient) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	_, err := dc.client.Health(ctx, &emptypb.Empty{})
	return err == nil
}

func (dc *DetectorClient) URL() string {
	return dc.url
}

func (dc *DetectorClient) Close() error {
	if dc.conn != nil {
		return dc.conn.Close()
	}
	return nil
}
