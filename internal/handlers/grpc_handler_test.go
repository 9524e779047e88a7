package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"EXAM_PROCTOR/go-backend/internal/frame"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/monitor"
	"EXAM_PROCTOR/go-backend/internal/services"
	pb "EXAM_PROCTOR/go-backend/pkg/pb"
)

func startMonitor(t *testing.T, svc FrameService) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	NewGRPCHandler(svc).Register(s)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func frameStruct(t *testing.T) *structpb.Struct {
	t.Helper()
	in, err := pb.ToStruct(models.FrameRequest{SubjectID: "s", ExamID: "e", ImageB64: "x"})
	require.NoError(t, err)
	return in
}

func TestGRPC_ProcessFrame(t *testing.T) {
	client := pb.NewMonitorClient(startMonitor(t, &fakeService{}))

	out, err := client.ProcessFrame(context.Background(), frameStruct(t))
	require.NoError(t, err)

	var res models.FusionResult
	require.NoError(t, pb.FromStruct(out, &res))
	assert.Equal(t, []string{"No faces detected"}, res.Alerts)
	assert.Equal(t, 10, res.ScoreIncrement)
}

func TestGRPC_ProcessFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"bad base64", fmt.Errorf("%w: x", frame.ErrInvalidEncoding), codes.InvalidArgument},
		{"bad image", frame.ErrInvalidImage, codes.InvalidArgument},
		{"missing session", monitor.ErrMissingSession, codes.InvalidArgument},
		{"unexpected", errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := pb.NewMonitorClient(startMonitor(t, &fakeService{frameErr: tt.err}))

			_, err := client.ProcessFrame(context.Background(), frameStruct(t))

			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestGRPC_SubmitDueToCheating(t *testing.T) {
	svc := &fakeService{submitRes: services.SubmissionResult{Status: 200, Body: json.RawMessage(`{"message":"ok"}`)}}
	client := pb.NewMonitorClient(startMonitor(t, svc))

	in, err := pb.ToStruct(models.SubmitRequest{SubjectID: "s", ExamID: "e", AuthToken: "tok"})
	require.NoError(t, err)

	out, err := client.SubmitDueToCheating(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, float64(200), out.GetFields()["status"].GetNumberValue())
	assert.Equal(t, "ok", out.GetFields()["data"].GetStructValue().GetFields()["message"].GetStringValue())
}

func TestGRPC_SubmitTransportFailure(t *testing.T) {
	client := pb.NewMonitorClient(startMonitor(t, &fakeService{submitErr: errors.New("connection refused")}))

	in, err := pb.ToStruct(models.SubmitRequest{SubjectID: "s", ExamID: "e"})
	require.NoError(t, err)

	_, err = client.SubmitDueToCheating(context.Background(), in)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestGRPC_Health(t *testing.T) {
	conn := startMonitor(t, &fakeService{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: pb.Monitor_ServiceDesc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
