package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"EXAM_PROCTOR/go-backend/internal/frame"
	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/monitor"
	pb "EXAM_PROCTOR/go-backend/pkg/pb"
)

type GRPCHandler struct {
	pb.UnimplementedMonitorServer
	svc FrameService
}

func NewGRPCHandler(svc FrameService) *GRPCHandler {
	return &GRPCHandler{svc: svc}
}

// Register adds the Monitor service and the standard health service to s.
func (h *GRPCHandler) Register(s *grpc.Server) *health.Server {
	pb.RegisterMonitorServer(s, h)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(pb.Monitor_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return hs
}

func (h *GRPCHandler) ProcessFrame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()

	var req models.FrameRequest
	if err := pb.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := h.svc.ProcessFrame(ctx, req)
	if err != nil {
		return nil, frameStatus(err)
	}

	out, err := pb.ToStruct(res)
	if err != nil {
		logging.Error("encoding fusion result failed", "error", err)
		return nil, status.Error(codes.Internal, "encoding result failed")
	}

	logging.Debug("grpc frame processed",
		"subject_id", req.SubjectID,
		"exam_id", req.ExamID,
		"score_increment", res.ScoreIncrement,
		"elapsed", time.Since(start),
	)
	return out, nil
}

func (h *GRPCHandler) SubmitDueToCheating(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req models.SubmitRequest
	if err := pb.FromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := h.svc.Submit(ctx, req)
	switch {
	case errors.Is(err, monitor.ErrMissingSession):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case err != nil:
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	out, err := pb.ToStruct(map[string]interface{}{
		"status": res.Status,
		"data":   json.RawMessage(res.Body),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "encoding result failed")
	}
	return out, nil
}

func frameStatus(err error) error {
	switch {
	case errors.Is(err, frame.ErrInvalidEncoding),
		errors.Is(err, frame.ErrInvalidImage),
		errors.Is(err, monitor.ErrMissingSession):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
