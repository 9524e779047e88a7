// Package monitor is the front-door flow shared by the HTTP and gRPC
// servers: decode the frame, fuse it, escalate its alerts.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"EXAM_PROCTOR/go-backend/internal/alerts"
	"EXAM_PROCTOR/go-backend/internal/frame"
	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/services"
	"EXAM_PROCTOR/go-backend/internal/session"
)

var ErrMissingSession = errors.New("subject_id and exam_id are required")

type Pipeline interface {
	Process(ctx context.Context, f *frame.Frame, key *session.Key) models.FusionResult
}

type Dispatcher interface {
	Dispatch(ctx context.Context, d alerts.Delivery) (*models.ObserverNotification, bool)
	Submit(ctx context.Context, key session.Key, token string, answers []models.Answer) (services.SubmissionResult, error)
}

type Service struct {
	pipeline   Pipeline
	dispatcher Dispatcher
	metrics    *services.Metrics
	log        *slog.Logger
}

func NewService(pipeline Pipeline, dispatcher Dispatcher, metrics *services.Metrics) *Service {
	if metrics == nil {
		metrics = services.GetMetrics()
	}
	return &Service{
		pipeline:   pipeline,
		dispatcher: dispatcher,
		metrics:    metrics,
		log:        logging.With("component", "monitor"),
	}
}

// ProcessFrame handles a periodic frame of a live session. Malformed
// images are rejected before any session state is touched.
func (s *Service) ProcessFrame(ctx context.Context, req models.FrameRequest) (models.FusionResult, error) {
	key := session.NewKey(req.SubjectID, req.ExamID)
	if !key.Valid() {
		return models.FusionResult{}, ErrMissingSession
	}

	f, err := frame.DecodeBase64(req.ImageB64)
	if err != nil {
		s.metrics.IncrementRejected()
		s.log.Warn("frame rejected", "session", key.String(), "error", err)
		return models.FusionResult{}, err
	}

	res := s.fuse(ctx, f, &key)
	if len(res.Alerts) > 0 {
		s.dispatcher.Dispatch(ctx, alerts.Delivery{
			Key:            key,
			Token:          req.AuthToken,
			Alerts:         res.Alerts,
			ScoreIncrement: res.ScoreIncrement,
			Image:          req.ImageB64,
			Answers:        req.Answers,
		})
	}
	return res, nil
}

// Predict fuses an uploaded image without session state. When the caller
// identifies a session and a token, the alerts are still escalated.
func (s *Service) Predict(ctx context.Context, image []byte, key session.Key, token string) (models.FusionResult, error) {
	f, err := frame.Decode(image)
	if err != nil {
		s.metrics.IncrementRejected()
		s.log.Warn("upload rejected", "error", err)
		return models.FusionResult{}, err
	}

	res := s.fuse(ctx, f, nil)
	if len(res.Alerts) > 0 && key.Valid() && token != "" {
		s.dispatcher.Dispatch(ctx, alerts.Delivery{
			Key:            key,
			Token:          token,
			Alerts:         res.Alerts,
			ScoreIncrement: res.ScoreIncrement,
		})
	}
	return res, nil
}

// Submit forwards a submission due to cheating.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (services.SubmissionResult, error) {
	key := session.NewKey(req.SubjectID, req.ExamID)
	if !key.Valid() {
		return services.SubmissionResult{}, ErrMissingSession
	}
	return s.dispatcher.Submit(ctx, key, req.AuthToken, req.Answers)
}

func (s *Service) fuse(ctx context.Context, f *frame.Frame, key *session.Key) models.FusionResult {
	start := time.Now()
	res := s.pipeline.Process(ctx, f, key)

	s.metrics.IncrementFrames()
	s.metrics.RecordLatency(time.Since(start))
	if len(res.Alerts) > 0 {
		s.metrics.IncrementAlertFrames()
	}
	return res
}
