// Package fusion turns one frame's detector outputs into alerts and a score
// increment, using the session's temporal state to smooth and debounce.
package fusion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"EXAM_PROCTOR/go-backend/internal/frame"
	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/services"
	"EXAM_PROCTOR/go-backend/internal/session"
	"EXAM_PROCTOR/go-backend/internal/smoothing"
)

var ErrCollaboratorPanic = errors.New("fusion: collaborator panicked")

type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]models.Face, error)
}

type ObjectDetector interface {
	DetectObjects(ctx context.Context, image []byte) ([]models.SuspiciousObject, error)
}

type GazeEstimator interface {
	EstimateGaze(ctx context.Context, image []byte) (models.GazeObservation, error)
}

// PoseEstimator estimates raw head pose angles from a JPEG face crop.
type PoseEstimator interface {
	EstimateHeadPose(ctx context.Context, face []byte) (models.RawPose, error)
}

// Detectors groups the collaborators called for every frame.
type Detectors struct {
	Faces   FaceDetector
	Objects ObjectDetector
	Gaze    GazeEstimator
	Poses   PoseEstimator
}

type Options struct {
	Weights         Weights
	PoseConcurrency int
	Logger          *slog.Logger
	Metrics         *services.Metrics
}

type Pipeline struct {
	detectors       Detectors
	sessions        *session.Registry
	weights         Weights
	poseConcurrency int
	log             *slog.Logger
	metrics         *services.Metrics
}

func New(detectors Detectors, sessions *session.Registry, opts Options) *Pipeline {
	if opts.PoseConcurrency < 1 {
		opts.PoseConcurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.With("component", "fusion")
	}
	if opts.Metrics == nil {
		opts.Metrics = services.GetMetrics()
	}
	return &Pipeline{
		detectors:       detectors,
		sessions:        sessions,
		weights:         opts.Weights,
		poseConcurrency: opts.PoseConcurrency,
		log:             opts.Logger,
		metrics:         opts.Metrics,
	}
}

// detections is the raw, unsmoothed collaborator output for one frame.
type detections struct {
	faces     []models.Face
	faceErr   error
	objects   []models.SuspiciousObject
	objectErr error
	gaze      models.GazeObservation
	gazeErr   error
	poses     []models.RawPose
}

// Process runs one frame through the collaborators and the scoring policy.
// A nil or incomplete key processes the frame anonymously against
// throwaway state. Process never fails: collaborator errors drop that
// signal and a panic anywhere yields a degraded result.
func (p *Pipeline) Process(ctx context.Context, f *frame.Frame, key *session.Key) (res models.FusionResult) {
	start := time.Now()
	tracked := key != nil && key.Valid()

	log := p.log
	if tracked {
		log = log.With("session", key.String())
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("fusion failed, returning degraded result", "panic", r)
			p.metrics.IncrementDegraded()
			res = models.DegradedResult(fmt.Sprint(r))
		}
	}()

	var st *session.State
	if tracked {
		var release func()
		st, release = p.sessions.Acquire(*key)
		defer release()
	} else {
		st = session.NewState()
	}

	det := p.detect(ctx, f, log)

	sig := signals{
		faces:   det.faces,
		facesOK: det.faceErr == nil,
		poses:   smoothPoses(st.PoseSmoother, det.poses),
		objects: det.objects,
		gaze:    resolveGaze(st.GazeFilter, det.gaze, det.gazeErr, log),
	}

	res = models.NewFusionResult()
	if sig.faces != nil {
		res.Faces = sig.faces
	}
	if sig.poses != nil {
		res.HeadPoses = sig.poses
	}
	if sig.objects != nil {
		res.SuspiciousObjects = sig.objects
	}
	res.GazeResult = sig.gaze
	res.ScoreIncrement, res.Alerts = p.weights.evaluate(sig, st, tracked)

	log.Debug("frame fused",
		"faces", len(res.Faces),
		"objects", len(res.SuspiciousObjects),
		"gaze", res.GazeResult.Status,
		"score_increment", res.ScoreIncrement,
		"alerts", len(res.Alerts),
		"elapsed", time.Since(start),
	)
	return res
}

// detect fans out the face, object and gaze calls, joins them, then fans
// out one head pose estimate per detected face.
func (p *Pipeline) detect(ctx context.Context, f *frame.Frame, log *slog.Logger) detections {
	var det detections
	var g errgroup.Group

	g.Go(func() error {
		det.faceErr = guard(func() (err error) {
			det.faces, err = p.detectors.Faces.DetectFaces(ctx, f.Data)
			return err
		})
		return nil
	})
	g.Go(func() error {
		det.objectErr = guard(func() (err error) {
			det.objects, err = p.detectors.Objects.DetectObjects(ctx, f.Data)
			return err
		})
		return nil
	})
	g.Go(func() error {
		det.gazeErr = guard(func() (err error) {
			det.gaze, err = p.detectors.Gaze.EstimateGaze(ctx, f.Data)
			return err
		})
		return nil
	})
	_ = g.Wait()

	if det.faceErr != nil {
		log.Warn("face detection failed", "error", det.faceErr)
		det.faces = nil
	}
	if det.objectErr != nil {
		log.Warn("object detection failed", "error", det.objectErr)
		det.objects = nil
	}
	if det.gazeErr != nil {
		log.Warn("gaze estimation failed", "error", det.gazeErr)
	}

	det.poses = p.estimatePoses(ctx, f, det.faces, log)
	return det
}

func (p *Pipeline) estimatePoses(ctx context.Context, f *frame.Frame, faces []models.Face, log *slog.Logger) []models.RawPose {
	if len(faces) == 0 {
		return nil
	}

	estimates := make([]*models.RawPose, len(faces))

	var g errgroup.Group
	g.SetLimit(p.poseConcurrency)
	for i, face := range faces {
		g.Go(func() error {
			err := guard(func() error {
				crop, err := f.Crop(face.BoundingBox)
				if err != nil {
					return err
				}
				pose, err := p.detectors.Poses.EstimateHeadPose(ctx, crop)
				if err != nil {
					return err
				}
				estimates[i] = &pose
				return nil
			})
			if err != nil {
				log.Warn("head pose estimation failed", "face", i, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	poses := make([]models.RawPose, 0, len(faces))
	for _, est := range estimates {
		if est != nil {
			poses = append(poses, *est)
		}
	}
	return poses
}

// smoothPoses runs the raw estimates through the session smoother in face
// order and classifies each.
func smoothPoses(ema *smoothing.EMA, raw []models.RawPose) []models.HeadPose {
	if raw == nil {
		return nil
	}
	out := make([]models.HeadPose, 0, len(raw))
	for _, r := range raw {
		yaw, pitch, roll := ema.Update(r.Yaw, r.Pitch, r.Roll)
		out = append(out, models.HeadPose{
			Pose:  smoothing.ClassifyPose(pitch, yaw),
			Yaw:   yaw,
			Pitch: pitch,
			Roll:  roll,
		})
	}
	return out
}

// resolveGaze filters a successful observation through the session's gaze
// filter. Failure statuses pass through without touching the filter.
func resolveGaze(filter *smoothing.GazeFilter, obs models.GazeObservation, err error, log *slog.Logger) models.GazeResult {
	if err != nil {
		return models.GazeResult{Status: models.GazeError, Message: err.Error()}
	}

	switch obs.Status {
	case models.GazeSuccess:
	case models.GazeNoFace, models.GazeNoLandmarks, models.GazeError:
		log.Info("gaze unavailable", "status", obs.Status, "message", obs.Message)
		return models.GazeResult{Status: obs.Status, Message: obs.Message}
	default:
		log.Warn("unknown gaze status", "status", obs.Status)
		return models.GazeResult{Status: models.GazeError, Message: fmt.Sprintf("unknown gaze status %q", obs.Status)}
	}

	reading := filter.Update(obs.Vector)
	yaw, pitch := reading.Yaw, reading.Pitch
	return models.GazeResult{
		Status:       models.GazeSuccess,
		Direction:    reading.Direction,
		YawDegrees:   &yaw,
		PitchDegrees: &pitch,
		GazeVector:   []float64{reading.Vector[0], reading.Vector[1], reading.Vector[2]},
	}
}

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCollaboratorPanic, r)
		}
	}()
	return fn()
}
