// Package alerts escalates a frame's alerts to the scoring authority and
// fans the authority's verdict out to the session observer, the alert
// emitter and the journal.
package alerts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/services"
	"EXAM_PROCTOR/go-backend/internal/session"
)

const NotificationType = "alert"

type Escalator interface {
	ReportCheating(ctx context.Context, token string, req models.EscalationRequest) (models.EscalationResponse, error)
	Submit(ctx context.Context, token, examID string, req models.SubmissionRequest) (services.SubmissionResult, error)
}

// Notifier pushes a notification to the observer attached to a session.
// It reports false when no observer is attached.
type Notifier interface {
	Notify(key session.Key, n models.ObserverNotification) bool
}

type Publisher interface {
	Publish(key session.Key, n models.ObserverNotification) error
}

type Journal interface {
	Record(ctx context.Context, event models.AlertEvent) error
}

// Delivery is one frame's outcome bound for escalation.
type Delivery struct {
	Key            session.Key
	Token          string
	Alerts         []string
	ScoreIncrement int
	Image          string
	Answers        []models.Answer
}

type Dispatcher struct {
	escalator Escalator
	notifier  Notifier
	publisher Publisher
	journal   Journal
	metrics   *services.Metrics
	log       *slog.Logger
}

// New builds a dispatcher. Publisher and journal may be nil.
func New(escalator Escalator, notifier Notifier, publisher Publisher, journal Journal, metrics *services.Metrics) *Dispatcher {
	if metrics == nil {
		metrics = services.GetMetrics()
	}
	return &Dispatcher{
		escalator: escalator,
		notifier:  notifier,
		publisher: publisher,
		journal:   journal,
		metrics:   metrics,
		log:       logging.With("component", "alerts"),
	}
}

// Dispatch escalates the delivery and, when the authority accepts it,
// notifies the session observer. Every delivery failure is logged and
// swallowed. The returned notification is nil when nothing was sent.
func (d *Dispatcher) Dispatch(ctx context.Context, del Delivery) (*models.ObserverNotification, bool) {
	if len(del.Alerts) == 0 || !del.Key.Valid() {
		return nil, false
	}

	log := d.log.With("session", del.Key.String())
	d.metrics.IncrementEscalations()

	resp, err := d.escalator.ReportCheating(ctx, del.Token, models.EscalationRequest{
		SubjectID:      del.Key.SubjectID,
		ExamID:         del.Key.ExamID,
		ScoreIncrement: del.ScoreIncrement,
		Alerts:         del.Alerts,
		Image:          del.Image,
		Answers:        del.Answers,
	})
	if err != nil {
		d.metrics.IncrementEscalationFailures()
		log.Warn("escalation failed", "error", err, "score_increment", del.ScoreIncrement, "retryable", retryable(err))
		d.record(ctx, log, del, nil)
		return nil, false
	}

	if resp.AutoSubmitted {
		d.metrics.IncrementAutoSubmissions()
		log.Info("exam auto-submitted by scoring authority", "new_score", resp.NewScore)
	}

	n := models.ObserverNotification{
		Type:           NotificationType,
		Message:        del.Alerts,
		ScoreIncrement: del.ScoreIncrement,
		AutoSubmitted:  resp.AutoSubmitted,
		NewScore:       resp.NewScore,
	}

	if d.notifier != nil && d.notifier.Notify(del.Key, n) {
		d.metrics.IncrementNotifications()
	} else {
		log.Debug("no observer attached")
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(del.Key, n); err != nil {
			log.Warn("alert publish failed", "error", err)
		}
	}

	d.record(ctx, log, del, &resp)
	return &n, true
}

// retryable reports whether a failed escalation may succeed if sent again:
// transport failures and authority 5xx/429 replies.
func retryable(err error) bool {
	var authErr *services.AuthorityError
	if errors.As(err, &authErr) {
		return authErr.Temporary()
	}
	return true
}

func (d *Dispatcher) record(ctx context.Context, log *slog.Logger, del Delivery, resp *models.EscalationResponse) {
	if d.journal == nil {
		return
	}

	event := models.AlertEvent{
		ID:             uuid.NewString(),
		SubjectID:      del.Key.SubjectID,
		ExamID:         del.Key.ExamID,
		Alerts:         del.Alerts,
		ScoreIncrement: del.ScoreIncrement,
		CreatedAt:      time.Now().UTC(),
	}
	if resp != nil {
		score := resp.NewScore
		event.Escalated = true
		event.AutoSubmitted = resp.AutoSubmitted
		event.NewScore = &score
	}

	// The frame's own context may already be done; the journal write is
	// independent of it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := d.journal.Record(ctx, event); err != nil {
		log.Warn("alert journal write failed", "error", err)
	}
}

// Submit forwards an explicit submission due to cheating and returns the
// authority's status and body verbatim.
func (d *Dispatcher) Submit(ctx context.Context, key session.Key, token string, answers []models.Answer) (services.SubmissionResult, error) {
	res, err := d.escalator.Submit(ctx, token, key.ExamID, models.SubmissionRequest{
		SubjectID: key.SubjectID,
		Answers:   answers,
	})
	if err != nil {
		d.log.Error("submission failed", "session", key.String(), "error", err)
		return services.SubmissionResult{}, err
	}

	d.log.Info("submission forwarded", "session", key.String(), "status", res.Status)
	return res, nil
}
