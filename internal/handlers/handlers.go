package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"EXAM_PROCTOR/go-backend/internal/emitter"
	"EXAM_PROCTOR/go-backend/internal/frame"
	"EXAM_PROCTOR/go-backend/internal/logging"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/monitor"
	"EXAM_PROCTOR/go-backend/internal/services"
	"EXAM_PROCTOR/go-backend/internal/session"
)

const (
	defaultMaxUploadMB = 50
	version            = "1.0"
)

type FrameService interface {
	ProcessFrame(ctx context.Context, req models.FrameRequest) (models.FusionResult, error)
	Predict(ctx context.Context, image []byte, key session.Key, token string) (models.FusionResult, error)
	Submit(ctx context.Context, req models.SubmitRequest) (services.SubmissionResult, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

type SessionLister interface {
	Snapshot() []models.SessionInfo
	Len() int
}

type ObserverHub interface {
	ServeSession(w http.ResponseWriter, r *http.Request, key session.Key)
	Len() int
}

type EventLister interface {
	ListBySession(ctx context.Context, subjectID, examID string, limit int) ([]models.AlertEvent, error)
}

type EmitterStats interface {
	Stats() emitter.Stats
}

// Deps wires the REST handlers. Detector, Journal and Emitter may be nil.
type Deps struct {
	Service     FrameService
	Detector    HealthChecker
	Sessions    SessionLister
	Observers   ObserverHub
	Journal     EventLister
	Emitter     EmitterStats
	Metrics     *services.Metrics
	Auth        *AdminAuth
	CORSOrigins string
	MaxUploadMB int
}

type Handlers struct {
	deps    Deps
	started time.Time
}

func New(deps Deps) *Handlers {
	if deps.Metrics == nil {
		deps.Metrics = services.GetMetrics()
	}
	if deps.Auth == nil {
		deps.Auth = NewAdminAuth("")
	}
	if deps.CORSOrigins == "" {
		deps.CORSOrigins = "*"
	}
	if deps.MaxUploadMB <= 0 {
		deps.MaxUploadMB = defaultMaxUploadMB
	}
	return &Handlers{deps: deps, started: time.Now()}
}

// Routes returns the HTTP API.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/frames", h.Frames)
	mux.HandleFunc("POST /api/predict", h.Predict)
	mux.HandleFunc("POST /api/submit", h.Submit)
	mux.HandleFunc("GET /ws/{subject_id}/{exam_id}", h.Observe)
	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("GET /api/metrics", h.deps.Auth.Require(h.Metrics))
	mux.HandleFunc("GET /api/sessions", h.deps.Auth.Require(h.Sessions))
	mux.HandleFunc("GET /api/sessions/{subject_id}/{exam_id}/events", h.deps.Auth.Require(h.Events))

	return h.cors(mux)
}

func (h *Handlers) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.deps.CORSOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+adminKeyHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Frames handles a periodic frame of a live session.
func (h *Handlers) Frames(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody())

	var req models.FrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "invalid_request", err.Error())
		return
	}

	res, err := h.deps.Service.ProcessFrame(r.Context(), req)
	if err != nil {
		writeFrameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Predict fuses an uploaded image outside any session.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody())

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required", "invalid_request", err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload", "invalid_request", err.Error())
		return
	}

	q := r.URL.Query()
	key := session.NewKey(q.Get("subject_id"), q.Get("exam_id"))

	res, err := h.deps.Service.Predict(r.Context(), data, key, q.Get("auth_token"))
	if err != nil {
		writeFrameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Submit forwards a submission due to cheating and mirrors the scoring
// authority's status.
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "invalid_request", err.Error())
		return
	}

	res, err := h.deps.Service.Submit(r.Context(), req)
	switch {
	case errors.Is(err, monitor.ErrMissingSession):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "validation_error", nil)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error(), "submission_failed", nil)
		return
	}

	if res.Status == http.StatusOK {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  http.StatusOK,
			"message": "Quiz submitted due to cheating",
		})
		return
	}

	logging.Warn("scoring authority rejected submission", "status", res.Status, "exam_id", req.ExamID)
	writeError(w, res.Status, "Failed to submit quiz to scoring authority", "authority_rejected", res.Body)
}

// Observe attaches the caller as the session's live observer.
func (h *Handlers) Observe(w http.ResponseWriter, r *http.Request) {
	key := session.NewKey(r.PathValue("subject_id"), r.PathValue("exam_id"))
	if !key.Valid() {
		writeError(w, http.StatusBadRequest, monitor.ErrMissingSession.Error(), "validation_error", nil)
		return
	}
	h.deps.Observers.ServeSession(w, r, key)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	detectorUp := false
	if h.deps.Detector != nil {
		detectorUp = h.deps.Detector.HealthCheck(r.Context())
	}

	status := "healthy"
	if !detectorUp {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, models.HealthStatus{
		Status:          status,
		DetectorService: detectorUp,
		ActiveObservers: h.deps.Observers.Len(),
		ActiveSessions:  h.deps.Sessions.Len(),
		UptimeSec:       int64(time.Since(h.started).Seconds()),
		Version:         version,
	})
}

func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	body := h.deps.Metrics.Snapshot()
	body["active_sessions"] = h.deps.Sessions.Len()
	body["system_uptime_sec"] = int64(time.Since(h.started).Seconds())
	body["timestamp"] = time.Now().Format(time.RFC3339)
	if h.deps.Emitter != nil {
		body["mqtt"] = h.deps.Emitter.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handlers) Sessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.deps.Sessions.Snapshot(),
	})
}

func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	if h.deps.Journal == nil {
		writeError(w, http.StatusServiceUnavailable, "alert journal is disabled", "journal_disabled", nil)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", "invalid_request", nil)
			return
		}
		limit = n
	}

	events, err := h.deps.Journal.ListBySession(r.Context(), r.PathValue("subject_id"), r.PathValue("exam_id"), limit)
	if err != nil {
		logging.Error("listing alert events failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", "journal_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *Handlers) maxBody() int64 {
	return int64(h.deps.MaxUploadMB) * 1024 * 1024
}

func writeFrameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, frame.ErrInvalidEncoding):
		writeError(w, http.StatusUnprocessableEntity, "Invalid base64 string", "invalid_encoding", nil)
	case errors.Is(err, frame.ErrInvalidImage):
		writeError(w, http.StatusBadRequest, "Invalid image", "invalid_image", err.Error())
	case errors.Is(err, monitor.ErrMissingSession):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "validation_error", nil)
	default:
		writeError(w, http.StatusInternalServerError, err.Error(), "internal", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, code string, details interface{}) {
	writeJSON(w, status, models.ErrorResponse{
		Error:     msg,
		Timestamp: time.Now().Unix(),
		Code:      code,
		Details:   details,
	})
}
