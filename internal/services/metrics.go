package services

import (
	"sync"
	"sync/atomic"
	"time"
)

type Metrics struct {
	totalFrames    atomic.Int64
	degradedFrames atomic.Int64
	rejectedFrames atomic.Int64
	alertFrames    atomic.Int64
	totalLatency   atomic.Int64
	lastFrameTime  atomic.Int64

	escalations        atomic.Int64
	escalationFailures atomic.Int64
	autoSubmissions    atomic.Int64

	observers     atomic.Int64
	notifications atomic.Int64
	observerErrs  atomic.Int64
}

var (
	metricsInstance *Metrics
	metricsOnce     sync.Once
)

func NewMetrics() *Metrics {
	return &Metrics{}
}

func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = NewMetrics()
	})
	return metricsInstance
}

func (m *Metrics) IncrementFrames() {
	m.totalFrames.Add(1)
	m.lastFrameTime.Store(time.Now().Unix())
}

func (m *Metrics) IncrementDegraded() {
	m.degradedFrames.Add(1)
}

// IncrementRejected counts frames dropped for malformed input.
func (m *Metrics) IncrementRejected() {
	m.rejectedFrames.Add(1)
}

func (m *Metrics) IncrementAlertFrames() {
	m.alertFrames.Add(1)
}

func (m *Metrics) RecordLatency(duration time.Duration) {
	m.totalLatency.Add(duration.Milliseconds())
}

func (m *Metrics) IncrementEscalations() {
	m.escalations.Add(1)
}

func (m *Metrics) IncrementEscalationFailures() {
	m.escalationFailures.Add(1)
}

func (m *Metrics) IncrementAutoSubmissions() {
	m.autoSubmissions.Add(1)
}

func (m *Metrics) GetTotalFrames() int64 {
	return m.totalFrames.Load()
}

func (m *Metrics) GetDegradedFrames() int64 {
	return m.degradedFrames.Load()
}

func (m *Metrics) GetEscalations() int64 {
	return m.escalations.Load()
}

func (m *Metrics) GetEscalationFailures() int64 {
	return m.escalationFailures.Load()
}

func (m *Metrics) GetAvgLatency() float64 {
	frames := m.totalFrames.Load()
	if frames == 0 {
		return 0
	}
	return float64(m.totalLatency.Load()) / float64(frames)
}

func (m *Metrics) GetLastFrameTime() int64 {
	return m.lastFrameTime.Load()
}

func (m *Metrics) IncrementObservers() {
	m.observers.Add(1)
}

func (m *Metrics) DecrementObservers() {
	m.observers.Add(-1)
}

// GetObservers returns the number of attached observer connections.
func (m *Metrics) GetObservers() int64 {
	return m.observers.Load()
}

// IncrementNotifications counts alert notifications pushed to observers.
func (m *Metrics) IncrementNotifications() {
	m.notifications.Add(1)
}

func (m *Metrics) GetNotifications() int64 {
	return m.notifications.Load()
}

// IncrementObserverErrors counts failed observer writes.
func (m *Metrics) IncrementObserverErrors() {
	m.observerErrs.Add(1)
}

// Snapshot returns every counter, keyed for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"frames": map[string]interface{}{
			"total":          m.totalFrames.Load(),
			"degraded":       m.degradedFrames.Load(),
			"rejected":       m.rejectedFrames.Load(),
			"with_alerts":    m.alertFrames.Load(),
			"avg_latency_ms": m.GetAvgLatency(),
			"last_frame_at":  m.lastFrameTime.Load(),
		},
		"escalations": map[string]interface{}{
			"sent":             m.escalations.Load(),
			"failed":           m.escalationFailures.Load(),
			"auto_submissions": m.autoSubmissions.Load(),
		},
		"observers": map[string]interface{}{
			"connections":   m.observers.Load(),
			"notifications": m.notifications.Load(),
			"errors":        m.observerErrs.Load(),
		},
	}
}
