package session

import (
	"context"
	"time"

	"EXAM_PROCTOR/go-backend/internal/logging"
)

// EvictIdle drops sessions whose last frame is older than maxIdle. A
// session with a frame in flight is never idle, and keep may pin others
// (for example, sessions with an attached observer).
func (r *Registry) EvictIdle(now time.Time, maxIdle time.Duration, keep func(Key) bool) []Key {
	cutoff := now.Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []Key
	for k, st := range r.sessions {
		if !st.mu.TryLock() {
			continue
		}
		last := st.LastFrameAt
		if last.IsZero() {
			last = st.CreatedAt
		}
		st.mu.Unlock()

		if !last.Before(cutoff) || (keep != nil && keep(k)) {
			continue
		}
		delete(r.sessions, k)
		evicted = append(evicted, k)
	}
	return evicted
}

// RunEviction sweeps idle sessions every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval, maxIdle time.Duration, keep func(Key) bool) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	log := logging.With("component", "session")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := r.EvictIdle(now, maxIdle, keep); len(evicted) > 0 {
				log.Info("evicted idle sessions", "count", len(evicted), "remaining", r.Len())
			}
		}
	}
}
