// Package session owns the per-session temporal state used by fusion:
// debouncers and smoothers keyed by (subject, exam).
package session

import (
	"sort"
	"sync"
	"time"

	"EXAM_PROCTOR/go-backend/internal/debounce"
	"EXAM_PROCTOR/go-backend/internal/models"
	"EXAM_PROCTOR/go-backend/internal/smoothing"
)

// Key identifies a live exam session.
type Key struct {
	SubjectID string
	ExamID    string
}

func NewKey(subjectID, examID string) Key {
	return Key{SubjectID: subjectID, ExamID: examID}
}

// Valid reports whether both halves of the identity are present.
func (k Key) Valid() bool {
	return k.SubjectID != "" && k.ExamID != ""
}

func (k Key) String() string {
	return k.SubjectID + "_" + k.ExamID
}

// State is the mutable temporal state of one session. Fields are only
// touched while the state is held through Registry.Acquire.
type State struct {
	mu sync.Mutex

	PoseDebouncer *debounce.Debouncer
	GazeDebouncer *debounce.Debouncer
	PoseSmoother  *smoothing.EMA
	GazeFilter    *smoothing.GazeFilter

	Frames      int64
	CreatedAt   time.Time
	LastFrameAt time.Time
}

// NewState returns fresh state. Anonymous frames use one of these per frame.
func NewState() *State {
	return &State{
		PoseDebouncer: debounce.New(debounce.DefaultWindow),
		GazeDebouncer: debounce.New(debounce.DefaultWindow),
		PoseSmoother:  smoothing.NewEMA(smoothing.DefaultAlpha),
		GazeFilter:    smoothing.NewGazeFilter(),
		CreatedAt:     time.Now(),
	}
}

// Registry maps session keys to their state. At most one State is live
// per key; frames for the same key are processed one at a time.
type Registry struct {
	mu       sync.Mutex
	sessions map[Key]*State
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[Key]*State),
	}
}

// Acquire returns the session's state, creating it on first use, and
// holds it exclusively until release is called.
func (r *Registry) Acquire(key Key) (*State, func()) {
	r.mu.Lock()
	st, ok := r.sessions[key]
	if !ok {
		st = NewState()
		r.sessions[key] = st
	}
	r.mu.Unlock()

	st.mu.Lock()
	st.Frames++
	st.LastFrameAt = time.Now()
	return st, st.mu.Unlock
}

// Destroy drops the session's state. A frame already holding the old
// state finishes against it; the next frame starts fresh.
func (r *Registry) Destroy(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[key]; !ok {
		return false
	}
	delete(r.sessions, key)
	return true
}

// Has reports whether state exists for key.
func (r *Registry) Has(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[key]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Snapshot lists live sessions ordered by subject then exam.
func (r *Registry) Snapshot() []models.SessionInfo {
	r.mu.Lock()
	states := make(map[Key]*State, len(r.sessions))
	for k, v := range r.sessions {
		states[k] = v
	}
	r.mu.Unlock()

	out := make([]models.SessionInfo, 0, len(states))
	for k, st := range states {
		st.mu.Lock()
		out = append(out, models.SessionInfo{
			SubjectID:   k.SubjectID,
			ExamID:      k.ExamID,
			Frames:      st.Frames,
			CreatedAt:   st.CreatedAt,
			LastFrameAt: st.LastFrameAt,
		})
		st.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID != out[j].SubjectID {
			return out[i].SubjectID < out[j].SubjectID
		}
		return out[i].ExamID < out[j].ExamID
	})
	return out
}
