package models

import "time"

type Answer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

// FrameRequest is a periodic frame submitted for a live exam session.
type FrameRequest struct {
	SubjectID string   `json:"subject_id"`
	ExamID    string   `json:"exam_id"`
	ImageB64  string   `json:"image_b64"`
	AuthToken string   `json:"auth_token"`
	Answers   []Answer `json:"answers,omitempty"`
}

type SubmitRequest struct {
	SubjectID string   `json:"subject_id"`
	ExamID    string   `json:"exam_id"`
	Answers   []Answer `json:"answers"`
	AuthToken string   `json:"auth_token"`
}

// EscalationRequest is the body reported to the scoring authority.
type EscalationRequest struct {
	SubjectID      string   `json:"subject_id"`
	ExamID         string   `json:"exam_id"`
	ScoreIncrement int      `json:"score_increment"`
	Alerts         []string `json:"alerts"`
	Image          string   `json:"image,omitempty"`
	Answers        []Answer `json:"answers,omitempty"`
}

type EscalationResponse struct {
	AutoSubmitted bool
	NewScore      int
}

type SubmissionRequest struct {
	SubjectID string   `json:"subject_id"`
	Answers   []Answer `json:"answers"`
}

// ObserverNotification is pushed to the session's live observer channel.
type ObserverNotification struct {
	Type           string   `json:"type"`
	Message        []string `json:"message"`
	ScoreIncrement int      `json:"score_increment"`
	AutoSubmitted  bool     `json:"auto_submitted"`
	NewScore       int      `json:"new_score"`
}

// AlertEvent is one journaled frame that produced alerts.
type AlertEvent struct {
	ID             string    `json:"id"`
	SubjectID      string    `json:"subject_id"`
	ExamID         string    `json:"exam_id"`
	Alerts         []string  `json:"alerts"`
	ScoreIncrement int       `json:"score_increment"`
	Escalated      bool      `json:"escalated"`
	AutoSubmitted  bool      `json:"auto_submitted"`
	NewScore       *int      `json:"new_score,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// SessionInfo describes a live session in the state registry.
type SessionInfo struct {
	SubjectID   string    `json:"subject_id"`
	ExamID      string    `json:"exam_id"`
	Frames      int64     `json:"frames"`
	CreatedAt   time.Time `json:"created_at"`
	LastFrameAt time.Time `json:"last_frame_at,omitempty"`
}
