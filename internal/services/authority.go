package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"EXAM_PROCTOR/go-backend/internal/models"
)

const (
	escalationPath = "/api/quizzes/update-cheating-score"
	submissionPath = "/api/quizzes/submit/"
	maxReplyBytes  = 1 << 20
)

// AuthorityError is a non-2xx reply from the scoring authority.
type AuthorityError struct {
	StatusCode int
	Body       []byte
}

func (e *AuthorityError) Error() string {
	return fmt.Sprintf("scoring authority returned %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

func (e *AuthorityError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// SubmissionResult is the authority's reply to a submission, passed back
// to the caller verbatim.
type SubmissionResult struct {
	Status int
	Body   json.RawMessage
}

// AuthorityClient reports score increments and submissions to the external
// scoring authority, authenticating with the examinee's bearer token.
type AuthorityClient struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewAuthorityClient(baseURL string, timeout time.Duration) *AuthorityClient {
	return &AuthorityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
}

type escalationReply struct {
	AutoSubmitted bool `json:"auto_submitted"`
	NewScore      *int `json:"new_score"`
	Score         *int `json:"score"`
}

// ReportCheating posts a frame's alerts and score increment.
func (a *AuthorityClient) ReportCheating(ctx context.Context, token string, req models.EscalationRequest) (models.EscalationResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	status, body, err := a.post(ctx, token, a.baseURL+escalationPath, req)
	if err != nil {
		return models.EscalationResponse{}, fmt.Errorf("report cheating: %w", err)
	}
	if status < 200 || status > 299 {
		return models.EscalationResponse{}, &AuthorityError{StatusCode: status, Body: body}
	}

	var reply escalationReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return models.EscalationResponse{}, fmt.Errorf("decode escalation reply: %w", err)
	}

	resp := models.EscalationResponse{AutoSubmitted: reply.AutoSubmitted}
	switch {
	case reply.NewScore != nil:
		resp.NewScore = *reply.NewScore
	case reply.Score != nil:
		resp.NewScore = *reply.Score
	}
	return resp, nil
}

// Submit forwards the examinee's answers as a submission due to cheating.
// Any reply status is returned as a result; only transport failures are
// errors.
func (a *AuthorityClient) Submit(ctx context.Context, token, examID string, req models.SubmissionRequest) (SubmissionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if req.Answers == nil {
		req.Answers = []models.Answer{}
	}

	status, body, err := a.post(ctx, token, a.baseURL+submissionPath+url.PathEscape(examID), req)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("submit exam %s: %w", examID, err)
	}
	if !json.Valid(body) {
		body, _ = json.Marshal(map[string]string{"message": string(body)})
	}
	return SubmissionResult{Status: status, Body: body}, nil
}

func (a *AuthorityClient) post(ctx context.Context, token, endpoint string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.client(ctx, token).Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read reply: %w", err)
	}
	return resp.StatusCode, body, nil
}

// client returns an HTTP client that attaches the bearer token.
func (a *AuthorityClient) client(ctx context.Context, token string) *http.Client {
	if token == "" {
		return a.http
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.http)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}
