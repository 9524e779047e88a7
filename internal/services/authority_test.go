package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EXAM_PROCTOR/go-backend/internal/models"
)

func TestReportCheating(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		wantScore int
		wantAuto  bool
	}{
		{"new_score", `{"auto_submitted":false,"new_score":35}`, 35, false},
		{"score fallback", `{"auto_submitted":true,"score":100}`, 100, true},
		{"neither", `{"message":"ok"}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got models.EscalationRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/quizzes/update-cheating-score", r.URL.Path)
				assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			client := NewAuthorityClient(srv.URL+"/", time.Second)
			resp, err := client.ReportCheating(context.Background(), "tok-123", models.EscalationRequest{
				SubjectID:      "student-1",
				ExamID:         "quiz-1",
				ScoreIncrement: 35,
				Alerts:         []string{"Multiple faces detected"},
			})

			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, resp.NewScore)
			assert.Equal(t, tt.wantAuto, resp.AutoSubmitted)
			assert.Equal(t, "student-1", got.SubjectID)
			assert.Equal(t, 35, got.ScoreIncrement)
			assert.Equal(t, []string{"Multiple faces detected"}, got.Alerts)
		})
	}
}

func TestReportCheating_Failures(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Unauthenticated."}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := NewAuthorityClient(srv.URL, time.Second).ReportCheating(context.Background(), "bad", models.EscalationRequest{})

		var authErr *AuthorityError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		assert.False(t, authErr.Temporary())
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		defer srv.Close()

		_, err := NewAuthorityClient(srv.URL, time.Second).ReportCheating(context.Background(), "tok", models.EscalationRequest{})
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()

		start := time.Now()
		_, err := NewAuthorityClient(srv.URL, 30*time.Millisecond).ReportCheating(context.Background(), "tok", models.EscalationRequest{})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 500*time.Millisecond)
	})

	t.Run("network", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewAuthorityClient(url, time.Second).ReportCheating(context.Background(), "tok", models.EscalationRequest{})
		assert.Error(t, err)
	})
}

func TestSubmit(t *testing.T) {
	var got models.SubmissionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quizzes/submit/quiz-7", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"already submitted"}`))
	}))
	defer srv.Close()

	res, err := NewAuthorityClient(srv.URL, time.Second).Submit(context.Background(), "tok", "quiz-7", models.SubmissionRequest{
		SubjectID: "student-1",
		Answers:   []models.Answer{{QuestionID: 3, Answer: "B"}},
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.JSONEq(t, `{"message":"already submitted"}`, string(res.Body))
	assert.Equal(t, []models.Answer{{QuestionID: 3, Answer: "B"}}, got.Answers)
}

func TestSubmit_NonJSONReplyIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	res, err := NewAuthorityClient(srv.URL, time.Second).Submit(context.Background(), "tok", "quiz-7", models.SubmissionRequest{SubjectID: "student-1"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, res.Status)
	assert.JSONEq(t, `{"message":"upstream down"}`, string(res.Body))
}
