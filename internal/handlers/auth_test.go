package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAdminKey(t *testing.T) {
	hash, err := HashAdminKey("s3cret")
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
	assert.True(t, NewAdminAuth(hash).Enabled())
	assert.False(t, NewAdminAuth("").Enabled())
}

func TestAdminAuth_Require(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }

	tests := []struct {
		name     string
		hash     string
		key      string
		wantCode int
	}{
		{"open when no hash", "", "", http.StatusTeapot},
		{"missing key", string(hash), "", http.StatusUnauthorized},
		{"wrong key", string(hash), "nope", http.StatusUnauthorized},
		{"right key", string(hash), "s3cret", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set(adminKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()

			NewAdminAuth(tt.hash).Require(ok)(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
