package handlers

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const adminKeyHeader = "X-Admin-Key"

// AdminAuth guards the operational endpoints with a bcrypt-hashed key.
// An empty hash leaves them open.
type AdminAuth struct {
	hash []byte
}

func NewAdminAuth(hash string) *AdminAuth {
	return &AdminAuth{hash: []byte(hash)}
}

// HashAdminKey produces the value for ADMIN_KEY_HASH.
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *AdminAuth) Enabled() bool {
	return len(a.hash) > 0
}

func (a *AdminAuth) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next(w, r)
			return
		}

		key := r.Header.Get(adminKeyHeader)
		if key == "" || bcrypt.CompareHashAndPassword(a.hash, []byte(key)) != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", "unauthorized", nil)
			return
		}
		next(w, r)
	}
}
