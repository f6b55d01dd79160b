package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"verigate/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func TestRequireAdmin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := uuid.NewString()

	run := func(v JWTValidator, header string) (*httptest.ResponseRecorder, string) {
		var seen string
		h := RequireAdmin(v, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = requestcontext.ActorID(r.Context()).String()
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr, seen
	}

	t.Run("missing header", func(t *testing.T) {
		rr, _ := run(stubValidator{}, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rr, _ := run(stubValidator{err: errors.New("expired")}, "Bearer abc")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("non admin role", func(t *testing.T) {
		rr, _ := run(stubValidator{claims: &JWTClaims{ActorID: actor, Role: "viewer"}}, "Bearer abc")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admin passes with actor in context", func(t *testing.T) {
		rr, seen := run(stubValidator{claims: &JWTClaims{ActorID: actor, Role: RoleAdmin}}, "Bearer abc")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, actor, seen)
	})
}
