package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"masjid/pkg/domain"
	"masjid/pkg/requestcontext"
)

type stubValidator struct {
	principal domain.Principal
	err       error
}

func (s stubValidator) ValidateToken(string) (domain.Principal, error) {
	return s.principal, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureHandler(got *domain.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = requestcontext.Principal(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	moderator := domain.Principal{UserID: 5, Role: domain.RoleModerator}

	t.Run("no header continues as guest", func(t *testing.T) {
		var got domain.Principal
		h := Authenticate(stubValidator{}, discardLogger())(captureHandler(&got))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, domain.Guest, got)
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		var got domain.Principal
		h := Authenticate(stubValidator{principal: moderator}, discardLogger())(captureHandler(&got))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, moderator, got)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		var got domain.Principal
		h := Authenticate(stubValidator{err: errors.New("expired")}, discardLogger())(captureHandler(&got))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		var got domain.Principal
		h := Authenticate(stubValidator{principal: moderator}, discardLogger())(captureHandler(&got))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequireRole(t *testing.T) {
	serve := func(p domain.Principal) int {
		var got domain.Principal
		h := RequireRole(domain.RoleModerator, discardLogger())(captureHandler(&got))
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req = req.WithContext(requestcontext.WithPrincipal(req.Context(), p))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(domain.Guest))
	assert.Equal(t, http.StatusForbidden, serve(domain.Principal{UserID: 1, Role: domain.RoleAuthenticated}))
	assert.Equal(t, http.StatusNoContent, serve(domain.Principal{UserID: 1, Role: domain.RoleModerator}))
	assert.Equal(t, http.StatusNoContent, serve(domain.Principal{UserID: 1, Role: domain.RoleAdmin}))
}
