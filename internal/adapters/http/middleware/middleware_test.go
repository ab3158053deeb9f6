package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIdentityMiddleware_TrustedHeaders(t *testing.T) {
	t.Parallel()

	handler := IdentityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity.UserID != "user-1" {
			t.Errorf("expected user-1, got %q", identity.UserID)
		}
		if !identity.Admin {
			t.Errorf("expected admin role to be recognized")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-Id", " user-1 ")
	req.Header.Set("X-User-Roles", "employer, Admin")

	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestIdentityMiddleware_Anonymous(t *testing.T) {
	t.Parallel()

	handler := IdentityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity.UserID != "" || identity.Admin {
			t.Errorf("expected anonymous identity, got %+v", identity)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
