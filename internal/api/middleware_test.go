package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func authHandler(t *testing.T, key string) http.Handler {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return AuthMiddleware(key, log)(ok)
}

func TestAuthMiddleware(t *testing.T) {
	h := authHandler(t, "topsecret")

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid key", "Bearer topsecret", http.StatusNoContent},
		{"wrong key", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic topsecret", http.StatusUnauthorized},
		{"key without scheme", "topsecret", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
		if tc.want == http.StatusUnauthorized {
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("%s: content type = %q", tc.name, ct)
			}
		}
	}
}
