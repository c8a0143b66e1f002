package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgallion1/standgate/internal/store"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.odt", "report.odt"},
		{"../../etc/passwd", "passwd"},
		{"/absolute/path/doc.pdf", "doc.pdf"},
		{"name..with..dots", "name_with_dots"},
		{"", "unnamed"},
		{".", "unnamed"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStoreError(t *testing.T) {
	rec := httptest.NewRecorder()
	storeError(rec, store.ErrNotFound)
	if rec.Code != http.StatusNotFound {
		t.Errorf("not found mapped to %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	storeError(rec, errors.New("connection reset"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("generic error mapped to %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestActor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := actor(r); got != "api" {
		t.Errorf("default actor = %q", got)
	}
	r.Header.Set("X-Actor-ID", "reviewer-7")
	if got := actor(r); got != "reviewer-7" {
		t.Errorf("actor = %q", got)
	}
}
