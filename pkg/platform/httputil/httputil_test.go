package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "masjid/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeValidation:            http.StatusBadRequest,
		dErrors.CodeUnauthorized:          http.StatusUnauthorized,
		dErrors.CodeForbidden:             http.StatusForbidden,
		dErrors.CodeNotFound:              http.StatusNotFound,
		dErrors.CodeConflict:              http.StatusConflict,
		dErrors.CodeDuplicateConfirmation: http.StatusConflict,
		dErrors.CodeTimeout:               http.StatusGatewayTimeout,
		dErrors.CodeInternal:              http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestPathInt64(t *testing.T) {
	if n, err := PathInt64("42", "id"); err != nil || n != 42 {
		t.Fatalf("expected 42, got %d (%v)", n, err)
	}
	for _, raw := range []string{"", "abc", "0", "-3"} {
		if _, err := PathInt64(raw, "id"); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
