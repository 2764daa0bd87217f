package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledgerdash/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("X-Custom"); got != "value" {
		t.Errorf("X-Custom = %q, want %q", got, "value")
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"n":1}` {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(func() {}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantError string
		wantField string
	}{
		{
			name:      "validation",
			err:       fmt.Errorf("compare: %w", core.NewValidationError("left.start", "is required")),
			wantCode:  http.StatusBadRequest,
			wantError: "is required",
			wantField: "left.start",
		},
		{
			name:      "unauthorized",
			err:       fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized),
			wantCode:  http.StatusUnauthorized,
			wantError: msgUnauthorized,
		},
		{
			name:      "source unavailable hides detail",
			err:       fmt.Errorf("load ledger: %w", core.ErrSourceUnavailable),
			wantCode:  http.StatusInternalServerError,
			wantError: msgLoadFailed,
		},
		{
			name:      "unknown",
			err:       errors.New("boom"),
			wantCode:  http.StatusInternalServerError,
			wantError: msgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFor(tt.err).Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantError || body.Field != tt.wantField {
				t.Errorf("body = %+v, want error %q field %q", body, tt.wantError, tt.wantField)
			}
		})
	}
}
