package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewHandlerWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, closer, err := NewHandler(OutputConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	defer closer.Close()
	if _, ok := h.(*slog.JSONHandler); !ok {
		t.Fatalf("expected JSON handler, got %T", h)
	}

	if _, _, err := NewHandler(OutputConfig{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Handler: slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	sl := NewStructuredLogger(logger)
	r := httptest.NewRequest("GET", "/types?plCode=Sales", nil)

	sl.LogHTTPEnd(context.Background(), r, 404, 3*time.Millisecond, "req-1", "127.0.0.1")
	sl.LogHTTPEnd(context.Background(), r, 500, time.Millisecond, "req-2", "127.0.0.1")
	sl.LogSourceFetch(context.Background(), "ledger", 0, time.Millisecond, errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"level=WARN", "level=ERROR", "request_id=req-1", "source=ledger", "component=http", "component=sheets"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}
}
