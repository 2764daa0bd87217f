package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ledgerdash/internal/core"
)

func TestMemoryStoreFetchReturnsCopies(t *testing.T) {
	s := New(core.RawRecord{"Amount": "1"}, core.RawRecord{"Amount": "2"})
	rows, err := s.Fetch(context.Background())
	if err != nil || len(rows) != 2 {
		t.Fatalf("unexpected fetch: rows=%v err=%v", rows, err)
	}
	rows[0]["Amount"] = "changed"

	again, _ := s.Fetch(context.Background())
	if again[0]["Amount"] != "1" {
		t.Fatalf("store was mutated through a fetched row: %v", again[0])
	}
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Fetch(ctx); !errors.Is(err, core.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "ledger.csv"))
	if err != nil || s.Len() != 0 {
		t.Fatalf("expected empty store when file missing, len=%d err=%v", s.Len(), err)
	}

	path := filepath.Join(dir, "ledger.csv")
	content := "Date,PL Code,Amount\n01/04/2025,Sales,100\n\n02/04/2025,Sales,50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", s.Len())
	}
}
