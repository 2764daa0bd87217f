package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"ledgerdash/internal/core"
	ports "ledgerdash/internal/sheets"
)

// Store serves a fixed table from memory.
type Store struct {
	mu   sync.RWMutex
	rows []core.RawRecord
}

var _ ports.RowSource = (*Store)(nil)

func New(rows ...core.RawRecord) *Store {
	return &Store{rows: rows}
}

// NewFromFile seeds the store from a CSV file. A missing file yields an
// empty store.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	rows, err := ports.DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return New(rows...), nil
}

// Fetch returns a copy of every row so callers cannot alter the store.
func (s *Store) Fetch(ctx context.Context) ([]core.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ports.Error{Source: "memory", Op: "fetch", Err: err}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RawRecord, len(s.rows))
	for i, r := range s.rows {
		cp := make(core.RawRecord, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

// Len returns the number of rows held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
