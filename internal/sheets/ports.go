package sheets

import (
	"context"
	"time"

	"ledgerdash/internal/core"
)

// Ports for outbound adapters.
type (
	// RowSource returns the full table on every call. Failures wrap
	// core.ErrSourceUnavailable.
	RowSource interface {
		Fetch(ctx context.Context) ([]core.RawRecord, error)
	}

	// FetchObserver is told about every fetch of a named source.
	FetchObserver func(source string, elapsed time.Duration, rows int, err error)
)

// SourceFunc adapts a function to RowSource.
type SourceFunc func(ctx context.Context) ([]core.RawRecord, error)

func (f SourceFunc) Fetch(ctx context.Context) ([]core.RawRecord, error) { return f(ctx) }

// Observe wraps src so that obs sees the outcome of each fetch.
func Observe(name string, src RowSource, obs FetchObserver) RowSource {
	if obs == nil {
		return src
	}
	return SourceFunc(func(ctx context.Context) ([]core.RawRecord, error) {
		start := time.Now()
		rows, err := src.Fetch(ctx)
		obs(name, time.Since(start), len(rows), err)
		return rows, err
	})
}

// Unconfigured is a source that always fails, used when a table has no
// configured location.
func Unconfigured(name string) RowSource {
	return SourceFunc(func(context.Context) ([]core.RawRecord, error) {
		return nil, &Error{Source: name, Op: "configure", Err: errNotConfigured}
	})
}
