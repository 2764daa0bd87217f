package sheets

import (
	"errors"
	"fmt"

	"ledgerdash/internal/core"
)

var errNotConfigured = errors.New("no location configured")

// Error describes a failed fetch. It always matches core.ErrSourceUnavailable.
type Error struct {
	Source string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{core.ErrSourceUnavailable, e.Err}
}
