// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// time query extraction, drill-down selections and bounded JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ledgerdash/internal/core"
	"ledgerdash/internal/services"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// ParseTimeQuery extracts the raw time selection from query parameters.
// Values are sanitized but not interpreted; core.ResolveWindow does that.
func ParseTimeQuery(query url.Values) core.TimeQuery {
	return core.TimeQuery{
		Start: sanitizeInput(query.Get("start")),
		End:   sanitizeInput(query.Get("end")),
		Month: sanitizeInput(query.Get("month")),
		Year:  sanitizeInput(query.Get("year")),
	}
}

// ParseSelections reads the first depth parent selections of h from query,
// using each level's parameter name.
func ParseSelections(query url.Values, h services.Hierarchy, depth int) []string {
	depth = min(depth, len(h.Levels))
	out := make([]string, depth)
	for i := 0; i < depth; i++ {
		out[i] = sanitizeInput(query.Get(h.Levels[i].Param))
	}
	return out
}

// DecodeJSON reads a single JSON document from the request body into v.
// Malformed or oversized bodies are validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.NewValidationError("", "request body is required")
		case errors.As(err, &maxErr):
			return core.NewValidationError("", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		default:
			return core.NewValidationError("", "malformed JSON body")
		}
	}
	if dec.More() {
		return core.NewValidationError("", "request body must contain a single JSON document")
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
