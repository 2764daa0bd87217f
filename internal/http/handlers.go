package http

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"ledgerdash/internal/log"
)

const readinessTimeout = 10 * time.Second

// handleHealth is the API-level health probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]bool{"ok": true}).Write(w)
}

// handleLiveness performs basic liveness check
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status":    "ok",
		"timestamp": s.clock().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReadiness fetches every configured source concurrently.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results := make([]error, len(s.readiness))
	var g errgroup.Group
	for i, p := range s.readiness {
		i, p := i, p
		g.Go(func() error {
			results[i] = p.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	status, code := "ready", http.StatusOK
	checks := make(map[string]string, len(s.readiness))
	for i, p := range s.readiness {
		if err := results[i]; err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldSource, p.Name(), log.FieldError, err)
			checks[p.Name()] = "unavailable"
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[p.Name()] = "ok"
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}
