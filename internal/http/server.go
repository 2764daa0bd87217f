package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ledgerdash/internal/aggregate"
	"ledgerdash/internal/auth"
	"ledgerdash/internal/log"
	"ledgerdash/internal/middleware/ratelimit"
	"ledgerdash/internal/middleware/security"
	"ledgerdash/internal/middleware/trace"
	"ledgerdash/internal/services"
)

// Options wires the server to its pipelines and collaborators.
type Options struct {
	Ledger *services.Pipeline
	Bank   *services.Pipeline
	// BankEnabled adds the bank pipeline to readiness checks.
	BankEnabled bool

	Policy          aggregate.Policy
	PreferredLabels []string
	Location        *time.Location

	Auth         *auth.Service
	AuthRequired bool

	Metrics            *trace.Metrics
	Logger             *log.Logger
	Origins            []string
	LoginRatePerMinute int

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server serves the reporting API. Every request runs its own
// fetch-normalize-filter-aggregate pass; nothing is cached between requests.
type Server struct {
	http.Server

	ledger     *services.Drilldown
	bank       *services.Drilldown
	comparison *services.Comparison
	readiness  []*services.Pipeline

	auth         *auth.Service
	authRequired bool

	metrics      *trace.Metrics
	logger       *log.Logger
	detector     *security.Detector
	loginLimiter *ratelimit.Limiter
	origins      []string

	loc     *time.Location
	now     func() time.Time
	started time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	s := &Server{
		ledger:       services.NewDrilldown(opts.Ledger, services.LedgerHierarchy, opts.Policy),
		bank:         services.NewDrilldown(opts.Bank, services.BankHierarchy, opts.Policy),
		comparison:   services.NewComparison(opts.Ledger, opts.Policy, opts.PreferredLabels),
		readiness:    []*services.Pipeline{opts.Ledger},
		auth:         opts.Auth,
		authRequired: opts.AuthRequired,
		metrics:      opts.Metrics,
		logger:       logger.WithComponent(log.ComponentHTTP),
		detector:     security.NewDetector(logger),
		loginLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.LoginRatePerMinute}),
		origins:      opts.Origins,
		loc:          loc,
		now:          now,
		started:      now(),
	}
	if opts.BankEnabled {
		s.readiness = append(s.readiness, opts.Bank)
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(trace.NewMiddleware(s.detector.ExtractClientIP, s.logger, s.metrics).Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	r.Use(security.CORS(s.origins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError().Write(w)
	})

	r.Get("/healthz", s.handleLiveness)
	r.Get("/readyz", s.handleReadiness)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Group(s.apiRoutes)
	r.Route("/api", s.apiRoutes)
	return r
}

// apiRoutes registers the JSON API. It is mounted twice: at the root and
// under /api.
func (s *Server) apiRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.With(s.loginLimiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)).
			Post("/login", s.handleLogin)
		r.With(auth.Middleware(s.auth.Issuer())).Get("/users", s.handleUsers)
	})

	r.Group(func(r chi.Router) {
		if s.authRequired {
			r.Use(auth.Middleware(s.auth.Issuer()))
		}

		s.dashboardRoutes(r, s.ledger)
		r.Route("/bank", func(r chi.Router) {
			s.dashboardRoutes(r, s.bank)
		})

		r.Get("/monthly-comparison", s.handleMonthlyComparison)
		r.Get("/monthly-comparison/export", s.handleMonthlyComparisonExport)
		r.Get("/month/items", s.handleMonthItems)
		r.Post("/month/custom-compare", s.handleCustomCompare)
	})
}

func (s *Server) dashboardRoutes(r chi.Router, d *services.Drilldown) {
	h := dashboardHandlers{server: s, drilldown: d}
	r.Get("/product-summary", h.summary)
	r.Get("/types", h.types)
	r.Get("/parties", h.parties)
	r.Get("/invoices", h.invoices)
	r.Get("/invoices/export", h.invoicesExport)
	r.Get("/opening-balance", h.openingBalance)
	r.Get("/nagdi-tutra", h.nagdiTutra)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "too many login attempts, try again later").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// clock returns the current time in the configured zone.
func (s *Server) clock() time.Time {
	return s.now().In(s.loc)
}

// fail logs err and writes its mapped response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorFor(err)
	ctx := r.Context()
	switch resp.statusCode {
	case http.StatusBadRequest, http.StatusUnauthorized:
		s.logger.WarnContext(ctx, "Request rejected", log.FieldOperation, op, log.FieldError, err)
	default:
		s.logger.ErrorContext(ctx, "Request failed", log.FieldOperation, op, log.FieldError, err)
	}
	resp.Write(w)
}
