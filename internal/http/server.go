package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"esgreporter/internal/catalog"
	"esgreporter/internal/core"
	"esgreporter/internal/log"
	"esgreporter/internal/middleware/ratelimit"
	"esgreporter/internal/middleware/security"
	"esgreporter/internal/middleware/trace"
	"esgreporter/internal/services"
)

// handlerTimeout bounds the store work done on behalf of one request.
const handlerTimeout = 7 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Companies   *services.CompanyService
	Entries     *services.EntryService
	Aggregation *services.AggregationService
	Reports     *services.ReportService
	Catalog     catalog.Catalog
	Store       Pinger
	Logger      *log.Logger

	// Archive is checked by /readyz when set. Its failure is reported but
	// does not make the server unready.
	Archive Pinger

	// RateLimitPerMinute caps POST requests per client. Zero uses the
	// limiter default.
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	companies   *services.CompanyService
	entries     *services.EntryService
	aggregation *services.AggregationService
	reports     *services.ReportService
	catalog     catalog.Catalog
	store       Pinger
	archive     Pinger

	logger   *log.Logger
	errLog   *log.StructuredLogger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware, returning a ready-to-run
// http.Server. Every route is served at the root and again under /api.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector(logger)
	limitCfg := ratelimit.DefaultConfig()
	limitCfg.RequestsPerMinute = deps.RateLimitPerMinute

	s := &Server{
		companies:   deps.Companies,
		entries:     deps.Entries,
		aggregation: deps.Aggregation,
		reports:     deps.Reports,
		catalog:     deps.Catalog,
		store:       deps.Store,
		archive:     deps.Archive,
		logger:      httpLogger,
		errLog:      log.NewStructuredLogger(httpLogger),
		limiter:     ratelimit.NewLimiter(limitCfg),
		tracer:      trace.NewMiddleware(logger, detector.ExtractClientIP),
		detector:    detector,
	}

	routes := http.NewServeMux()
	routes.HandleFunc("/company", s.handleCompany)
	for _, kind := range core.Kinds() {
		routes.HandleFunc("/"+kind.String(), s.handleEntries(kind))
	}
	routes.HandleFunc("/reports", s.handleReports)
	routes.HandleFunc("/categories", s.handleCategories)
	routes.HandleFunc("/healthz", handleHealth)
	routes.HandleFunc("/readyz", s.handleReady)
	routes.HandleFunc("/metrics", s.handleMetrics)
	routes.HandleFunc("/", handleNotFound)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", routes))
	mux.Handle("/", routes)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// chain applies the middleware stack, outermost first.
func (s *Server) chain(h http.Handler) http.Handler {
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.Middleware(s.logger)(h)
	return h
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
}

// Shutdown gracefully shuts down the server and the limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// requestContext bounds r's context with the handler timeout.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), handlerTimeout)
}
