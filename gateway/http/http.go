// Package http serves the coworking REST API over net/http.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/c360/coworking/booking"
	"github.com/c360/coworking/errors"
	"github.com/c360/coworking/gateway"
	"github.com/c360/coworking/health"
	"github.com/c360/coworking/metric"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// degradedErrorRate marks the gateway degraded once this share of requests
// fails, counted after minRequestsForRate requests.
const (
	degradedErrorRate  = 0.5
	minRequestsForRate = 20
)

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by Middleware, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// getOrGenerateRequestID extracts the request ID from headers or generates a
// new one
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get(RequestIDHeader); reqID != "" {
		return reqID
	}
	return uuid.NewString()
}

// Dependencies are the services the gateway serves. Spaces, Users and
// Reservations are required.
type Dependencies struct {
	Spaces       SpaceService
	Users        UserService
	Reservations ReservationService
	Caches       CacheStats
	Visits       VisitCounter
	Metrics      *metric.Metrics
	Logger       *slog.Logger
}

// Option configures a Gateway
type Option func(*Gateway)

// WithRateLimit applies a global token bucket to every request. Requests over
// the limit get 429.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(g *Gateway) {
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// Gateway serves the REST API
type Gateway struct {
	config       gateway.Config
	spaces       SpaceService
	users        UserService
	reservations ReservationService
	caches       CacheStats
	visits       VisitCounter
	metrics      *metric.Metrics
	logger       *slog.Logger
	limiter      *rate.Limiter

	mu           sync.RWMutex
	startTime    time.Time
	lastActivity time.Time

	requestsTotal  atomic.Uint64
	requestsFailed atomic.Uint64
	bytesReceived  atomic.Uint64
	bytesSent      atomic.Uint64
}

var _ gateway.HTTPHandler = (*Gateway)(nil)

// NewGateway creates the REST gateway
func NewGateway(cfg gateway.Config, deps Dependencies, opts ...Option) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Gateway", "NewGateway", "config validation")
	}

	if deps.Spaces == nil || deps.Users == nil || deps.Reservations == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Gateway", "NewGateway",
			"entity services are required")
	}

	g := &Gateway{
		config:       cfg,
		spaces:       deps.Spaces,
		users:        deps.Users,
		reservations: deps.Reservations,
		caches:       deps.Caches,
		visits:       deps.Visits,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		startTime:    time.Now(),
	}
	if g.visits == nil {
		if g.metrics != nil {
			g.visits = booking.NewVisitCounter(g.metrics)
		} else {
			g.visits = booking.NewVisitCounter(nil)
		}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = g.logger.With("component", "gateway")

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Handler returns the API routes behind Middleware
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	g.RegisterHTTPHandlers("/", mux)
	return g.Middleware(mux)
}

// RegisterHTTPHandlers registers the API routes under prefix. Wrap the mux
// with Middleware to get request ids, CORS and rate limiting.
func (g *Gateway) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	routes := []struct {
		method  string
		path    string
		handler http.HandlerFunc
	}{
		{http.MethodPost, "api/spaces", g.createSpace},
		{http.MethodGet, "api/spaces", g.listSpaces},
		{http.MethodPost, "api/spaces/bulk", g.createSpaces},
		{http.MethodGet, "api/spaces/{id}", g.getSpace},
		{http.MethodPut, "api/spaces/{id}", g.updateSpace},
		{http.MethodDelete, "api/spaces/{id}", g.deleteSpace},

		{http.MethodPost, "api/users", g.createUser},
		{http.MethodGet, "api/users", g.listUsers},
		{http.MethodPost, "api/users/bulk", g.createUsers},
		{http.MethodGet, "api/users/with-reservations", g.usersWithReservations},
		{http.MethodGet, "api/users/by-space/{id}", g.usersBySpace},
		{http.MethodGet, "api/users/{id}", g.getUser},
		{http.MethodPut, "api/users/{id}", g.updateUser},
		{http.MethodDelete, "api/users/{id}", g.deleteUser},

		{http.MethodPost, "api/reservations", g.createReservation},
		{http.MethodGet, "api/reservations", g.listReservations},
		{http.MethodPost, "api/reservations/bulk", g.createReservations},
		{http.MethodGet, "api/reservations/{id}", g.getReservation},
		{http.MethodPut, "api/reservations/{id}", g.updateReservation},
		{http.MethodDelete, "api/reservations/{id}", g.deleteReservation},

		{http.MethodGet, "api/cache/stats", g.cacheStats},
		{http.MethodGet, "visits/count", g.visitCount},
		{http.MethodGet, "visits/all", g.allVisits},
	}

	for _, route := range routes {
		path := prefix + route.path
		mux.Handle(route.method+" "+path, g.instrument(path, route.handler))
	}
}

// Middleware assigns request ids, answers CORS preflights and enforces the
// rate limit before next runs.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getOrGenerateRequestID(r)
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		if g.config.EnableCORS {
			g.applyCORS(w, r)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		if g.limiter != nil && !g.limiter.Allow() {
			g.writeError(w, r, errors.WrapTransient(errors.ErrRateLimited, "Gateway", "Middleware",
				"rate limit"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code and size of a response
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// instrument counts the visit, bounds the request by the configured timeout
// and records the outcome.
func (g *Gateway) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		g.requestsTotal.Add(1)
		g.mu.Lock()
		g.lastActivity = start
		g.mu.Unlock()

		g.visits.Register(route, r.URL.Path)

		ctx, cancel := context.WithTimeout(r.Context(), g.config.Timeout())
		defer cancel()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r.WithContext(ctx))

		if rec.status >= http.StatusBadRequest {
			g.requestsFailed.Add(1)
		}
		g.bytesSent.Add(uint64(rec.bytes))
		if g.metrics != nil {
			g.metrics.RecordHTTPRequest(r.Method, route, rec.status, time.Since(start))
		}
	})
}

// applyCORS applies CORS headers to the response
func (g *Gateway) applyCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")

	allowed := false
	for _, allowedOrigin := range g.config.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			allowed = true
			break
		}
	}

	if allowed {
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "3600")
	}
}

// HealthCheck reports the gateway as degraded while most recent requests fail
func (g *Gateway) HealthCheck(_ context.Context) health.Status {
	g.mu.RLock()
	startTime := g.startTime
	lastActivity := g.lastActivity
	g.mu.RUnlock()

	total := g.requestsTotal.Load()
	failed := g.requestsFailed.Load()

	status := health.NewHealthy("gateway", "Serving requests")
	if total >= minRequestsForRate && float64(failed)/float64(total) >= degradedErrorRate {
		status = health.NewDegraded("gateway", "Most requests are failing")
	}

	return status.WithMetrics(&health.Metrics{
		Uptime:         time.Since(startTime),
		ErrorCount:     int64(failed),
		RequestsServed: int64(total),
		LastActivity:   lastActivity,
	})
}
