package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/c360/coworking/gateway"
)

// DefaultCheckTimeout bounds one run of all checks
const DefaultCheckTimeout = 2 * time.Second

// Handler serves the aggregated status of a Monitor
type Handler struct {
	monitor *Monitor
	system  string
	timeout time.Duration
	logger  *slog.Logger
}

var _ gateway.HTTPHandler = (*Handler)(nil)

// NewHandler creates a handler reporting monitor under the system name
func NewHandler(monitor *Monitor, system string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		monitor: monitor,
		system:  system,
		timeout: DefaultCheckTimeout,
		logger:  logger,
	}
}

// RegisterHTTPHandlers exposes GET {prefix}health
func (h *Handler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	mux.Handle("GET "+prefix+"health", h)
}

// ServeHTTP runs all checks and answers 200 unless the service is unhealthy
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := h.monitor.Run(ctx, h.system)

	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
		h.logger.Warn("Health check failed", "status", status.Status, "message", status.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.logger.Debug("Failed to write health response", "error", err)
	}
}
