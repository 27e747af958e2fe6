package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/coworking/errors"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// mapErrorToHTTPStatus maps classified errors to HTTP status codes
func mapErrorToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsConflict(err):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeError returns a safe message for clients. Client errors carry a
// message written for the caller; server errors never expose storage details.
func sanitizeError(status int, err error) string {
	if status < http.StatusInternalServerError && status != http.StatusTooManyRequests {
		var ce *errors.ClassifiedError
		if stderrors.As(err, &ce) && ce.Message != "" {
			return ce.Message
		}
		return err.Error()
	}

	switch status {
	case http.StatusTooManyRequests:
		return "too many requests"
	case http.StatusGatewayTimeout:
		return "request timeout"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}

// writeError maps err to a status and writes the error body. Server errors
// are logged with the full chain.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		g.logger.Error("Request failed",
			"request_id", RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		if g.metrics != nil {
			g.metrics.RecordError("gateway", errors.Classify(err).String())
		}
	}
	g.writeStatus(w, status, sanitizeError(status, err))
}

func (g *Gateway) writeStatus(w http.ResponseWriter, status int, message string) {
	g.writeJSON(w, status, ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		g.logger.Error("Encode response failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		g.logger.Debug("Write response failed", "error", err)
	}
}

// decode reads the request body within the size limit, validates it against
// schema and unmarshals it into v. It writes the error reply and returns false
// on failure.
func (g *Gateway) decode(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, v any) bool {
	defer r.Body.Close()

	// Read one byte past the limit to detect oversized bodies
	body, err := io.ReadAll(io.LimitReader(r.Body, g.config.MaxRequestSize+1))
	if err != nil {
		g.writeError(w, r, errors.Invalidf("Gateway", "decode", "Failed to read request body"))
		return false
	}
	if int64(len(body)) > g.config.MaxRequestSize {
		g.writeStatus(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", g.config.MaxRequestSize))
		return false
	}
	g.bytesReceived.Add(uint64(len(body)))

	if err := validateBody(schema, body); err != nil {
		g.writeError(w, r, err)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		if !errors.IsInvalid(err) {
			err = errors.Invalidf("Gateway", "decode", "Malformed JSON request body")
		}
		g.writeError(w, r, err)
		return false
	}
	return true
}

// pathID parses the {id} path segment
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Invalidf("Gateway", "pathID", "Invalid ID format: %q", raw)
	}
	return id, nil
}
