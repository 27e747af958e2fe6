package gateway

import "net/http"

// HTTPHandler is implemented by everything that exposes routes on the API
// server: the REST gateway and the health endpoint.
//
// The prefix is prepended to every route the handler registers. Patterns use
// the method-qualified ServeMux syntax, for example:
//
//	func (h *Handler) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
//		mux.HandleFunc("GET "+prefix+"health", h.serveHealth)
//	}
type HTTPHandler interface {
	RegisterHTTPHandlers(prefix string, mux *http.ServeMux)
}
