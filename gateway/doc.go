// Package gateway holds what every HTTP surface of the coworking service
// shares: the gateway configuration and the HTTPHandler registration
// interface.
//
// # Overview
//
// The API server owns a single http.ServeMux. Components that expose routes
// implement HTTPHandler and register themselves under a prefix:
//
//	mux := http.NewServeMux()
//	for _, h := range []gateway.HTTPHandler{restGateway, healthHandler} {
//		h.RegisterHTTPHandlers("/", mux)
//	}
//
// The REST implementation lives in subpackage http.
//
// # Configuration
//
// Config controls request body limits, per-request timeouts and CORS:
//
//	{
//	  "gateway": {
//	    "enable_cors": true,
//	    "cors_origins": ["https://app.example.com"],
//	    "max_request_size": 1048576,
//	    "request_timeout": "5s"
//	  }
//	}
//
// Validate fills defaults (1MB bodies, 5s timeout) and rejects CORS without
// explicit origins.
package gateway
