// Package metric provides Prometheus-based metrics collection and an HTTP server
// exposing them.
//
// MetricsRegistry owns a private prometheus.Registry with the Go and process
// collectors, the core service metrics (HTTP requests, errors, visits, store
// operations) and any component metrics registered through MetricsRegistrar.
// Entity caches register their hit/miss/eviction counters here.
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() { _ = server.Start() }()
//
//	registry.CoreMetrics().RecordVisit("/api/spaces")
//
// Registering the same component/metric pair twice returns an invalid-class error.
package metric
