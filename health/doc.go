// Package health reports whether the coworking service and its dependencies
// can serve requests.
//
// # Status Model
//
// A Status is healthy, degraded or unhealthy. Aggregate combines component
// statuses into one: any unhealthy component makes the whole unhealthy, any
// degraded component (with no unhealthy one) makes it degraded.
//
// # Monitor
//
// A Monitor holds named checks. Run executes them concurrently and returns the
// aggregate:
//
//	monitor := health.NewMonitor()
//	monitor.AddCheck("storage", health.PingCheck("storage", store))
//	monitor.AddCheck("gateway", restGateway.HealthCheck)
//
//	status := monitor.Run(ctx, "coworking")
//
// # HTTP
//
// Handler serves GET /health with the aggregate as JSON. It answers 503 when
// the service is unhealthy and 200 otherwise, so a degraded service stays in
// rotation.
//
// # Security
//
// Error text from failed checks passes through a sanitizer that replaces
// URLs, file paths, IP addresses, ports and credential-looking pairs with
// placeholders before it reaches the response.
package health
