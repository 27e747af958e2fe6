// Package config provides configuration loading and validation for the
// coworking service.
//
// Configuration is built in layers: compiled-in defaults, then zero or more
// JSON or YAML files, then environment variables. Each file layer only
// overrides the keys it contains, so a file may set a single field of a
// nested section.
//
// # Basic Usage
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.json")
//	loader.AddLayer("config/production.yaml") // Overrides base
//
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//
// Duration fields accept Go duration strings ("5s", "250ms") or integer
// nanoseconds.
//
// # Environment Overrides
//
// Variables use the COWORKING_ prefix:
//
//	COWORKING_SERVER_HOST, COWORKING_SERVER_PORT
//	COWORKING_METRICS_ENABLED, COWORKING_METRICS_PORT
//	COWORKING_STORAGE_PATH
//	COWORKING_CACHE_CAPACITY, COWORKING_CACHE_STRATEGY (all entity caches)
//	COWORKING_RATE_LIMIT_ENABLED
//
// A value that cannot be parsed fails the load rather than being ignored.
//
// # Validation
//
// Load validates the merged result unless validation is disabled. Errors wrap
// errors.ErrInvalidConfig or errors.ErrMissingConfig, which classify as fatal.
// Every entity cache must have a positive capacity and a known strategy unless
// it is disabled.
//
// # Security
//
// Config files are read with path traversal checks, a size limit and a JSON
// nesting limit. Files are written with 0600 permissions.
package config
