package gateway

import (
	"fmt"
	"time"

	"github.com/c360/coworking/errors"
)

// DefaultRequestTimeout bounds one API request when no timeout is configured.
const DefaultRequestTimeout = 5 * time.Second

// Config holds configuration for the REST gateway
type Config struct {
	// EnableCORS enables CORS headers (default: false, requires explicit cors_origins)
	EnableCORS bool `json:"enable_cors"`

	// CORSOrigins lists allowed CORS origins (required when EnableCORS is true)
	// Use ["*"] for development only
	CORSOrigins []string `json:"cors_origins,omitempty"`

	// MaxRequestSize limits request body size in bytes (default: 1MB)
	MaxRequestSize int64 `json:"max_request_size,omitempty"`

	// TimeoutStr bounds each request (default: "5s")
	TimeoutStr string `json:"request_timeout,omitempty"`

	// timeout is the parsed duration (internal use)
	timeout time.Duration
}

// Validate ensures the gateway configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.MaxRequestSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_request_size cannot be negative")
	}

	if c.MaxRequestSize == 0 {
		c.MaxRequestSize = 1024 * 1024 // 1MB default
	}

	if c.MaxRequestSize > 100*1024*1024 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_request_size cannot exceed 100MB")
	}

	// CORS requires explicit origin configuration
	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"enable_cors requires explicit cors_origins configuration (use [\"*\"] for development only)")
	}

	if c.TimeoutStr == "" {
		c.timeout = DefaultRequestTimeout
	} else {
		parsed, err := time.ParseDuration(c.TimeoutStr)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid request_timeout format: %s", c.TimeoutStr))
		}
		c.timeout = parsed
	}

	// Validate timeout range (100ms to 30s)
	if c.timeout < 100*time.Millisecond || c.timeout > 30*time.Second {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"request_timeout must be between 100ms and 30s")
	}

	return nil
}

// Timeout returns the parsed request timeout, DefaultRequestTimeout before Validate
func (c Config) Timeout() time.Duration {
	if c.timeout == 0 {
		return DefaultRequestTimeout
	}
	return c.timeout
}

// DefaultConfig returns default gateway configuration
func DefaultConfig() Config {
	return Config{
		EnableCORS:     false,       // Disabled by default (requires explicit configuration)
		MaxRequestSize: 1024 * 1024, // 1MB
		timeout:        DefaultRequestTimeout,
	}
}
