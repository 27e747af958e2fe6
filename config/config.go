package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/coworking/errors"
	"github.com/c360/coworking/gateway"
	"github.com/c360/coworking/pkg/cache"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Gateway   gateway.Config  `json:"gateway"`
	Metrics   MetricsConfig   `json:"metrics"`
	Storage   StorageConfig   `json:"storage"`
	Cache     CacheConfig     `json:"cache"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig defines the API HTTP server
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// Address returns the listen address in host:port form
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MetricsConfig defines the Prometheus scrape endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// StorageConfig defines the SQLite store
type StorageConfig struct {
	Path         string        `json:"path"` // File path or ":memory:"
	BusyTimeout  time.Duration `json:"busy_timeout"`
	MaxOpenConns int           `json:"max_open_conns,omitempty"`
}

// CacheConfig holds one cache configuration per entity kind. The caches are
// independent instances.
type CacheConfig struct {
	Spaces       cache.Config `json:"spaces"`
	Reservations cache.Config `json:"reservations"`
	Users        cache.Config `json:"users"`
}

// RateLimitConfig defines the global API request limit
type RateLimitConfig struct {
	Enabled           bool    `json:"enabled"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Gateway: gateway.DefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Storage: StorageConfig{
			Path:        "coworking.db",
			BusyTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Spaces:       cache.DefaultConfig(),
			Reservations: cache.DefaultConfig(),
			Users:        cache.DefaultConfig(),
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 100,
			Burst:             200,
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if err := validatePort("server.port", c.Server.Port); err != nil {
		return err
	}

	if err := c.Gateway.Validate(); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}

	if c.Metrics.Enabled {
		if err := validatePort("metrics.port", c.Metrics.Port); err != nil {
			return err
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics.port must differ from server.port (%d): %w",
				c.Server.Port, errors.ErrInvalidConfig)
		}
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required: %w", errors.ErrMissingConfig)
	}
	if c.Storage.BusyTimeout < 0 {
		return fmt.Errorf("storage.busy_timeout cannot be negative: %w", errors.ErrInvalidConfig)
	}

	caches := []struct {
		name string
		cfg  cache.Config
	}{
		{"cache.spaces", c.Cache.Spaces},
		{"cache.reservations", c.Cache.Reservations},
		{"cache.users", c.Cache.Users},
	}
	for _, entry := range caches {
		if err := entry.cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", entry.name, err)
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive: %w", errors.ErrInvalidConfig)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate_limit.burst must be positive: %w", errors.ErrInvalidConfig)
		}
	}

	return nil
}

func validatePort(field string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s %d out of range: %w", field, port, errors.ErrInvalidConfig)
	}
	return nil
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
