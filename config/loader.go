package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/coworking/errors"
	"github.com/c360/coworking/pkg/cache"
)

// DefaultEnvPrefix prefixes every environment override
const DefaultEnvPrefix = "COWORKING"

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: true,
		envPrefix:  DefaultEnvPrefix,
		lookupEnv:  os.LookupEnv,
	}
}

// AddLayer adds a configuration file layer. Later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Load each layer and merge using map-based approach
	for _, path := range l.layers {
		rawConfig, err := l.loadRaw(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg, err = l.mergeFromMap(cfg, rawConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", path, err)
		}
	}

	// Apply environment overrides
	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadRaw loads a JSON or YAML file as a generic map
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	var rawConfig map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrParsingFailed, err)
		}
	default:
		// Validate JSON depth to prevent DoS
		if err := validateJSONDepth(data); err != nil {
			return nil, fmt.Errorf("invalid JSON structure: %w", err)
		}
		if err := json.Unmarshal(data, &rawConfig); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrParsingFailed, err)
		}
	}

	// Convert duration strings
	parseDurations(rawConfig)

	return rawConfig, nil
}

// durationFields lists the section.field pairs holding time.Duration values
var durationFields = map[string][]string{
	"server":  {"read_timeout", "write_timeout", "shutdown_timeout"},
	"storage": {"busy_timeout"},
}

// parseDurations converts duration strings to nanoseconds for json unmarshaling
func parseDurations(data map[string]any) {
	for section, fields := range durationFields {
		values, ok := data[section].(map[string]any)
		if !ok {
			continue
		}
		for _, field := range fields {
			if s, ok := values[field].(string); ok {
				if d, err := time.ParseDuration(s); err == nil {
					values[field] = d.Nanoseconds()
				}
			}
		}
	}
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	mergedJSON, err := json.Marshal(deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, err
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrParsingFailed, err)
	}

	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}

		// If both base and override have maps at this key, merge them
		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		result[k] = v
	}

	return result
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	env := func(suffix string) (string, string, bool) {
		key := l.envPrefix + "_" + suffix
		val, ok := l.lookupEnv(key)
		return key, val, ok && val != ""
	}

	var firstErr error
	setInt := func(suffix string, dst *int) {
		key, val, ok := env(suffix)
		if !ok || firstErr != nil {
			return
		}
		if firstErr = validateEnvVar(key, val); firstErr != nil {
			return
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			firstErr = fmt.Errorf("%s=%q is not an integer: %w", key, val, errors.ErrInvalidConfig)
			return
		}
		*dst = n
	}
	setBool := func(suffix string, dst *bool) {
		key, val, ok := env(suffix)
		if !ok || firstErr != nil {
			return
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			firstErr = fmt.Errorf("%s=%q is not a boolean: %w", key, val, errors.ErrInvalidConfig)
			return
		}
		*dst = b
	}
	setString := func(suffix string, dst *string) {
		key, val, ok := env(suffix)
		if !ok || firstErr != nil {
			return
		}
		if firstErr = validateEnvVar(key, val); firstErr != nil {
			return
		}
		*dst = val
	}

	// Server overrides
	setString("SERVER_HOST", &cfg.Server.Host)
	setInt("SERVER_PORT", &cfg.Server.Port)

	// Metrics overrides
	setBool("METRICS_ENABLED", &cfg.Metrics.Enabled)
	setInt("METRICS_PORT", &cfg.Metrics.Port)

	// Storage overrides
	setString("STORAGE_PATH", &cfg.Storage.Path)

	// Cache overrides apply to every entity cache
	capacity := 0
	setInt("CACHE_CAPACITY", &capacity)
	strategy := ""
	setString("CACHE_STRATEGY", &strategy)
	for _, c := range []*cache.Config{&cfg.Cache.Spaces, &cfg.Cache.Reservations, &cfg.Cache.Users} {
		if capacity != 0 {
			c.Capacity = capacity
		}
		if strategy != "" {
			c.Strategy = cache.Strategy(strings.ToLower(strategy))
		}
	}

	// Rate limit overrides
	setBool("RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled)

	return firstErr
}
