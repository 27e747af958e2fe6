package gateway_test

import (
	"encoding/json"
	"testing"
	"time"

	pkgerrors "github.com/c360/coworking/errors"
	"github.com/c360/coworking/gateway"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      gateway.Config
		expectError bool
	}{
		{
			name: "valid config with CORS",
			config: gateway.Config{
				EnableCORS:     true,
				CORSOrigins:    []string{"https://example.com"},
				MaxRequestSize: 1024 * 1024,
			},
			expectError: false,
		},
		{
			name: "valid config without CORS",
			config: gateway.Config{
				MaxRequestSize: 2048,
				TimeoutStr:     "2s",
			},
			expectError: false,
		},
		{
			name:        "zero value gets defaults",
			config:      gateway.Config{},
			expectError: false,
		},
		{
			name: "CORS without origins",
			config: gateway.Config{
				EnableCORS: true,
			},
			expectError: true,
		},
		{
			name: "negative max request size",
			config: gateway.Config{
				MaxRequestSize: -1,
			},
			expectError: true,
		},
		{
			name: "max request size too large",
			config: gateway.Config{
				MaxRequestSize: 200 * 1024 * 1024, // 200MB
			},
			expectError: true,
		},
		{
			name: "unparseable timeout",
			config: gateway.Config{
				TimeoutStr: "soon",
			},
			expectError: true,
		},
		{
			name: "timeout too short",
			config: gateway.Config{
				TimeoutStr: "50ms",
			},
			expectError: true,
		},
		{
			name: "timeout too long",
			config: gateway.Config{
				TimeoutStr: "60s",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error but got nil")
				}
				if !pkgerrors.IsInvalid(err) {
					t.Errorf("expected Invalid error classification, got: %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.config.MaxRequestSize <= 0 {
				t.Errorf("expected MaxRequestSize default to be set, got: %d", tt.config.MaxRequestSize)
			}
			if tt.config.TimeoutStr == "" && tt.config.Timeout() != 5*time.Second {
				t.Errorf("expected default timeout of 5s, got: %v", tt.config.Timeout())
			}
		})
	}
}

func TestConfig_ParsedTimeout(t *testing.T) {
	cfg := gateway.Config{TimeoutStr: "750ms"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Timeout() != 750*time.Millisecond {
		t.Errorf("expected 750ms, got: %v", cfg.Timeout())
	}
}

func TestConfig_UnmarshalJSON(t *testing.T) {
	var cfg gateway.Config
	raw := `{"enable_cors": true, "cors_origins": ["*"], "max_request_size": 4096, "request_timeout": "1s"}`
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !cfg.EnableCORS || cfg.CORSOrigins[0] != "*" || cfg.MaxRequestSize != 4096 || cfg.Timeout() != time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := gateway.DefaultConfig()

	if config.EnableCORS {
		t.Error("expected EnableCORS to be false by default (requires explicit configuration)")
	}

	if len(config.CORSOrigins) != 0 {
		t.Errorf("expected default CORS origins to be empty, got: %v", config.CORSOrigins)
	}

	if config.MaxRequestSize != 1024*1024 {
		t.Errorf("expected default MaxRequestSize to be 1MB, got: %d", config.MaxRequestSize)
	}

	if config.Timeout() != gateway.DefaultRequestTimeout {
		t.Errorf("expected default timeout %v, got: %v", gateway.DefaultRequestTimeout, config.Timeout())
	}

	if err := config.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}
