package cache

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360/coworking/errors"
)

func TestConfig_Unmarshal(t *testing.T) {
	want := Config{Enabled: true, Strategy: StrategyLRU, Capacity: 250}

	t.Run("json", func(t *testing.T) {
		var got Config
		require.NoError(t, json.Unmarshal([]byte(`{"enabled": true, "strategy": "lru", "capacity": 250}`), &got))
		assert.Equal(t, want, got)
	})

	t.Run("yaml", func(t *testing.T) {
		var got Config
		require.NoError(t, yaml.Unmarshal([]byte("enabled: true\nstrategy: lru\ncapacity: 250\n"), &got))
		assert.Equal(t, want, got)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"lru", Config{Enabled: true, Strategy: StrategyLRU, Capacity: 1}, false},
		{"disabled ignores fields", Config{Enabled: false, Strategy: "bogus", Capacity: -1}, false},
		{"unknown strategy", Config{Enabled: true, Strategy: "ttl", Capacity: 10}, true},
		{"empty strategy", Config{Enabled: true, Capacity: 10}, true},
		{"zero capacity", Config{Enabled: true, Strategy: StrategyLFU, Capacity: 0}, true},
		{"negative capacity", Config{Enabled: true, Strategy: StrategyLFU, Capacity: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrInvalidConfig)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, StrategyLFU, cfg.Strategy)
	assert.Equal(t, DefaultCapacity, cfg.Capacity)
	assert.Equal(t, 100, cfg.Capacity)
}

func TestNewFromConfig(t *testing.T) {
	t.Run("lfu", func(t *testing.T) {
		c, err := NewFromConfig[int64, string](DefaultConfig())
		require.NoError(t, err)
		assert.IsType(t, &lfuCache[int64, string]{}, c)
		assert.Equal(t, 100, c.Capacity())
	})

	t.Run("lru", func(t *testing.T) {
		c, err := NewFromConfig[int64, string](Config{Enabled: true, Strategy: StrategyLRU, Capacity: 5})
		require.NoError(t, err)
		assert.IsType(t, &lruCache[int64, string]{}, c)
		assert.Equal(t, 5, c.Capacity())
	})

	t.Run("disabled", func(t *testing.T) {
		c, err := NewFromConfig[int64, string](Config{Enabled: false})
		require.NoError(t, err)
		assert.IsType(t, &noopCache[int64, string]{}, c)
	})

	t.Run("invalid", func(t *testing.T) {
		c, err := NewFromConfig[int64, string](Config{Enabled: true, Strategy: StrategyLFU})
		require.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestNoopCache(t *testing.T) {
	c := NewNoop[int64, string]()

	assert.False(t, c.Put(1, "a"))
	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.False(t, c.Remove(1))
	c.Clear()
	assert.Zero(t, c.Size())
	assert.Zero(t, c.Capacity())
	assert.Empty(t, c.Keys())
	assert.Nil(t, c.Stats())
}
