package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuekit/venuekit/pkg/config"
)

type testConfig struct {
	Name     string        `env:"CONFIG_TEST_NAME" envDefault:"default-name"`
	Port     int           `env:"CONFIG_TEST_PORT" envDefault:"8080"`
	Interval time.Duration `env:"CONFIG_TEST_INTERVAL" envDefault:"5s"`
	Required string        `env:"CONFIG_TEST_REQUIRED,required"`
}

type defaultsOnlyConfig struct {
	Name string `env:"CONFIG_DEFAULTS_NAME" envDefault:"fallback"`
}

func TestLoad(t *testing.T) {
	t.Run("reads values from environment", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_NAME", "worker")
		t.Setenv("CONFIG_TEST_PORT", "9090")
		t.Setenv("CONFIG_TEST_INTERVAL", "250ms")
		t.Setenv("CONFIG_TEST_REQUIRED", "set")

		cfg, err := config.Load[testConfig]()
		require.NoError(t, err)
		assert.Equal(t, "worker", cfg.Name)
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	})

	t.Run("applies defaults when unset", func(t *testing.T) {
		cfg, err := config.Load[defaultsOnlyConfig]()
		require.NoError(t, err)
		assert.Equal(t, "fallback", cfg.Name)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		_, err := config.Load[testConfig]()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value type fails", func(t *testing.T) {
		t.Setenv("CONFIG_TEST_PORT", "not-a-number")
		t.Setenv("CONFIG_TEST_REQUIRED", "set")

		_, err := config.Load[testConfig]()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})
}

func TestLoadFromFiles(t *testing.T) {
	t.Run("missing file fails", func(t *testing.T) {
		_, err := config.LoadFromFiles[defaultsOnlyConfig]("does-not-exist.env")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})
}
