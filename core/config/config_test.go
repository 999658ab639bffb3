package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/config"
)

type tokenConfig struct {
	CookieName string        `env:"TEST_REMEMBERME_COOKIE_NAME" envDefault:"userdata"`
	TTL        time.Duration `env:"TEST_REMEMBERME_TTL" envDefault:"1680h"`
}

type requiredConfig struct {
	URL string `env:"TEST_CONFIG_REQUIRED_URL,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults and caching", func(t *testing.T) {
		config.Reset()
		t.Setenv("TEST_REMEMBERME_COOKIE_NAME", "remember")

		var cfg tokenConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "remember", cfg.CookieName)
		assert.Equal(t, 1680*time.Hour, cfg.TTL)

		t.Setenv("TEST_REMEMBERME_COOKIE_NAME", "changed")

		var again tokenConfig
		require.NoError(t, config.Load(&again))
		assert.Equal(t, "remember", again.CookieName, "second load must come from cache")

		config.Reset()
		var fresh tokenConfig
		require.NoError(t, config.Load(&fresh))
		assert.Equal(t, "changed", fresh.CookieName)
	})

	t.Run("missing required value", func(t *testing.T) {
		config.Reset()

		var cfg requiredConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParse)
	})

	t.Run("must load panics", func(t *testing.T) {
		config.Reset()

		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})
}
