package rememberme_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/rememberme/core/rememberme"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := rememberme.DefaultConfig()
	assert.Equal(t, "userdata", cfg.CookieName)
	assert.Equal(t, 10*7*24*time.Hour, cfg.TTL)
	assert.Equal(t, "/auth/cookie-token-auth", cfg.Endpoint)
	assert.Equal(t, "redirect", cfg.RedirectParam)
	assert.True(t, cfg.SweepOnValidate)
	assert.False(t, cfg.MinimizeExposure)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("applies settings", func(t *testing.T) {
		t.Parallel()
		cfg := rememberme.DefaultConfig()
		cfg.TTL = 2 * time.Hour
		cfg.BcryptCost = bcrypt.MinCost
		cfg.IssuePolicy = "once_per_session"

		store := rememberme.NewMemoryStore()
		lc, err := rememberme.NewFromConfig(cfg, store, nil)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, lc.TTL())

		user := uuid.New()
		_, issued, err := lc.OnLogin(context.Background(), rememberme.LoginEvent{UserID: user, IssuedThisSession: true})
		require.NoError(t, err)
		assert.False(t, issued)
	})

	t.Run("explicit options win", func(t *testing.T) {
		t.Parallel()
		cfg := rememberme.DefaultConfig()
		cfg.BcryptCost = bcrypt.MinCost

		lc, err := rememberme.NewFromConfig(cfg, rememberme.NewMemoryStore(), nil, rememberme.WithTTL(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, time.Minute, lc.TTL())
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()

		cfg := rememberme.DefaultConfig()
		cfg.IssuePolicy = "sometimes"
		_, err := rememberme.NewFromConfig(cfg, rememberme.NewMemoryStore(), nil)
		assert.ErrorIs(t, err, rememberme.ErrInvalidConfig)

		cfg = rememberme.DefaultConfig()
		cfg.BcryptCost = 99
		_, err = rememberme.NewFromConfig(cfg, rememberme.NewMemoryStore(), nil)
		assert.ErrorIs(t, err, rememberme.ErrInvalidConfig)

		_, err = rememberme.NewFromConfig(rememberme.DefaultConfig(), nil, nil)
		assert.ErrorIs(t, err, rememberme.ErrNoStore)
	})
}

func TestParseIssuePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want rememberme.IssuePolicy
		ok   bool
	}{
		{"", rememberme.IssueOnEveryLogin, true},
		{"every_login", rememberme.IssueOnEveryLogin, true},
		{"once_per_session", rememberme.IssueOncePerSession, true},
		{"bogus", rememberme.IssueOnEveryLogin, false},
	}
	for _, tt := range tests {
		got, ok := rememberme.ParseIssuePolicy(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
