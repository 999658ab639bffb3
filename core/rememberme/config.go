package rememberme

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds lifecycle settings loaded from the environment.
type Config struct {
	CookieName       string        `env:"REMEMBERME_COOKIE_NAME" envDefault:"userdata"`
	TTL              time.Duration `env:"REMEMBERME_TTL" envDefault:"1680h"`
	BcryptCost       int           `env:"REMEMBERME_BCRYPT_COST" envDefault:"10"`
	SweepOnValidate  bool          `env:"REMEMBERME_SWEEP_ON_VALIDATE" envDefault:"true"`
	SweepInterval    time.Duration `env:"REMEMBERME_SWEEP_INTERVAL" envDefault:"1h"`
	IssuePolicy      string        `env:"REMEMBERME_ISSUE_POLICY" envDefault:"every_login"`
	MinimizeExposure bool          `env:"REMEMBERME_MINIMIZE_EXPOSURE" envDefault:"false"`
	Endpoint         string        `env:"REMEMBERME_ENDPOINT" envDefault:"/auth/cookie-token-auth"`
	RedirectParam    string        `env:"REMEMBERME_REDIRECT_PARAM" envDefault:"redirect"`
	Store            string        `env:"REMEMBERME_STORE" envDefault:"memory"`
}

// DefaultConfig returns the configuration used when nothing is set in the environment.
func DefaultConfig() Config {
	return Config{
		CookieName:      "userdata",
		TTL:             DefaultTTL,
		BcryptCost:      bcrypt.DefaultCost,
		SweepOnValidate: true,
		SweepInterval:   time.Hour,
		IssuePolicy:     "every_login",
		Endpoint:        "/auth/cookie-token-auth",
		RedirectParam:   "redirect",
		Store:           "memory",
	}
}

// NewFromConfig builds a Lifecycle from cfg. Explicit opts are applied after
// the config-derived ones and take precedence.
func NewFromConfig(cfg Config, store Store, log *slog.Logger, opts ...Option) (*Lifecycle, error) {
	policy, ok := ParseIssuePolicy(cfg.IssuePolicy)
	if !ok {
		return nil, fmt.Errorf("%w: unknown issue policy %q", ErrInvalidConfig, cfg.IssuePolicy)
	}

	base := []Option{
		WithSweepOnValidate(cfg.SweepOnValidate),
		WithIssuePolicy(policy),
		WithLogger(log),
	}
	if cfg.TTL != 0 {
		base = append(base, WithTTL(cfg.TTL))
	}
	if cfg.BcryptCost != 0 {
		codec, err := NewCodec(WithBcryptCost(cfg.BcryptCost))
		if err != nil {
			return nil, err
		}
		base = append(base, WithCodec(codec))
	}

	return New(store, append(base, opts...)...)
}
