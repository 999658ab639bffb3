package session

import "time"

// Config is the env-loaded form of the manager options.
type Config struct {
	// TTL is an idle timeout: every touch moves expiry to now+TTL.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	// TouchInterval limits how often an unchanged session is rewritten.
	TouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"`
}

func DefaultConfig() Config {
	return Config{TTL: 24 * time.Hour, TouchInterval: 5 * time.Minute}
}

type Option func(*Config)

func WithTTL(ttl time.Duration) Option {
	return func(c *Config) { c.TTL = ttl }
}

// WithTouchInterval of 0 extends the session on every request.
func WithTouchInterval(d time.Duration) Option {
	return func(c *Config) { c.TouchInterval = d }
}

// NewManagerFromConfig ignores zero durations in cfg.
func NewManagerFromConfig[Data any](cfg Config, store Store[Data], opts ...Option) *Manager[Data] {
	var base []Option
	if cfg.TTL > 0 {
		base = append(base, WithTTL(cfg.TTL))
	}
	if cfg.TouchInterval > 0 {
		base = append(base, WithTouchInterval(cfg.TouchInterval))
	}
	return NewManager(store, append(base, opts...)...)
}
