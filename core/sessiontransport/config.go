package sessiontransport

import (
	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/session"
)

// DefaultCookieName is distinct from the remember-me cookie so the two
// never overwrite each other.
const DefaultCookieName = "__session"

type CookieConfig struct {
	Name string `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
}

func DefaultCookieConfig() CookieConfig {
	return CookieConfig{Name: DefaultCookieName}
}

// NewCookieFromConfig falls back to DefaultCookieName when cfg.Name is empty.
func NewCookieFromConfig[Data any](cfg CookieConfig, sessions *session.Manager[Data], cookies *cookie.Manager) *Cookie[Data] {
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	return NewCookie(sessions, cookies, cfg.Name)
}
