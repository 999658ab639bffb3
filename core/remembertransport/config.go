package remembertransport

import (
	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/rememberme"
)

// NewCookieFromConfig creates the cookie transport for cfg. With minimize
// exposure on, the cookie path is restricted to the dedicated endpoint.
func NewCookieFromConfig(cfg rememberme.Config, manager *cookie.Manager, opts ...Option) *Cookie {
	base := []Option{
		WithName(cfg.CookieName),
		WithTTL(cfg.TTL),
	}
	if cfg.MinimizeExposure {
		base = append(base, WithPath(cfg.Endpoint))
	}

	return NewCookie(manager, append(base, opts...)...)
}
