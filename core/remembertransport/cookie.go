package remembertransport

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/rememberme"
)

// DefaultCookieName matches the name used by existing deployments.
const DefaultCookieName = "userdata"

// Cookie carries a remember-me credential in an encrypted, HttpOnly cookie.
type Cookie struct {
	manager *cookie.Manager
	name    string
	path    string
	ttl     time.Duration
	secure  bool
}

// Option configures a Cookie transport.
type Option func(*Cookie)

// WithName sets the cookie name.
func WithName(name string) Option {
	return func(c *Cookie) {
		if name != "" {
			c.name = name
		}
	}
}

// WithPath restricts the cookie to one path, typically the dedicated endpoint.
func WithPath(path string) Option {
	return func(c *Cookie) {
		if path != "" {
			c.path = path
		}
	}
}

// WithTTL sets the cookie lifetime. Use the lifecycle TTL so both expire together.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cookie) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSecure marks the cookie HTTPS-only.
func WithSecure(secure bool) Option {
	return func(c *Cookie) {
		c.secure = secure
	}
}

// NewCookie creates a cookie transport. Panics if manager is nil.
func NewCookie(manager *cookie.Manager, opts ...Option) *Cookie {
	if manager == nil {
		panic("remembertransport: cookie manager is required")
	}

	c := &Cookie{
		manager: manager,
		name:    DefaultCookieName,
		path:    "/",
		ttl:     rememberme.DefaultTTL,
		secure:  manager.Defaults().Secure,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Read returns the credential carried by the request. present is true when a
// cookie with the configured name exists, even if it could not be decoded; in
// that case the returned credential is zero and the caller should clear it.
func (c *Cookie) Read(r *http.Request) (cred rememberme.Credential, present bool) {
	err := c.manager.GetJSON(r, c.name, &cred)
	switch {
	case err == nil:
		return cred, true
	case errors.Is(err, cookie.ErrNotFound):
		return rememberme.Credential{}, false
	default:
		return rememberme.Credential{}, true
	}
}

// Write stores cred in the response.
func (c *Cookie) Write(w http.ResponseWriter, cred rememberme.Credential) error {
	if !cred.Valid() {
		return rememberme.ErrInvalidCredential
	}
	return c.manager.SetJSON(w, c.name, cred, c.options(cookie.WithTTL(c.ttl))...)
}

// Clear expires the cookie on the client.
func (c *Cookie) Clear(w http.ResponseWriter) {
	c.manager.Delete(w, c.name, c.options()...)
}

// Apply writes the cookie side effects of a lifecycle result: the rotated
// credential on success, removal when the result asks for it.
func (c *Cookie) Apply(w http.ResponseWriter, res rememberme.Result) error {
	switch {
	case res.Issued != nil:
		return c.Write(w, *res.Issued)
	case res.ClearCookie:
		c.Clear(w)
	}
	return nil
}

// Name returns the cookie name.
func (c *Cookie) Name() string { return c.name }

// Path returns the cookie path.
func (c *Cookie) Path() string { return c.path }

func (c *Cookie) options(extra ...cookie.Option) []cookie.Option {
	return append([]cookie.Option{
		cookie.WithPath(c.path),
		cookie.WithHTTPOnly(true),
		cookie.WithSecure(c.secure),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}, extra...)
}
