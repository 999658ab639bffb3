package app

import (
	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/logger"
	"github.com/dmitrymomot/rememberme/core/rememberme"
	"github.com/dmitrymomot/rememberme/core/server"
	"github.com/dmitrymomot/rememberme/core/session"
	"github.com/dmitrymomot/rememberme/core/sessiontransport"
)

// Session store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
)

// Config is the server configuration, loaded from the environment. Backend
// connection settings are loaded separately, only for the stores in use.
type Config struct {
	Logger        logger.Config
	Server        server.Config
	Cookie        cookie.Config
	Session       session.Config
	SessionCookie sessiontransport.CookieConfig
	// SessionStore is memory or redis.
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	RememberMe   rememberme.Config

	// Demo account created at startup when both are set.
	DemoEmail    string `env:"DEMO_USER_EMAIL"`
	DemoPassword string `env:"DEMO_USER_PASSWORD"`
}

// DefaultConfig returns a configuration with in-memory stores.
// Cookie.Secrets must still be set.
func DefaultConfig() Config {
	return Config{
		Logger:        logger.Config{Level: "info", Format: "text", Service: "rememberme"},
		Server:        server.DefaultConfig(),
		Cookie:        cookie.DefaultConfig(),
		Session:       session.DefaultConfig(),
		SessionCookie: sessiontransport.DefaultCookieConfig(),
		SessionStore:  StoreMemory,
		RememberMe:    rememberme.DefaultConfig(),
	}
}
