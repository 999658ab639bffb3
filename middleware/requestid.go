package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rememberme/core/handler"
)

// DefaultRequestIDHeader carries the request ID in both directions.
const DefaultRequestIDHeader = "X-Request-ID"

// maxIncomingRequestID bounds IDs accepted from clients; anything longer is replaced.
const maxIncomingRequestID = 128

type requestIDKey struct{}

// RequestIDConfig configures RequestIDWithConfig.
type RequestIDConfig struct {
	Skip func(ctx handler.Context) bool
	// Generator defaults to a random UUID.
	Generator func() string
	// Header defaults to DefaultRequestIDHeader.
	Header string
	// UseExisting keeps a well-formed ID supplied by a trusted proxy.
	UseExisting bool
}

// RequestID tags every request with a fresh UUID, exposed through
// GetRequestID and echoed in the response header.
func RequestID[C handler.Context]() handler.Middleware[C] {
	return RequestIDWithConfig[C](RequestIDConfig{})
}

func RequestIDWithConfig[C handler.Context](cfg RequestIDConfig) handler.Middleware[C] {
	if cfg.Header == "" {
		cfg.Header = DefaultRequestIDHeader
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string { return uuid.NewString() }
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			id := ""
			if cfg.UseExisting {
				id = acceptRequestID(ctx.Request().Header.Get(cfg.Header))
			}
			if id == "" {
				id = cfg.Generator()
			}
			ctx.SetValue(requestIDKey{}, id)

			resp := next(ctx)
			if resp == nil {
				return nil
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set(cfg.Header, id)
				return resp(w, r)
			}
		}
	}
}

// GetRequestID returns the ID assigned by RequestID.
func GetRequestID(ctx handler.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

func acceptRequestID(v string) string {
	if len(v) > maxIncomingRequestID {
		return ""
	}
	for i := 0; i < len(v); i++ {
		if v[i] < 0x21 || v[i] > 0x7e {
			return ""
		}
	}
	return v
}
