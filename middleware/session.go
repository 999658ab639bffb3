package middleware

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/logger"
	"github.com/dmitrymomot/rememberme/core/response"
	"github.com/dmitrymomot/rememberme/core/session"
)

type sessionKey struct{}

// SessionTransport moves sessions between requests and the session store.
type SessionTransport[Data any] interface {
	Load(handler.Context) (session.Session[Data], error)
	Save(handler.Context, session.Session[Data]) error
}

// SessionConfig configures the session middleware.
type SessionConfig[C handler.Context, Data any] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Transport loads the session at the start of the request and saves it
	// after the handler (see sessiontransport.Cookie)
	Transport SessionTransport[Data]
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
	// RequireAuth enforces authenticated user (UserID != uuid.Nil)
	// Returns ErrorHandler response if not authenticated
	RequireAuth bool
	// RequireGuest enforces guest/unauthenticated (UserID == uuid.Nil)
	// Returns ErrorHandler response if authenticated
	RequireGuest bool
	// ErrorHandler defines custom response for auth failures
	// Default: renders HTTP errors as-is, anything else as response.ErrUnauthorized
	ErrorHandler func(ctx C, err error) handler.Response
}

// Session creates middleware that loads the session from transport, stores it
// in the request context and saves it after the handler returns.
//
//	r.Use(middleware.Session[*router.Context, AppData](transport))
//
//	func dashboard(ctx *router.Context) handler.Response {
//		sess := middleware.MustGetSession[AppData](ctx)
//		return response.String(sess.UserID.String())
//	}
func Session[C handler.Context, Data any](transport SessionTransport[Data]) handler.Middleware[C] {
	return SessionWithConfig[C, Data](SessionConfig[C, Data]{
		Transport: transport,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// SessionWithConfig creates a session middleware with custom configuration.
//
// A transport load failure is logged and the request continues without a
// session, unless the request context is already done. Save
// failures go to ErrorHandler. RequireAuth and RequireGuest gate the route on
// the session's authentication state:
//
//	protected := r.With(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, AppData]{
//		Transport:   transport,
//		RequireAuth: true,
//		ErrorHandler: func(ctx *router.Context, err error) handler.Response {
//			return response.Redirect("/login")
//		},
//	}))
func SessionWithConfig[C handler.Context, Data any](cfg SessionConfig[C, Data]) handler.Middleware[C] {
	if cfg.Transport == nil {
		panic("session middleware: transport is required")
	}

	if cfg.RequireAuth && cfg.RequireGuest {
		panic("session middleware: RequireAuth and RequireGuest cannot both be true")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			var httpErr response.HTTPError
			if errors.As(err, &httpErr) {
				return response.Error(httpErr)
			}
			return response.Error(response.ErrUnauthorized)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			sess, err := cfg.Transport.Load(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return response.Error(ctxErr)
				}
				cfg.Logger.ErrorContext(ctx, "session middleware: failed to load session", logger.Error(err))
				if cfg.RequireAuth {
					return cfg.ErrorHandler(ctx, err)
				}
				// Degrade to a request without session; nothing is saved.
				return next(ctx)
			}

			// Check authentication requirements
			if cfg.RequireAuth && !sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrUnauthorized)
			}

			if cfg.RequireGuest && sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrForbidden)
			}

			ctx.SetValue(sessionKey{}, sess)

			resp := next(ctx)

			// Get current session (handler may have mutated it)
			currentSess, ok := GetSession[Data](ctx)
			if !ok {
				return resp // Session removed from context
			}

			if err := cfg.Transport.Save(ctx, currentSess); err != nil {
				cfg.Logger.ErrorContext(ctx, "session middleware: failed to save session", logger.Error(err))
				return cfg.ErrorHandler(ctx, err)
			}

			return resp
		}
	}
}

// GetSession retrieves session from context.
// Returns the session and true if found, empty session and false otherwise.
func GetSession[Data any](ctx handler.Context) (session.Session[Data], bool) {
	if ctx == nil {
		return session.Session[Data]{}, false
	}

	if sess, ok := ctx.Value(sessionKey{}).(session.Session[Data]); ok {
		return sess, true
	}

	return session.Session[Data]{}, false
}

// MustGetSession retrieves session from context or panics if not found.
// Use this when session existence is guaranteed by middleware.
func MustGetSession[Data any](ctx handler.Context) session.Session[Data] {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// SetSession updates session in context.
// Use this to store modified session state during request processing.
func SetSession[Data any](ctx handler.Context, sess session.Session[Data]) {
	ctx.SetValue(sessionKey{}, sess)
}

// SessionValues exposes Session.Values of the request session as a
// SessionValueStore. Writes are saved by the Session middleware.
func SessionValues[Data any]() SessionValueStore {
	return sessionValues[Data]{}
}

type sessionValues[Data any] struct{}

func (sessionValues[Data]) Read(ctx handler.Context, key string) (string, bool) {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		return "", false
	}
	return sess.Get(key)
}

func (sessionValues[Data]) Write(ctx handler.Context, key, value string) error {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		return ErrNoSession
	}
	sess.Set(key, value)
	SetSession(ctx, sess)
	return nil
}
