package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/logger"
	"github.com/dmitrymomot/rememberme/core/rememberme"
	"github.com/dmitrymomot/rememberme/core/response"
)

// Session value keys used by the remember-me gate.
const (
	// RememberMeStateKey holds the per-session attempt state.
	RememberMeStateKey = "remember_me"
	// RememberMeIssuedKey is set once a chain was issued in the session.
	RememberMeIssuedKey = "remember_me_issued"
)

// Attempt states. A missing value means no attempt yet.
const (
	RememberMePending   = "pending"
	RememberMeAttempted = "attempted"
)

// Defaults for the minimize-exposure redirect.
const (
	DefaultRememberMeEndpoint = "/auth/cookie-token-auth"
	DefaultRedirectParam      = "redirect"
)

// ErrNoSession is returned by session-backed stores when the request carries no session.
var ErrNoSession = errors.New("no session in request context")

// SessionValueStore keeps small string values in the host session.
type SessionValueStore interface {
	Read(ctx handler.Context, key string) (string, bool)
	Write(ctx handler.Context, key, value string) error
}

// RememberMeLifecycle is the token lifecycle used by the gate.
// *rememberme.Lifecycle implements it.
type RememberMeLifecycle interface {
	rememberme.Authenticator
	rememberme.Listener
}

// RememberMeTransport reads and writes the remember-me cookie.
// *remembertransport.Cookie implements it.
type RememberMeTransport interface {
	Read(r *http.Request) (rememberme.Credential, bool)
	Write(w http.ResponseWriter, cred rememberme.Credential) error
	Clear(w http.ResponseWriter)
	Apply(w http.ResponseWriter, res rememberme.Result) error
}

// RememberMeConfig configures the remember-me gate, its endpoint and the
// login/logout helpers.
type RememberMeConfig[C handler.Context] struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx C) bool
	// Lifecycle validates, rotates and revokes credentials (required)
	Lifecycle RememberMeLifecycle
	// Transport carries the credential cookie (required)
	Transport RememberMeTransport
	// Sessions stores the attempt state (required)
	Sessions SessionValueStore
	// IsAuthenticated reports whether the request already has a signed-in user.
	// Authenticated requests never touch the cookie.
	IsAuthenticated func(ctx C) bool
	// OnAuthenticated signs the user in after a successful cookie login (required)
	OnAuthenticated func(ctx C, userID uuid.UUID) error
	// Notifier builds the user-facing notifier for a response; nil disables notifications
	Notifier func(w http.ResponseWriter, r *http.Request) rememberme.Notifier
	// MinimizeExposure restricts the cookie to EndpointPath and reaches it by redirect
	MinimizeExposure bool
	// EndpointPath is the dedicated cookie login path (default: /auth/cookie-token-auth)
	EndpointPath string
	// RedirectParam names the query parameter with the return path (default: redirect)
	RedirectParam string
	// Fallback is used when the return path is missing or not local (default: /)
	Fallback string
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
}

func (cfg *RememberMeConfig[C]) normalize() {
	if cfg.Lifecycle == nil {
		panic("rememberme middleware: lifecycle is required")
	}
	if cfg.Transport == nil {
		panic("rememberme middleware: transport is required")
	}
	if cfg.Sessions == nil {
		panic("rememberme middleware: session value store is required")
	}
	if cfg.OnAuthenticated == nil {
		panic("rememberme middleware: OnAuthenticated is required")
	}
	if cfg.IsAuthenticated == nil {
		cfg.IsAuthenticated = func(C) bool { return false }
	}
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = DefaultRememberMeEndpoint
	}
	if cfg.RedirectParam == "" {
		cfg.RedirectParam = DefaultRedirectParam
	}
	if cfg.Fallback == "" {
		cfg.Fallback = "/"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// RememberMe creates the gate that signs returning users in from their
// remember-me cookie, at most once per session.
//
// Without MinimizeExposure the cookie is checked inline on the first request of
// a session. With MinimizeExposure the cookie is only sent to EndpointPath, so
// the first GET or HEAD of a session is redirected there with the original
// path in RedirectParam; RememberMeEndpoint handles it and redirects back.
// Other methods are never redirected and leave the state untouched.
//
// The gate must run inside the Session middleware so the attempt state is
// saved with the session.
//
//	gate := middleware.RememberMeConfig[*router.Context]{
//		Lifecycle:       lifecycle,
//		Transport:       remembertransport.NewCookieFromConfig(cfg, cookies),
//		Sessions:        middleware.SessionValues[AppData](),
//		IsAuthenticated: isSignedIn,
//		OnAuthenticated: signIn,
//	}
//	r.Use(middleware.Session[*router.Context, AppData](transport))
//	r.Use(middleware.RememberMe(gate))
//	r.Handle(middleware.DefaultRememberMeEndpoint, middleware.RememberMeEndpoint(gate))
func RememberMe[C handler.Context](cfg RememberMeConfig[C]) handler.Middleware[C] {
	cfg.normalize()

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}
			if ctx.Request().URL.Path == cfg.EndpointPath {
				return next(ctx)
			}
			if cfg.IsAuthenticated(ctx) {
				return next(ctx)
			}
			if state, _ := cfg.Sessions.Read(ctx, RememberMeStateKey); state != "" {
				return next(ctx)
			}

			if cfg.MinimizeExposure {
				r := ctx.Request()
				if r.Method != http.MethodGet && r.Method != http.MethodHead {
					return next(ctx)
				}
				if err := cfg.Sessions.Write(ctx, RememberMeStateKey, RememberMePending); err != nil {
					// Without a place to remember the attempt the redirect would loop.
					cfg.Logger.WarnContext(ctx, "rememberme middleware: cannot record attempt", logger.Error(err))
					return next(ctx)
				}
				return response.Redirect(endpointURL(cfg.EndpointPath, cfg.RedirectParam, r.URL.RequestURI()))
			}

			if err := cfg.Sessions.Write(ctx, RememberMeStateKey, RememberMeAttempted); err != nil {
				cfg.Logger.WarnContext(ctx, "rememberme middleware: cannot record attempt", logger.Error(err))
				return next(ctx)
			}
			attemptRememberMe(ctx, &cfg)
			return next(ctx)
		}
	}
}

// RememberMeEndpoint handles the dedicated cookie login path used when
// MinimizeExposure is on. It accepts any method, runs the attempt once per
// session and redirects to the local return path, on success or failure.
func RememberMeEndpoint[C handler.Context](cfg RememberMeConfig[C]) handler.HandlerFunc[C] {
	cfg.normalize()

	return func(ctx C) handler.Response {
		target := ctx.Request().URL.Query().Get(cfg.RedirectParam)
		back := response.LocalRedirect(target, cfg.Fallback)

		if cfg.IsAuthenticated(ctx) {
			return back
		}
		if state, _ := cfg.Sessions.Read(ctx, RememberMeStateKey); state == RememberMeAttempted {
			return back
		}
		if err := cfg.Sessions.Write(ctx, RememberMeStateKey, RememberMeAttempted); err != nil {
			cfg.Logger.WarnContext(ctx, "rememberme endpoint: cannot record attempt", logger.Error(err))
		}
		attemptRememberMe(ctx, &cfg)
		return back
	}
}

// RememberMeLogin gives the rememberme lifecycle a chance to issue a chain
// after a login performed by another authenticator (source). The new cookie
// is written to the response. It reports whether a chain was issued.
func RememberMeLogin[C handler.Context](ctx C, cfg RememberMeConfig[C], userID uuid.UUID, source string) (bool, error) {
	cfg.normalize()

	issued, _ := cfg.Sessions.Read(ctx, RememberMeIssuedKey)
	cred, ok, err := cfg.Lifecycle.OnLogin(ctx, rememberme.LoginEvent{
		UserID:            userID,
		Source:            source,
		IssuedThisSession: issued != "",
	})
	if err != nil || !ok {
		return false, err
	}

	if err := cfg.Transport.Write(ctx.ResponseWriter(), cred); err != nil {
		return false, err
	}
	if err := cfg.Sessions.Write(ctx, RememberMeIssuedKey, "1"); err != nil {
		cfg.Logger.WarnContext(ctx, "rememberme login: cannot record issuance", logger.Error(err))
	}
	return true, nil
}

// RememberMeLogout revokes the presented chain and always clears the cookie.
// A mismatching cookie at logout counts as theft and notifies the user.
func RememberMeLogout[C handler.Context](ctx C, cfg RememberMeConfig[C]) rememberme.Result {
	cfg.normalize()

	cred, _ := cfg.Transport.Read(ctx.Request())
	res := cfg.Lifecycle.OnLogout(ctx, cred)
	cfg.Transport.Clear(ctx.ResponseWriter())

	if res.IsTheft() {
		notify(ctx, &cfg, rememberme.SeverityError, rememberme.TheftMessage)
	}
	if res.Err != nil {
		cfg.Logger.WarnContext(ctx, "rememberme logout: revoke failed",
			logger.Error(res.Err),
			slog.String("state", res.State.String()),
		)
	}
	return res
}

// attemptRememberMe runs the lifecycle on the request cookie and applies the
// result. Failures are logged; the request always continues, signed in or not.
func attemptRememberMe[C handler.Context](ctx C, cfg *RememberMeConfig[C]) {
	cred, present := cfg.Transport.Read(ctx.Request())
	if !present {
		return
	}
	if cred.IsZero() {
		// Present but undecodable.
		cfg.Transport.Clear(ctx.ResponseWriter())
		return
	}

	res := cfg.Lifecycle.TryAuthenticate(ctx, cred)
	if err := cfg.Transport.Apply(ctx.ResponseWriter(), res); err != nil {
		cfg.Logger.ErrorContext(ctx, "rememberme middleware: failed to write cookie", logger.Error(err))
	}

	switch {
	case res.IsAuthenticated():
		if err := cfg.OnAuthenticated(ctx, res.UserID); err != nil {
			cfg.Logger.ErrorContext(ctx, "rememberme middleware: sign in failed",
				logger.Error(err),
				logger.UserID(res.UserID),
			)
		}
	case res.IsTheft():
		notify(ctx, cfg, rememberme.SeverityError, rememberme.TheftMessage)
	}

	if res.Err != nil {
		cfg.Logger.WarnContext(ctx, "rememberme middleware: cookie login failed",
			logger.Error(res.Err),
			slog.String("state", res.State.String()),
		)
	}
}

func notify[C handler.Context](ctx C, cfg *RememberMeConfig[C], severity rememberme.Severity, msg string) {
	if cfg.Notifier == nil {
		return
	}
	if n := cfg.Notifier(ctx.ResponseWriter(), ctx.Request()); n != nil {
		n.Notify(ctx, severity, msg)
	}
}

func endpointURL(endpoint, param, target string) string {
	return endpoint + "?" + url.Values{param: {target}}.Encode()
}
