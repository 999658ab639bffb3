// Package middleware provides HTTP middleware built on handler.Context:
// request IDs, request logging, sessions and the remember-me gate.
//
// All middleware follows the same pattern: a generic constructor with
// defaults, a WithConfig variant taking a config struct with an optional
// Skip func, and context helpers for values the middleware stores.
//
// # Sessions
//
// Session loads the session through a SessionTransport before the handler and
// saves it afterwards. Handlers read and replace it with GetSession,
// MustGetSession and SetSession. SessionValues exposes the session's string
// values to other middleware.
//
// # Remember-me
//
// RememberMe signs returning users in from their remember-me cookie at most
// once per session. The attempt state lives in the session, so the gate must
// be installed after Session:
//
//	gate := middleware.RememberMeConfig[*router.Context]{
//		Lifecycle:       lifecycle,
//		Transport:       remembertransport.NewCookie(cookies),
//		Sessions:        middleware.SessionValues[AppData](),
//		IsAuthenticated: signedIn,
//		OnAuthenticated: signIn,
//	}
//
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Use(middleware.Logging[*router.Context](log))
//	r.Use(middleware.Session[*router.Context, AppData](sessions))
//	r.Use(middleware.RememberMe(gate))
//	r.Handle(middleware.DefaultRememberMeEndpoint, middleware.RememberMeEndpoint(gate))
//
// With MinimizeExposure the cookie path is restricted to EndpointPath and the
// first GET of a session is redirected there and back. Login and logout
// handlers call RememberMeLogin and RememberMeLogout to issue and revoke chains.
package middleware
