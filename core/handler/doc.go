// Package handler defines the request abstractions shared by the router,
// the response helpers and the middleware.
//
// A HandlerFunc receives a typed Context and returns a Response. The Response
// is a deferred render step: middleware may inspect or wrap it before the
// router executes it, and returning one early halts the chain. That is how
// the remember-me gate redirects before the page handler runs:
//
//	func gate(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
//		return func(ctx *router.Context) handler.Response {
//			if needsCookieLogin(ctx) {
//				return response.Redirect("/auth/cookie-token-auth?redirect=%2F")
//			}
//			return next(ctx)
//		}
//	}
//
// Errors returned by a Response go to the router's ErrorHandler.
package handler
