// Package router provides a typed HTTP router on top of chi.
//
// Handlers receive a context type C that implements handler.Context and
// return a handler.Response. The router builds C for every request, recovers
// panics, and routes errors returned by the response to a single error
// handler.
//
//	r := router.New[*router.Context](
//		router.WithLogger[*router.Context](log),
//		router.WithMiddleware(middleware.Session[*router.Context, any](sessionCfg)),
//	)
//
//	r.Get("/users/{id}", func(ctx *router.Context) handler.Response {
//		return response.String("user " + ctx.Param("id"))
//	})
//
//	r.Route("/auth", func(r router.Router[*router.Context]) {
//		r.Get("/cookie-token-auth", rememberMeEndpoint)
//	})
//
// Custom context types need a factory:
//
//	router.New[*AppContext](router.WithContextFactory(newAppContext))
//
// Middleware added with Use must be registered before any route on the same
// router. With and Group create inline routers that share the parent tree and
// extend its middleware stack; Route creates a nested router that inherits it.
// Mounted routers keep their own middleware.
//
// Unknown paths and unsupported methods reach the error handler as ErrNotFound
// and ErrMethodNotAllowed. Errors implementing StatusCode() int choose their
// own status in the default error handler. Recovered panics implement
// PanicError.
package router
