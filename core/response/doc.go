// Package response provides handler.Response constructors for plain text,
// HTML templates, JSON and redirects, plus error handlers for the router.
//
//	func profile(ctx *router.Context) handler.Response {
//		user, err := users.Get(ctx, id)
//		if err != nil {
//			return response.Error(response.ErrNotFound.WithError(err))
//		}
//		return response.JSON(user)
//	}
//
// Redirects answer HTMX requests with an HX-Location header and 200 OK.
// LocalRedirect only follows paths on the same site and is the helper to use
// whenever the target comes from the request, such as a "redirect" query
// parameter.
//
// ErrorHandler and JSONErrorHandler translate errors into responses: an
// HTTPError is rendered as is, errors with a StatusCode() int method pick the
// matching predefined error, router.ErrNotFound and router.ErrMethodNotAllowed
// map to 404 and 405, and everything else is a 500.
package response
