package router_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/router"
)

func text(body string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(body))
		return err
	}
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return http.StatusText(e.code) }
func (e statusErr) StatusCode() int { return e.code }

func TestRouterRouting(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/users/{id}", func(ctx *router.Context) handler.Response {
		return text("user " + ctx.Param("id"))
	})
	r.Post("/users", func(ctx *router.Context) handler.Response {
		return text("created")
	})

	t.Run("path parameter", func(t *testing.T) {
		t.Parallel()
		w := serve(t, r, http.MethodGet, "/users/42")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user 42", w.Body.String())
	})

	t.Run("method", func(t *testing.T) {
		t.Parallel()
		w := serve(t, r, http.MethodPost, "/users")
		assert.Equal(t, "created", w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		w := serve(t, r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), router.ErrNotFound.Error())
	})

	t.Run("method not allowed", func(t *testing.T) {
		t.Parallel()
		w := serve(t, r, http.MethodDelete, "/users")
		assert.Contains(t, w.Body.String(), router.ErrMethodNotAllowed.Error())
	})
}

func TestRouterMethod(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Method("/both", func(ctx *router.Context) handler.Response {
		return text(ctx.Request().Method)
	}, http.MethodGet, http.MethodPost)

	assert.Equal(t, http.MethodGet, serve(t, r, http.MethodGet, "/both").Body.String())
	assert.Equal(t, http.MethodPost, serve(t, r, http.MethodPost, "/both").Body.String())

	assert.Panics(t, func() {
		r.Method("/bad", func(ctx *router.Context) handler.Response { return text("") }, "FETCH")
	})
	assert.Panics(t, func() {
		r.Get("no-slash", func(ctx *router.Context) handler.Response { return text("") })
	})
}

func TestRouterMiddlewareOrder(t *testing.T) {
	t.Parallel()

	tag := func(name string) handler.Middleware[*router.Context] {
		return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
			return func(ctx *router.Context) handler.Response {
				ctx.ResponseWriter().Header().Add("X-Order", name)
				return next(ctx)
			}
		}
	}

	r := router.New[*router.Context](router.WithMiddleware(tag("option")))
	r.Use(tag("use"))
	r.Get("/plain", func(ctx *router.Context) handler.Response { return text("plain") })
	r.With(tag("with")).Get("/with", func(ctx *router.Context) handler.Response { return text("with") })
	r.Group(func(g router.Router[*router.Context]) {
		g.Use(tag("group"))
		g.Get("/group", func(ctx *router.Context) handler.Response { return text("group") })
	})
	r.Route("/api", func(sub router.Router[*router.Context]) {
		sub.Use(tag("route"))
		sub.Get("/ping", func(ctx *router.Context) handler.Response { return text("pong") })
	})

	tests := []struct {
		path  string
		order []string
	}{
		{"/plain", []string{"option", "use"}},
		{"/with", []string{"option", "use", "with"}},
		{"/group", []string{"option", "use", "group"}},
		{"/api/ping", []string{"option", "use", "route"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			w := serve(t, r, http.MethodGet, tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.order, w.Header().Values("X-Order"))
		})
	}

	// Use after routes is a programming error.
	assert.Panics(t, func() { r.Use(tag("late")) })
}

func TestRouterMount(t *testing.T) {
	t.Parallel()

	sub := router.New[*router.Context]()
	sub.Get("/{name}", func(ctx *router.Context) handler.Response {
		return text("hello " + ctx.Param("name"))
	})

	var handled error
	r := router.New[*router.Context](router.WithErrorHandler(func(ctx *router.Context, err error) {
		handled = err
		ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
	}))
	r.Mount("/greet", sub)

	w := serve(t, r, http.MethodGet, "/greet/ann")
	assert.Equal(t, "hello ann", w.Body.String())

	// Mounted routers inherit the parent error handler.
	w = serve(t, r, http.MethodGet, "/greet/ann/extra")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.ErrorIs(t, handled, router.ErrNotFound)

	assert.Panics(t, func() { r.Mount("/nil", nil) })
}

func TestRouterErrors(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/status", func(ctx *router.Context) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			return statusErr{code: http.StatusUnauthorized}
		}
	})
	r.Get("/nil", func(ctx *router.Context) handler.Response { return nil })
	r.Get("/written", func(ctx *router.Context) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			return errors.New("late failure")
		}
	})

	w := serve(t, r, http.MethodGet, "/status")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(t, r, http.MethodGet, "/nil")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), router.ErrNilResponse.Error())

	// A response that already wrote keeps its status.
	w = serve(t, r, http.MethodGet, "/written")
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRouterPanicRecovery(t *testing.T) {
	t.Parallel()

	var captured router.PanicError
	r := router.New[*router.Context](router.WithErrorHandler(func(ctx *router.Context, err error) {
		require.ErrorAs(t, err, &captured)
		ctx.ResponseWriter().WriteHeader(http.StatusInternalServerError)
	}))
	r.Get("/boom", func(ctx *router.Context) handler.Response {
		panic("boom")
	})

	w := serve(t, r, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "boom", captured.Value())
	assert.NotEmpty(t, captured.Stack())
}

type ctxKey struct{}

func TestContextSetValue(t *testing.T) {
	t.Parallel()

	setter := func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			ctx.SetValue(ctxKey{}, "v")
			return next(ctx)
		}
	}

	r := router.New[*router.Context]()
	r.Use(setter)
	r.Get("/", func(ctx *router.Context) handler.Response {
		fromCtx, _ := ctx.Value(ctxKey{}).(string)
		return func(w http.ResponseWriter, req *http.Request) error {
			fromReq, _ := req.Context().Value(ctxKey{}).(string)
			_, err := w.Write([]byte(fromCtx + fromReq))
			return err
		}
	})

	w := serve(t, r, http.MethodGet, "/")
	assert.Equal(t, "vv", w.Body.String())

	var _ context.Context = router.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
}

type appContext struct {
	*router.Context
	tenant string
}

func TestRouterCustomContext(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		r := router.New[*appContext]()
		r.Get("/", func(ctx *appContext) handler.Response { return text("") })
		serve(t, r, http.MethodGet, "/")
	})

	r := router.New[*appContext](router.WithContextFactory(func(w http.ResponseWriter, r *http.Request, params map[string]string) *appContext {
		return &appContext{Context: router.NewContext(w, r, params), tenant: "acme"}
	}))
	r.Get("/", func(ctx *appContext) handler.Response { return text(ctx.tenant) })

	assert.Equal(t, "acme", serve(t, r, http.MethodGet, "/").Body.String())
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/a", func(ctx *router.Context) handler.Response { return text("") })
	r.Route("/b", func(sub router.Router[*router.Context]) {
		sub.Post("/c", func(ctx *router.Context) handler.Response { return text("") })
	})

	assert.ElementsMatch(t, []router.Route{
		{Method: http.MethodGet, Pattern: "/a"},
		{Method: http.MethodPost, Pattern: "/b/c"},
	}, r.Routes())
}
