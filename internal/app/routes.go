package app

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/health"
	"github.com/dmitrymomot/rememberme/core/logger"
	"github.com/dmitrymomot/rememberme/core/remembertransport"
	"github.com/dmitrymomot/rememberme/core/response"
	"github.com/dmitrymomot/rememberme/core/router"
	"github.com/dmitrymomot/rememberme/internal/users"
	"github.com/dmitrymomot/rememberme/middleware"
)

// passwordSource names the password authenticator in login events.
const passwordSource = "password"

func (a *App) routes() http.Handler {
	r := router.New[*router.Context](
		router.WithLogger[*router.Context](a.log),
		router.WithErrorHandler(response.ErrorHandler[*router.Context]),
	)

	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](a.log, a.checks...))

	r.Group(func(r router.Router[*router.Context]) {
		r.Use(middleware.RequestID[*router.Context]())
		r.Use(middleware.Logging[*router.Context](a.log))
		r.Use(middleware.Session[*router.Context, SessionData](a.sessions))
		r.Use(middleware.RememberMe(a.gate))

		r.Handle(a.cfg.RememberMe.Endpoint, middleware.RememberMeEndpoint(a.gate))
		r.Get("/", a.home)
		r.Get("/login", a.loginForm)
		r.Post("/login", a.login)
		r.Post("/logout", a.logout)
		r.Post("/account/delete", a.deleteAccount)
	})

	return r
}

type page struct {
	Email  string
	Error  string
	Notice *remembertransport.Message
}

func (a *App) page(ctx *router.Context) page {
	var p page
	if msg, ok := a.flash.Pop(ctx.ResponseWriter(), ctx.Request()); ok {
		p.Notice = &msg
	}
	return p
}

func (a *App) home(ctx *router.Context) handler.Response {
	sess, ok := middleware.GetSession[SessionData](ctx)
	if !ok || !sess.IsAuthenticated() {
		return response.RedirectSeeOther("/login")
	}
	p := a.page(ctx)
	p.Email = sess.Data.Email
	return response.Template(a.views, "home.html", p)
}

func (a *App) loginForm(ctx *router.Context) handler.Response {
	if isSignedIn(ctx) {
		return response.RedirectSeeOther("/")
	}
	return response.Template(a.views, "login.html", a.page(ctx))
}

func (a *App) login(ctx *router.Context) handler.Response {
	r := ctx.Request()
	if err := r.ParseForm(); err != nil {
		return response.Error(response.ErrBadRequest.WithError(err))
	}

	email := r.PostForm.Get("email")
	u, err := a.users.Authenticate(ctx, email, r.PostForm.Get("password"))
	if errors.Is(err, users.ErrInvalidCredentials) {
		return response.TemplateWithStatus(a.views, "login.html",
			page{Email: email, Error: "Invalid email or password."}, http.StatusUnauthorized)
	}
	if err != nil {
		return response.Error(err)
	}

	if err := a.signIn(ctx, u.ID); err != nil {
		return response.Error(err)
	}
	if _, err := middleware.RememberMeLogin(ctx, a.gate, u.ID, passwordSource); err != nil {
		// The user is signed in for this session even without a chain.
		a.log.WarnContext(ctx, "remember-me issue failed", logger.UserID(u.ID), logger.Error(err))
	}
	return response.RedirectSeeOther("/")
}

func (a *App) logout(ctx *router.Context) handler.Response {
	middleware.RememberMeLogout(ctx, a.gate)

	sess, ok := middleware.GetSession[SessionData](ctx)
	if !ok {
		return response.RedirectSeeOther("/login")
	}
	sess, err := a.sessions.Logout(ctx, sess)
	if err != nil {
		return response.Error(err)
	}
	middleware.SetSession(ctx, sess)
	return response.RedirectSeeOther("/login")
}

func (a *App) deleteAccount(ctx *router.Context) handler.Response {
	sess, ok := middleware.GetSession[SessionData](ctx)
	if !ok || !sess.IsAuthenticated() {
		return response.Error(response.ErrUnauthorized)
	}

	if err := a.users.Delete(ctx, sess.UserID); err != nil {
		return response.Error(err)
	}
	a.log.InfoContext(ctx, "account deleted", logger.UserID(sess.UserID))

	// Chains are gone already; this only clears the cookie.
	middleware.RememberMeLogout(ctx, a.gate)

	sess, err := a.sessions.Logout(ctx, sess)
	if err != nil {
		return response.Error(err)
	}
	middleware.SetSession(ctx, sess)
	return response.RedirectSeeOther("/login")
}
