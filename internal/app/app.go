// Package app wires the demo server: password login, sessions and
// remember-me authentication on top of the selected stores.
package app

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/health"
	"github.com/dmitrymomot/rememberme/core/logger"
	"github.com/dmitrymomot/rememberme/core/rememberme"
	"github.com/dmitrymomot/rememberme/core/remembertransport"
	"github.com/dmitrymomot/rememberme/core/router"
	"github.com/dmitrymomot/rememberme/core/server"
	"github.com/dmitrymomot/rememberme/core/session"
	"github.com/dmitrymomot/rememberme/core/sessiontransport"
	"github.com/dmitrymomot/rememberme/internal/users"
	"github.com/dmitrymomot/rememberme/middleware"
)

// SessionData is the application part of a session.
type SessionData struct {
	Email string `json:"email,omitempty"`
}

// App is the assembled server.
type App struct {
	cfg      Config
	log      *slog.Logger
	users    *users.Service
	tokens   rememberme.Store
	lc       *rememberme.Lifecycle
	sessions *sessiontransport.Cookie[SessionData]
	manager  *session.Manager[SessionData]
	flash    *remembertransport.Flash
	gate     middleware.RememberMeConfig[*router.Context]
	views    *template.Template
	checks   []health.Check
	handler  http.Handler
}

// New builds the application on the given backends.
func New(ctx context.Context, cfg Config, log *slog.Logger, deps Deps) (*App, error) {
	if cfg.Cookie.Secrets == "" {
		return nil, ErrNoCookieSecret
	}
	if log == nil {
		log = logger.New()
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return nil, err
	}

	tokens, err := newTokenStore(ctx, cfg.RememberMe.Store, deps)
	if err != nil {
		return nil, err
	}

	sessStore, err := newSessionStore(cfg.SessionStore, deps)
	if err != nil {
		return nil, err
	}

	views, err := parseViews()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		tokens:  tokens,
		manager: session.NewManagerFromConfig(cfg.Session, sessStore),
		flash:   remembertransport.NewFlash(cookies, ""),
		views:   views,
		checks:  deps.checks(),
	}
	a.users = newUsers(cfg, deps, tokens)
	a.sessions = sessiontransport.NewCookieFromConfig(cfg.SessionCookie, a.manager, cookies)

	a.lc, err = rememberme.NewFromConfig(cfg.RememberMe, tokens, log.With(logger.Component("rememberme")),
		rememberme.WithUserLookup(a.users.Exists),
	)
	if err != nil {
		return nil, err
	}

	a.gate = middleware.RememberMeConfig[*router.Context]{
		Lifecycle:        a.lc,
		Transport:        remembertransport.NewCookieFromConfig(cfg.RememberMe, cookies),
		Sessions:         middleware.SessionValues[SessionData](),
		IsAuthenticated:  isSignedIn,
		OnAuthenticated:  a.signIn,
		Notifier:         a.flash.Notifier,
		MinimizeExposure: cfg.RememberMe.MinimizeExposure,
		EndpointPath:     cfg.RememberMe.Endpoint,
		RedirectParam:    cfg.RememberMe.RedirectParam,
		Logger:           log,
	}

	if err := a.seedDemoUser(ctx); err != nil {
		return nil, err
	}

	a.handler = a.routes()
	return a, nil
}

// Handler returns the HTTP handler of the application.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Users returns the user service.
func (a *App) Users() *users.Service {
	return a.users
}

// Run serves HTTP and runs the background sweepers until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	srv, err := server.NewFromConfig(a.cfg.Server, server.WithLogger(a.log))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(ctx, a.handler))
	g.Go(func() error {
		return a.lc.RunSweeper(ctx, a.cfg.RememberMe.SweepInterval)
	})
	g.Go(func() error {
		a.cleanupSessions(ctx, a.cfg.RememberMe.SweepInterval)
		return nil
	})
	return g.Wait()
}

func (a *App) cleanupSessions(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.manager.CleanupExpired(ctx); err != nil && ctx.Err() == nil {
				a.log.WarnContext(ctx, "session cleanup failed", logger.Component("session"), logger.Error(err))
			}
		}
	}
}

func (a *App) seedDemoUser(ctx context.Context) error {
	if a.cfg.DemoEmail == "" || a.cfg.DemoPassword == "" {
		return nil
	}
	u, err := a.users.Register(ctx, a.cfg.DemoEmail, a.cfg.DemoPassword)
	if errors.Is(err, users.ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	a.log.InfoContext(ctx, "demo user created", logger.UserID(u.ID))
	return nil
}

func isSignedIn(ctx *router.Context) bool {
	sess, ok := middleware.GetSession[SessionData](ctx)
	return ok && sess.IsAuthenticated()
}

// signIn authenticates the request session for userID. Used by both the
// password login and the remember-me gate.
func (a *App) signIn(ctx *router.Context, userID uuid.UUID) error {
	sess, ok := middleware.GetSession[SessionData](ctx)
	if !ok {
		return middleware.ErrNoSession
	}

	u, err := a.users.Get(ctx, userID)
	if err != nil {
		return err
	}

	sess, err = a.sessions.Authenticate(ctx, sess, userID)
	if err != nil {
		return err
	}
	sess.SetData(SessionData{Email: u.Email})
	middleware.SetSession(ctx, sess)
	return nil
}
