package sessiontransport

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/session"
)

// ErrExpiredSession is returned when asked to write a cookie for a session past its expiry.
var ErrExpiredSession = errors.New("sessiontransport: session already expired")

// Cookie keeps Session.Token in a signed cookie.
type Cookie[Data any] struct {
	sessions *session.Manager[Data]
	cookies  *cookie.Manager
	name     string
}

func NewCookie[Data any](sessions *session.Manager[Data], cookies *cookie.Manager, name string) *Cookie[Data] {
	return &Cookie[Data]{sessions: sessions, cookies: cookies, name: name}
}

// Load never fails for a bad or stale cookie; it starts a new anonymous
// session instead. Only store errors are returned.
func (c *Cookie[Data]) Load(ctx handler.Context) (session.Session[Data], error) {
	token, err := c.cookies.GetSigned(ctx.Request(), c.name)
	if err != nil {
		return c.sessions.New(ctx)
	}

	sess, err := c.sessions.GetByToken(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return c.sessions.New(ctx)
	case err != nil:
		return session.Session[Data]{}, err
	}
	return sess, nil
}

// Save stores sess and rewrites the cookie so its lifetime follows the
// session. A logged out session loses its cookie.
func (c *Cookie[Data]) Save(ctx handler.Context, sess session.Session[Data]) error {
	err := c.sessions.Store(ctx, sess)
	if errors.Is(err, session.ErrNotAuthenticated) {
		c.cookies.Delete(ctx.ResponseWriter(), c.name)
		return nil
	}
	if err != nil {
		return err
	}
	return c.write(ctx, sess)
}

// Authenticate signs userID in and sends the rotated token.
func (c *Cookie[Data]) Authenticate(ctx handler.Context, sess session.Session[Data], userID uuid.UUID) (session.Session[Data], error) {
	sess, err := c.sessions.Authenticate(ctx, sess, userID)
	if err != nil {
		return session.Session[Data]{}, err
	}
	return sess, c.write(ctx, sess)
}

// Logout replaces sess with a stored anonymous session and points the cookie at it.
func (c *Cookie[Data]) Logout(ctx handler.Context, sess session.Session[Data]) (session.Session[Data], error) {
	anon, err := c.sessions.Logout(ctx, sess)
	if err != nil {
		return session.Session[Data]{}, err
	}
	return anon, c.write(ctx, anon)
}

// Delete drops sess from the store and clears the cookie.
func (c *Cookie[Data]) Delete(ctx handler.Context, sess session.Session[Data]) error {
	if err := c.sessions.Delete(ctx, sess.ID); err != nil {
		return err
	}
	c.cookies.Delete(ctx.ResponseWriter(), c.name)
	return nil
}

func (c *Cookie[Data]) write(ctx handler.Context, sess session.Session[Data]) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: %s ago", ErrExpiredSession, (-ttl).Round(time.Second))
	}
	return c.cookies.SetSigned(ctx.ResponseWriter(), c.name, sess.Token,
		cookie.WithHTTPOnly(true),
		cookie.WithTTL(ttl),
	)
}
