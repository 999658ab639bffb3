package remembertransport_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/rememberme"
	"github.com/dmitrymomot/rememberme/core/remembertransport"
)

const testSecret = "test-secret-key-32-characters!!!"

func newManager(t *testing.T) *cookie.Manager {
	t.Helper()
	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	return m
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCookie(t *testing.T) {
	t.Parallel()

	t.Run("write and read", func(t *testing.T) {
		t.Parallel()
		tr := remembertransport.NewCookie(newManager(t), remembertransport.WithTTL(2*time.Hour))

		w := httptest.NewRecorder()
		cred := rememberme.Credential{Series: "S1", Token: "T1"}
		require.NoError(t, tr.Write(w, cred))

		c := responseCookie(w, "userdata")
		require.NotNil(t, c)
		assert.Equal(t, 7200, c.MaxAge)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
		assert.NotContains(t, c.Value, "T1")

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(c)
		got, present := tr.Read(r)
		assert.True(t, present)
		assert.Equal(t, cred, got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		tr := remembertransport.NewCookie(newManager(t))

		got, present := tr.Read(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, present)
		assert.True(t, got.IsZero())
	})

	t.Run("undecodable is present but empty", func(t *testing.T) {
		t.Parallel()
		tr := remembertransport.NewCookie(newManager(t))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "userdata", Value: "garbage"})
		got, present := tr.Read(r)
		assert.True(t, present)
		assert.True(t, got.IsZero())
	})

	t.Run("refuses incomplete credential", func(t *testing.T) {
		t.Parallel()
		tr := remembertransport.NewCookie(newManager(t))

		err := tr.Write(httptest.NewRecorder(), rememberme.Credential{Series: "S1"})
		assert.ErrorIs(t, err, rememberme.ErrInvalidCredential)
	})

	t.Run("clear uses the cookie path", func(t *testing.T) {
		t.Parallel()
		tr := remembertransport.NewCookie(newManager(t),
			remembertransport.WithName("rm"),
			remembertransport.WithPath("/auth/cookie-token-auth"),
		)

		w := httptest.NewRecorder()
		tr.Clear(w)

		c := responseCookie(w, "rm")
		require.NotNil(t, c)
		assert.Equal(t, -1, c.MaxAge)
		assert.Equal(t, "/auth/cookie-token-auth", c.Path)
	})

	t.Run("apply", func(t *testing.T) {
		t.Parallel()
		tr := remembertransport.NewCookie(newManager(t))

		w := httptest.NewRecorder()
		require.NoError(t, tr.Apply(w, rememberme.Result{
			Outcome: rememberme.Authenticated,
			Issued:  &rememberme.Credential{Series: "S1", Token: "T2"},
		}))
		c := responseCookie(w, "userdata")
		require.NotNil(t, c)
		assert.Positive(t, c.MaxAge)

		w = httptest.NewRecorder()
		require.NoError(t, tr.Apply(w, rememberme.Result{ClearCookie: true}))
		c = responseCookie(w, "userdata")
		require.NotNil(t, c)
		assert.Equal(t, -1, c.MaxAge)

		w = httptest.NewRecorder()
		require.NoError(t, tr.Apply(w, rememberme.Result{State: rememberme.StateStoreUnavailable}))
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("nil manager panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() { remembertransport.NewCookie(nil) })
	})
}

func TestNewCookieFromConfig(t *testing.T) {
	t.Parallel()

	cfg := rememberme.DefaultConfig()
	tr := remembertransport.NewCookieFromConfig(cfg, newManager(t))
	assert.Equal(t, "userdata", tr.Name())
	assert.Equal(t, "/", tr.Path())

	cfg.MinimizeExposure = true
	cfg.CookieName = "remember"
	tr = remembertransport.NewCookieFromConfig(cfg, newManager(t))
	assert.Equal(t, "remember", tr.Name())
	assert.Equal(t, "/auth/cookie-token-auth", tr.Path())
}

func TestFlash(t *testing.T) {
	t.Parallel()

	f := remembertransport.NewFlash(newManager(t), "")

	w := httptest.NewRecorder()
	f.Notifier(w, nil).Notify(context.Background(), rememberme.SeverityError, rememberme.TheftMessage)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	msg, ok := f.Pop(httptest.NewRecorder(), r)
	require.True(t, ok)
	assert.Equal(t, rememberme.SeverityError, msg.Severity)
	assert.Equal(t, rememberme.TheftMessage, msg.Text)

	_, ok = f.Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}
