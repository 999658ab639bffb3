package sessiontransport_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/cookie"
	"github.com/dmitrymomot/rememberme/core/router"
	"github.com/dmitrymomot/rememberme/core/session"
	"github.com/dmitrymomot/rememberme/core/sessiontransport"
)

type data struct {
	Theme string
}

const cookieName = sessiontransport.DefaultCookieName

func newTransport(t *testing.T, store session.Store[data]) *sessiontransport.Cookie[data] {
	t.Helper()
	cm, err := cookie.New([]string{strings.Repeat("s", 32)})
	require.NoError(t, err)
	return sessiontransport.NewCookie(session.NewManager(store), cm, cookieName)
}

// carry copies Set-Cookie headers of w into a new request.
func carry(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestCookie_LoadSave(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore[data]()
	tr := newTransport(t, store)

	w := httptest.NewRecorder()
	ctx := router.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	sess, err := tr.Load(ctx)
	require.NoError(t, err)
	assert.False(t, sess.IsAuthenticated())

	sess.Set("remember_me", "attempted")
	require.NoError(t, tr.Save(ctx, sess))

	w2 := httptest.NewRecorder()
	ctx2 := router.NewContext(w2, carry(w), nil)
	loaded, err := tr.Load(ctx2)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	v, ok := loaded.Get("remember_me")
	assert.True(t, ok)
	assert.Equal(t, "attempted", v)
}

func TestCookie_LoadTampered(t *testing.T) {
	t.Parallel()

	tr := newTransport(t, session.NewMemoryStore[data]())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "forged"})
	sess, err := tr.Load(router.NewContext(httptest.NewRecorder(), req, nil))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sess.ID)
	assert.False(t, sess.IsAuthenticated())
}

func TestCookie_AuthenticateLogout(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore[data]()
	tr := newTransport(t, store)
	userID := uuid.New()

	w := httptest.NewRecorder()
	ctx := router.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	sess, err := tr.Load(ctx)
	require.NoError(t, err)
	sess.Set("remember_me", "attempted")

	authed, err := tr.Authenticate(ctx, sess, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, authed.UserID)
	assert.Equal(t, sess.ID, authed.ID)
	assert.NotEqual(t, sess.Token, authed.Token)

	w2 := httptest.NewRecorder()
	ctx2 := router.NewContext(w2, carry(w), nil)
	loaded, err := tr.Load(ctx2)
	require.NoError(t, err)
	assert.Equal(t, userID, loaded.UserID)
	v, _ := loaded.Get("remember_me")
	assert.Equal(t, "attempted", v, "values survive authentication")

	anon, err := tr.Logout(ctx2, loaded)
	require.NoError(t, err)
	assert.False(t, anon.IsAuthenticated())
	assert.NotEqual(t, loaded.ID, anon.ID)

	_, err = store.GetByID(context.Background(), loaded.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestCookie_Delete(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore[data]()
	tr := newTransport(t, store)

	w := httptest.NewRecorder()
	ctx := router.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	sess, err := tr.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, tr.Save(ctx, sess))

	w2 := httptest.NewRecorder()
	require.NoError(t, tr.Delete(router.NewContext(w2, carry(w), nil), sess))

	var cleared bool
	for _, c := range w2.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)

	_, err = store.GetByID(context.Background(), sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

type failingStore struct {
	session.Store[data]
}

func (failingStore) GetByToken(context.Context, string) (*session.Session[data], error) {
	return nil, errors.New("connection refused")
}

func TestCookie_LoadStoreFailure(t *testing.T) {
	t.Parallel()

	// Issue a valid cookie with a working store first.
	good := newTransport(t, session.NewMemoryStore[data]())
	w := httptest.NewRecorder()
	ctx := router.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	sess, err := good.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, good.Save(ctx, sess))

	bad := newTransport(t, failingStore{})
	_, err = bad.Load(router.NewContext(httptest.NewRecorder(), carry(w), nil))
	assert.Error(t, err)
}

func TestNewCookieFromConfig(t *testing.T) {
	t.Parallel()

	cm, err := cookie.New([]string{strings.Repeat("s", 32)})
	require.NoError(t, err)
	mgr := session.NewManager(session.NewMemoryStore[data]())

	for _, name := range []string{"", "sid"} {
		tr := sessiontransport.NewCookieFromConfig(sessiontransport.CookieConfig{Name: name}, mgr, cm)

		w := httptest.NewRecorder()
		ctx := router.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
		sess, err := tr.Load(ctx)
		require.NoError(t, err)
		require.NoError(t, tr.Save(ctx, sess))

		want := name
		if want == "" {
			want = sessiontransport.DefaultCookieName
		}
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, want, cookies[0].Name)
	}
}
