package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/handler"
	"github.com/dmitrymomot/rememberme/core/response"
	"github.com/dmitrymomot/rememberme/core/router"
	"github.com/dmitrymomot/rememberme/core/session"
	"github.com/dmitrymomot/rememberme/middleware"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Load(ctx handler.Context) (session.Session[appData], error) {
	args := m.Called(ctx)
	return args.Get(0).(session.Session[appData]), args.Error(1)
}

func (m *mockTransport) Save(ctx handler.Context, sess session.Session[appData]) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func newSession(t *testing.T, userID uuid.UUID) session.Session[appData] {
	t.Helper()
	sess, err := session.New[appData](session.DefaultConfig().TTL)
	require.NoError(t, err)
	sess.UserID = userID
	return sess
}

func serve(t *testing.T, mw handler.Middleware[*router.Context], h handler.HandlerFunc[*router.Context]) *httptest.ResponseRecorder {
	t.Helper()
	r := router.New[*router.Context]()
	r.Use(mw)
	r.Get("/", h)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("loads and saves", func(t *testing.T) {
		t.Parallel()

		tr := &mockTransport{}
		sess := newSession(t, uuid.Nil)
		tr.On("Load", mock.Anything).Return(sess, nil)
		tr.On("Save", mock.Anything, mock.MatchedBy(func(s session.Session[appData]) bool {
			v, _ := s.Get("theme")
			return s.ID == sess.ID && v == "dark"
		})).Return(nil)

		w := serve(t, middleware.Session[*router.Context, appData](tr), func(ctx *router.Context) handler.Response {
			s := middleware.MustGetSession[appData](ctx)
			s.Set("theme", "dark")
			middleware.SetSession(ctx, s)
			return response.String("ok")
		})

		assert.Equal(t, http.StatusOK, w.Code)
		tr.AssertExpectations(t)
	})

	t.Run("load failure continues without session", func(t *testing.T) {
		t.Parallel()

		tr := &mockTransport{}
		tr.On("Load", mock.Anything).Return(session.Session[appData]{}, errors.New("redis down"))

		var found bool
		w := serve(t, middleware.Session[*router.Context, appData](tr), func(ctx *router.Context) handler.Response {
			_, found = middleware.GetSession[appData](ctx)
			return response.String("ok")
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, found)
		tr.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure goes to error handler", func(t *testing.T) {
		t.Parallel()

		tr := &mockTransport{}
		tr.On("Load", mock.Anything).Return(newSession(t, uuid.Nil), nil)
		tr.On("Save", mock.Anything, mock.Anything).Return(errors.New("redis down"))

		w := serve(t, middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, appData]{
			Transport: tr,
			ErrorHandler: func(ctx *router.Context, err error) handler.Response {
				return response.StringWithStatus("save failed", http.StatusServiceUnavailable)
			},
		}), func(ctx *router.Context) handler.Response {
			return response.String("ok")
		})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("require auth", func(t *testing.T) {
		t.Parallel()

		tr := &mockTransport{}
		tr.On("Load", mock.Anything).Return(newSession(t, uuid.Nil), nil)

		w := serve(t, middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, appData]{
			Transport:   tr,
			RequireAuth: true,
		}), func(ctx *router.Context) handler.Response {
			return response.String("secret")
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("require guest", func(t *testing.T) {
		t.Parallel()

		tr := &mockTransport{}
		tr.On("Load", mock.Anything).Return(newSession(t, uuid.New()), nil)

		w := serve(t, middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, appData]{
			Transport:    tr,
			RequireGuest: true,
		}), func(ctx *router.Context) handler.Response {
			return response.String("login form")
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("require auth hides load failure", func(t *testing.T) {
		t.Parallel()

		tr := &mockTransport{}
		tr.On("Load", mock.Anything).Return(session.Session[appData]{}, errors.New("redis down"))

		w := serve(t, middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, appData]{
			Transport:   tr,
			RequireAuth: true,
		}), func(ctx *router.Context) handler.Response {
			return response.String("secret")
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NotContains(t, w.Body.String(), "redis down")
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()

		tr := &mockTransport{}
		w := serve(t, middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, appData]{
			Transport: tr,
			Skip:      func(*router.Context) bool { return true },
		}), func(ctx *router.Context) handler.Response {
			return response.String("ok")
		})

		assert.Equal(t, http.StatusOK, w.Code)
		tr.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("invalid config panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "session middleware: transport is required", func() {
			middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, appData]{})
		})
		assert.Panics(t, func() {
			middleware.SessionWithConfig(middleware.SessionConfig[*router.Context, appData]{
				Transport:    &mockTransport{},
				RequireAuth:  true,
				RequireGuest: true,
			})
		})
	})
}

func TestSessionValues(t *testing.T) {
	t.Parallel()

	store := middleware.SessionValues[appData]()

	t.Run("without session", func(t *testing.T) {
		t.Parallel()
		ctx := router.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)

		_, ok := store.Read(ctx, middleware.RememberMeStateKey)
		assert.False(t, ok)
		assert.ErrorIs(t, store.Write(ctx, middleware.RememberMeStateKey, middleware.RememberMeAttempted), middleware.ErrNoSession)
	})

	t.Run("with session", func(t *testing.T) {
		t.Parallel()
		ctx := router.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
		middleware.SetSession(ctx, newSession(t, uuid.Nil))

		require.NoError(t, store.Write(ctx, middleware.RememberMeStateKey, middleware.RememberMePending))
		v, ok := store.Read(ctx, middleware.RememberMeStateKey)
		assert.True(t, ok)
		assert.Equal(t, middleware.RememberMePending, v)

		sess := middleware.MustGetSession[appData](ctx)
		assert.True(t, sess.IsModified())
	})
}
