// Package session provides generic server-side sessions.
//
// A Session[Data] carries a stable ID, a rotatable token used as the cookie
// value, the authenticated user (uuid.Nil while anonymous), application data
// and a small map of string values owned by middleware.
//
//	type UserData struct {
//		Theme string `json:"theme"`
//	}
//
//	manager := session.NewManager[UserData](session.NewMemoryStore[UserData](),
//		session.WithTTL(24*time.Hour),
//		session.WithTouchInterval(5*time.Minute),
//	)
//
//	sess, err := manager.New(ctx)
//	sess, err = manager.Authenticate(ctx, sess, userID) // rotates the token
//	sess.Set("remember_me", "attempted")
//	err = manager.Store(ctx, sess)
//
// Stores use value semantics: sessions are copied on the way in and out, so a
// request never observes another request's unsaved changes. MemoryStore is
// provided here; a Redis store lives in integration/session/redisstore.
//
// TouchInterval throttles expiry extension so that an active session is not
// rewritten on every request. Set it to 0 to extend on every Store call.
//
// Transport of the token (cookies) is handled by core/sessiontransport and
// wired into requests by the Session middleware.
package session
