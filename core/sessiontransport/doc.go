// Package sessiontransport carries session tokens over HTTP.
//
// Cookie stores Session.Token as a signed cookie. Load degrades gracefully: a
// missing, tampered, unknown or expired token yields a fresh anonymous session.
//
//	sessionMgr := session.NewManager[SessionData](store)
//	cookieMgr, _ := cookie.New([]string{secret})
//	transport := sessiontransport.NewCookie(sessionMgr, cookieMgr, sessiontransport.DefaultCookieName)
//
//	sess, err := transport.Load(ctx)
//	sess, err = transport.Authenticate(ctx, sess, userID)
//	err = transport.Save(ctx, sess)
//	sess, err = transport.Logout(ctx, sess)
//
// The Session middleware calls Load before and Save after every handler.
package sessiontransport
