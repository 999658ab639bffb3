// Package rememberme implements persistent login through rotating series/token
// cookie chains.
//
// A chain is identified by a random, non-secret series and authenticated by a
// single-use secret whose bcrypt hash is stored in a Record. Every successful
// validation rotates the secret. A known series presented with a stale secret
// means the cookie was copied: every chain of that user is revoked and the
// attempt reports TheftDetected.
//
// Validation outcomes:
//
//	StateNoCredential      no cookie or a half-empty one; the store is not touched
//	StateSeriesUnknown     clear the cookie
//	StateSeriesExpired     clear the cookie; the record is deleted lazily
//	StateSecretMismatch    TheftDetected; all chains of the user deleted
//	StateUserUnknown       the owner no longer exists; the series is deleted
//	StateStoreUnavailable  fail closed, nothing deleted, the cookie is kept
//	StateValid             Authenticated; write Result.Issued back to the cookie
//
// Basic usage:
//
//	lc, err := rememberme.New(rememberme.NewMemoryStore(),
//		rememberme.WithTTL(30*24*time.Hour),
//		rememberme.WithLogger(log),
//	)
//
//	// after a password login
//	cred, issued, err := lc.OnLogin(ctx, rememberme.LoginEvent{UserID: user.ID, Source: "password"})
//
//	// on a later anonymous request
//	res := lc.Validate(ctx, cred)
//	if res.IsAuthenticated() {
//		// log the user in and store *res.Issued in the cookie
//	}
//
// Store implementations for PostgreSQL, Redis and MongoDB live under
// integration/rememberme. The HTTP side (cookie transport and the
// once-per-session gate) lives in core/remembertransport and middleware.
package rememberme
