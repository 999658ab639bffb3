// Package cookie provides HTTP cookie management with signing and authenticated
// encryption.
//
// Keys for HMAC-SHA256 signing and AES-256-GCM encryption are derived with HKDF
// from each configured secret. The first secret writes; every secret is tried on
// read, so secrets can be rotated by prepending a new one. Signatures and
// ciphertexts are bound to the cookie name.
//
// Basic usage:
//
//	manager, err := cookie.New([]string{"your-32-char-secret-key-here!!!!"},
//		cookie.WithSecure(true),
//	)
//
//	// plain
//	err = manager.Set(w, "theme", "dark", cookie.WithMaxAge(3600))
//	value, err := manager.Get(r, "theme")
//
//	// tamper-evident
//	err = manager.SetSigned(w, "session_id", token)
//	token, err := manager.GetSigned(r, "session_id")
//
//	// confidential JSON
//	err = manager.SetJSON(w, "userdata", cred, cookie.WithTTL(ttl), cookie.WithPath("/auth"))
//	err = manager.GetJSON(r, "userdata", &cred)
//
//	// one-time messages
//	err = manager.SetFlash(w, "notice", msg)
//	err = manager.GetFlash(w, r, "notice", &msg)
//
// Delete takes the same options as Set; a cookie set with a non-default path
// is only removed when the same path is passed.
//
// Configuration can be loaded from the environment (COOKIE_SECRETS, COOKIE_PATH,
// COOKIE_DOMAIN, COOKIE_MAX_AGE, COOKIE_SECURE, COOKIE_HTTP_ONLY,
// COOKIE_SAME_SITE as lax, strict, none or default, COOKIE_MAX_SIZE) with
// NewFromConfig.
package cookie
