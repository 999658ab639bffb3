// Package remembertransport moves remember-me credentials between the HTTP
// layer and the rememberme lifecycle.
//
// The credential is stored as the JSON document {"series": "...", "token": "..."}
// inside an AES-GCM encrypted, HttpOnly cookie managed by core/cookie:
//
//	tr := remembertransport.NewCookieFromConfig(cfg, cookieManager)
//
//	cred, present := tr.Read(r)
//	res := lifecycle.Validate(ctx, cred)
//	if err := tr.Apply(w, res); err != nil {
//		// the rotated credential could not be written
//	}
//
// Flash provides the rememberme.Notifier used to warn users after theft detection.
package remembertransport
