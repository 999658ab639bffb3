package response

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/rememberme/core/handler"
)

// HTMX headers. An HTMX request gets HX-Location and 200 instead of a 3xx,
// which htmx would otherwise follow inside the swapped fragment.
const (
	HeaderHXRequest  = "HX-Request"
	HeaderHXLocation = "HX-Location"
)

// Redirect answers 302 Found.
func Redirect(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusFound)
}

// RedirectSeeOther answers 303, the redirect to use after a form POST.
func RedirectSeeOther(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusSeeOther)
}

// RedirectWithStatus redirects with status; a non-3xx status becomes 302.
func RedirectWithStatus(url string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if r.Header.Get(HeaderHXRequest) == "true" {
			w.Header().Set(HeaderHXLocation, url)
			w.WriteHeader(http.StatusOK)
			return nil
		}

		if status < 300 || status >= 400 {
			status = http.StatusFound
		}

		http.Redirect(w, r, url, status)
		return nil
	}
}

// LocalRedirect redirects to target when it is a path on this site and to
// fallback otherwise.
func LocalRedirect(target, fallback string) handler.Response {
	if !IsLocalPath(target) {
		target = fallback
	}
	return Redirect(target)
}

// IsLocalPath reports whether target is an absolute path on this site.
// Scheme-relative ("//host") and backslash forms that browsers treat as
// other hosts are rejected.
func IsLocalPath(target string) bool {
	if target == "" || target[0] != '/' {
		return false
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return false
	}
	if strings.ContainsAny(target, "\r\n") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
