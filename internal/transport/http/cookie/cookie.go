// Package cookie issues and clears the two auth cookies: the short-lived
// access token and the long-lived opaque session id. Both are http-only
// and same-site restricted; they are never readable from page scripts.
package cookie

import (
	"net/http"
	"time"
)

const (
	AccessName  = "access_token"
	SessionName = "session_token"
)

// Options defines how auth cookies are issued.
type Options struct {
	// Secure should be true everywhere except local development.
	Secure bool
}

func set(w http.ResponseWriter, name, value string, ttl time.Duration, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clear(w http.ResponseWriter, name string, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetAccess issues the access-token cookie.
func SetAccess(w http.ResponseWriter, token string, ttl time.Duration, opts Options) {
	set(w, AccessName, token, ttl, opts)
}

// SetSession issues the session-id cookie.
func SetSession(w http.ResponseWriter, sessionID string, ttl time.Duration, opts Options) {
	set(w, SessionName, sessionID, ttl, opts)
}

// ClearAuth removes both auth cookies.
func ClearAuth(w http.ResponseWriter, opts Options) {
	clear(w, AccessName, opts)
	clear(w, SessionName, opts)
}
