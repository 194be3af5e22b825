package pkg

import (
	"net/http"
	"time"
)

const (
	SessionCookieName = "user_session"
	SessionLifetime   = 24 * time.Hour
)

// SessionSecret returns the secret from the session cookie. The second value
// is false when the request carried none and a new secret was generated.
func SessionSecret(req *http.Request) (string, bool) {
	cookie, err := req.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return GenerateSessionSecret(), false
	}

	return cookie.Value, true
}

// SessionCookie refreshes the session for another lifetime from now.
func SessionCookie(secret string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    secret,
		Expires:  now.Add(SessionLifetime),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
