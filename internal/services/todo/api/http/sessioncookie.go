package httpapi

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the session token cookie.
const CookieName = "token"

// CookiePolicy controls attributes that differ between deployments.
type CookiePolicy struct {
	Secure bool
}

// readSessionCookie returns the trimmed session cookie value when present.
func readSessionCookie(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// readBearerToken returns the Authorization bearer token when present.
func readBearerToken(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	scheme, value, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// readSessionToken prefers the cookie and falls back to a bearer header.
func readSessionToken(r *http.Request) (string, bool) {
	if value, ok := readSessionCookie(r); ok {
		return value, true
	}
	return readBearerToken(r)
}

func writeSessionCookie(w http.ResponseWriter, value string, expiresAt time.Time, policy CookiePolicy) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    strings.TrimSpace(value),
		Path:     "/",
		Expires:  expiresAt.UTC(),
		HttpOnly: true,
		Secure:   policy.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, policy CookiePolicy) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   policy.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
