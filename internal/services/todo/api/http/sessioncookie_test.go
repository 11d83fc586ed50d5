package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReadSessionToken(t *testing.T) {
	t.Parallel()

	if _, ok := readSessionToken(nil); ok {
		t.Fatal("expected nil request to have no token")
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	if _, ok := readSessionToken(req); ok {
		t.Fatal("expected missing token")
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, ok := readSessionToken(req); ok {
		t.Fatal("expected non-bearer scheme to be ignored")
	}

	req.Header.Set("Authorization", "bearer  tok-header ")
	value, ok := readSessionToken(req)
	if !ok || value != "tok-header" {
		t.Fatalf("value = %q, ok = %v", value, ok)
	}

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "  tok-cookie  "})
	value, ok = readSessionToken(req)
	if !ok || value != "tok-cookie" {
		t.Fatalf("expected cookie to win, got %q", value)
	}
}

func TestWriteAndClearSessionCookie(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := httptest.NewRecorder()
	writeSessionCookie(rec, "tok-1", expires, CookiePolicy{Secure: true})
	cookie, err := http.ParseSetCookie(rec.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}
	if cookie.Name != CookieName || cookie.Value != "tok-1" {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
		t.Fatalf("unexpected attributes: %+v", cookie)
	}
	if !cookie.Expires.Equal(expires) {
		t.Fatalf("expires = %v, want %v", cookie.Expires, expires)
	}

	clearRec := httptest.NewRecorder()
	clearSessionCookie(clearRec, CookiePolicy{})
	cleared, err := http.ParseSetCookie(clearRec.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}
	if cleared.Value != "" || cleared.MaxAge >= 0 || cleared.Secure {
		t.Fatalf("unexpected cleared cookie: %+v", cleared)
	}
}
