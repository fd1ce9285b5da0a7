package sessionstore

import (
	"net/http"
	"time"
)

// Cookie is the cookie descriptor attached to a session.
// It is either a RawCookie or a CanonicalCookie.
type Cookie interface {
	// ExpiresAt returns the explicit cookie expiration, if one is set.
	ExpiresAt() (time.Time, bool)

	// Map returns the form persisted with the session.
	Map() map[string]any

	isCookie()
}

// RawCookie is a cookie descriptor kept exactly as supplied, typically the
// result of decoding a stored session.
type RawCookie map[string]any

func (RawCookie) isCookie() {}

// Map returns the descriptor unchanged.
func (c RawCookie) Map() map[string]any { return map[string]any(c) }

// ExpiresAt reads the "expires" entry. Strings must be RFC 3339.
func (c RawCookie) ExpiresAt() (time.Time, bool) {
	switch v := c["expires"].(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v != nil && !v.IsZero() {
			return *v, true
		}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CanonicalCookie is a typed cookie descriptor. It is persisted through
// Canonical, which omits derived state.
type CanonicalCookie struct {
	Expires  time.Time
	MaxAge   time.Duration
	Path     string
	Domain   string
	SameSite http.SameSite
	HTTPOnly bool
	Secure   bool
}

func (CanonicalCookie) isCookie() {}

// ExpiresAt returns Expires when set.
func (c CanonicalCookie) ExpiresAt() (time.Time, bool) {
	return c.Expires, !c.Expires.IsZero()
}

// Map returns the canonical form.
func (c CanonicalCookie) Map() map[string]any { return c.Canonical() }

// Canonical returns the persisted form of the cookie:
// originalMaxAge in milliseconds, expires as RFC 3339 or nil.
func (c CanonicalCookie) Canonical() map[string]any {
	m := map[string]any{
		"originalMaxAge": nil,
		"expires":        nil,
		"secure":         c.Secure,
		"httpOnly":       c.HTTPOnly,
		"path":           c.Path,
	}
	if c.MaxAge > 0 {
		m["originalMaxAge"] = float64(c.MaxAge.Milliseconds())
	}
	if !c.Expires.IsZero() {
		m["expires"] = c.Expires.UTC().Format(time.RFC3339Nano)
	}
	if c.Domain != "" {
		m["domain"] = c.Domain
	}
	if s := sameSiteName(c.SameSite); s != "" {
		m["sameSite"] = s
	}
	return m
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteLaxMode:
		return "lax"
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	}
	return ""
}
