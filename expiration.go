package sessionstore

import "time"

type expirationPolicy struct {
	ttl        time.Duration
	touchAfter time.Duration
}

// tracking reports whether lastModified is maintained.
func (p expirationPolicy) tracking() bool { return p.touchAfter > 0 }

// expiresAt prefers the cookie's explicit expiry, falling back to now+ttl.
func (p expirationPolicy) expiresAt(s *Session, now time.Time) time.Time {
	if s != nil && s.Cookie != nil {
		if t, ok := s.Cookie.ExpiresAt(); ok {
			return t
		}
	}
	return now.Add(p.ttl)
}

// shouldTouch is false while the previous write is younger than touchAfter.
func (p expirationPolicy) shouldTouch(s *Session, now time.Time) bool {
	if !p.tracking() || s == nil || s.LastModified.IsZero() {
		return true
	}
	return now.Sub(s.LastModified) >= p.touchAfter
}
