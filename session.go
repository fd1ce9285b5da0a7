package sessionstore

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/dmitrymomot/sessionstore/pkg/orm"
)

const cookieKey = "cookie"

// Session is the state a middleware persists between requests.
type Session struct {
	// Values holds caller data. Values must be JSON-compatible for the text codec.
	Values map[string]any

	// Cookie describes the session cookie, if any.
	Cookie Cookie

	// LastModified is set by Get when touch tracking is enabled.
	// It is derived by the store and never serialized.
	LastModified time.Time
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{Values: map[string]any{}}
}

// Value returns the value stored under key.
func (s *Session) Value(key string) (any, bool) {
	if s == nil || s.Values == nil {
		return nil, false
	}
	v, ok := s.Values[key]
	return v, ok
}

// SetValue stores v under key. The "cookie" key is reserved.
func (s *Session) SetValue(key string, v any) {
	if key == cookieKey {
		return
	}
	if s.Values == nil {
		s.Values = map[string]any{}
	}
	s.Values[key] = v
}

// ToMap flattens the session into a plain map: every value plus the cookie
// in its stored form under "cookie".
func (s *Session) ToMap() map[string]any {
	out := make(map[string]any, len(s.Values)+1)
	maps.Copy(out, s.Values)
	delete(out, cookieKey)
	if s.Cookie != nil {
		out[cookieKey] = s.Cookie.Map()
	}
	return out
}

// FromMap rebuilds a session from its flattened form.
// A "cookie" entry that is an object becomes a RawCookie.
func FromMap(m map[string]any) *Session {
	s := &Session{Values: make(map[string]any, len(m))}
	for k, v := range m {
		if k == cookieKey {
			if c, ok := v.(map[string]any); ok {
				s.Cookie = RawCookie(c)
				continue
			}
		}
		s.Values[k] = v
	}
	return s
}

// MarshalJSON encodes the flattened form of the session.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.ToMap())
}

// UnmarshalJSON decodes a flattened session.
func (s *Session) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*s = *FromMap(m)
	return nil
}

// clone returns a copy whose Values share no maps or slices with s.
// A nil session clones to an empty one.
func (s *Session) clone() *Session {
	if s == nil {
		return NewSession()
	}
	cp := *s
	cp.Values = orm.CopyPayload(map[string]any(s.Values)).(map[string]any)
	return &cp
}
