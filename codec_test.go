package sessionstore

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveCodec(t *testing.T) {
	t.Parallel()

	custom := func(*Session) (any, error) { return "custom", nil }

	for name, tc := range map[string]struct {
		opts     []Option
		wantText bool
	}{
		"default is text":                 {wantText: true},
		"stringify false is structured":   {opts: []Option{WithStringify(false)}},
		"custom serializer is structured": {opts: []Option{WithSerializer(custom)}},
		"custom serializer with stringify": {
			opts:     []Option{WithStringify(true), WithSerializer(custom)},
			wantText: true,
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			for _, opt := range tc.opts {
				opt(cfg)
			}
			require.Equal(t, tc.wantText, payloadText(cfg))

			c := resolveCodec(cfg)
			s := NewSession()
			s.SetValue("k", "v")
			payload, err := c.encodeSafe(s)
			require.NoError(t, err)
			if cfg.serialize != nil {
				require.Equal(t, "custom", payload)
				return
			}
			if tc.wantText {
				require.IsType(t, "", payload)
			} else {
				require.IsType(t, map[string]any{}, payload)
			}

			out, err := c.decodeSafe(payload)
			require.NoError(t, err)
			require.Equal(t, "v", out.Values["k"])
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("text accepts bytes", func(t *testing.T) {
		t.Parallel()

		s, err := textCodec.decodeSafe([]byte(`{"a":"b","cookie":{"path":"/"}}`))
		require.NoError(t, err)
		require.Equal(t, "b", s.Values["a"])
		require.Equal(t, RawCookie{"path": "/"}, s.Cookie)
	})

	t.Run("text rejects other types", func(t *testing.T) {
		t.Parallel()

		_, err := textCodec.decodeSafe(42)
		require.ErrorIs(t, err, ErrDecode)
	})

	t.Run("structured nil is an empty session", func(t *testing.T) {
		t.Parallel()

		s, err := structuredCodec.decodeSafe(nil)
		require.NoError(t, err)
		require.Empty(t, s.Values)
	})

	t.Run("structured rejects strings", func(t *testing.T) {
		t.Parallel()

		_, err := structuredCodec.decodeSafe("{}")
		require.ErrorIs(t, err, ErrDecode)
	})
}

func TestCanonicalCookie(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	c := CanonicalCookie{
		Expires:  expires,
		MaxAge:   90 * time.Second,
		Path:     "/app",
		Domain:   "example.com",
		SameSite: http.SameSiteLaxMode,
		Secure:   true,
	}

	require.Equal(t, map[string]any{
		"originalMaxAge": float64(90000),
		"expires":        "2026-05-01T09:00:00Z",
		"secure":         true,
		"httpOnly":       false,
		"path":           "/app",
		"domain":         "example.com",
		"sameSite":       "lax",
	}, c.Canonical())

	require.Equal(t, map[string]any{
		"originalMaxAge": nil,
		"expires":        nil,
		"secure":         false,
		"httpOnly":       false,
		"path":           "",
	}, CanonicalCookie{}.Canonical())

	at, ok := RawCookie(c.Canonical()).ExpiresAt()
	require.True(t, ok)
	require.True(t, at.Equal(expires))

	_, ok = RawCookie{"expires": "tomorrow"}.ExpiresAt()
	require.False(t, ok)
}

func TestSession_ReservedCookieKey(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.SetValue(cookieKey, "nope")
	_, ok := s.Value(cookieKey)
	require.False(t, ok)

	s.Values[cookieKey] = "sneaky"
	require.NotContains(t, s.ToMap(), cookieKey)
}
