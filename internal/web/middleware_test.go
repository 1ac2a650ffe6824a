package web

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{name: "host and port", remoteAddr: "198.51.100.10:1234", want: "198.51.100.10"},
		{name: "ipv6 with port", remoteAddr: net.JoinHostPort("2001:db8::2", "443"), want: "2001:db8::2"},
		{name: "without port", remoteAddr: "203.0.113.1", want: "203.0.113.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			require.Equal(t, tc.want, clientIP(req))
		})
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l := newRateLimiter(2, time.Minute, func() time.Time { return now })

	require.True(t, l.allow("a"))
	require.True(t, l.allow("a"))
	require.False(t, l.allow("a"))
	require.True(t, l.allow("b"))

	now = now.Add(61 * time.Second)
	require.True(t, l.allow("a"))
}

func TestRateLimiterDisabled(t *testing.T) {
	l := newRateLimiter(0, time.Minute, nil)
	for i := 0; i < 100; i++ {
		require.True(t, l.allow("a"))
	}
}
