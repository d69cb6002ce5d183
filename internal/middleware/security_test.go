package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get(headerXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(headerXFrameOptions))
	assert.Contains(t, rec.Header().Get(headerContentSecurityPolicy), "default-src 'self'")
	assert.NotEmpty(t, rec.Header().Get(headerStrictTransportSecurity))
}

func TestHostCheck(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		host    string
		want    int
	}{
		{"disabled", "", "anything.example", http.StatusOK},
		{"match", "soullog.app", "soullog.app", http.StatusOK},
		{"match with port", "soullog.app", "SOULLOG.app:443", http.StatusOK},
		{"mismatch", "soullog.app", "evil.example", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			HostCheck(tt.allowed)(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestLimiterSet(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newLimiterSet(rate.Every(time.Second), 2, time.Minute)
	s.now = func() time.Time { return now }

	assert.True(t, s.allow("a"))
	assert.True(t, s.allow("a"))
	assert.False(t, s.allow("a"))
	assert.True(t, s.allow("b"))

	now = now.Add(time.Second)
	assert.True(t, s.allow("a"))

	now = now.Add(2 * time.Minute)
	s.sweep()
	assert.Equal(t, 0, s.size())
}

func TestLimiter_LoginOnlyLimitsSignInPosts(t *testing.T) {
	l := NewLimiter()
	h := l.Login(okHandler)

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.RemoteAddr = "198.51.100.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < loginRateLimitBurst; i++ {
		assert.Equal(t, http.StatusOK, send("POST", "/auth/login"))
	}
	assert.Equal(t, http.StatusTooManyRequests, send("POST", "/auth/login"))
	assert.Equal(t, http.StatusOK, send("GET", "/v/view-login"))
	assert.Equal(t, http.StatusOK, send("POST", "/entries"))
}

func TestLimiter_Global(t *testing.T) {
	l := NewLimiter()
	h := l.Global(okHandler)

	limited := false
	for i := 0; i < globalRateLimitBurst+5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "198.51.100.2:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)
}
