package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"ipv4 with port", "203.0.113.7:5123", "203.0.113.7"},
		{"ipv4 without port", "203.0.113.7", "203.0.113.7"},
		{"ipv4 mapped ipv6", "[::ffff:203.0.113.7]:80", "203.0.113.7"},
		{"ipv6 collapsed to /64", "[2001:db8:1:2:aaaa:bbbb:cccc:dddd]:443", "2001:db8:1:2::/64"},
		{"not an ip", "pipe", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			assert.Equal(t, tt.want, RealClientIP(r))
		})
	}
}

func TestKey_SameNetworkSameKey(t *testing.T) {
	assert.Equal(t, Key("2001:db8::1"), Key("2001:db8::ffff"))
	assert.NotEqual(t, Key("2001:db8:0:1::1"), Key("2001:db8:0:2::1"))
}
