package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"seotooler/internal/constants"
)

func TestResolveIdentity(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "first forwarded address wins",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.4, 10.0.0.1", "Client-Ip": "192.0.2.9"},
			want:    "198.51.100.4",
		},
		{
			name:    "client ip header when no forwarded-for",
			headers: map[string]string{"Client-Ip": " 192.0.2.9 "},
			want:    "192.0.2.9",
		},
		{
			name:    "empty forwarded entry falls through",
			headers: map[string]string{"X-Forwarded-For": " , 10.0.0.1", "Client-Ip": "192.0.2.9"},
			want:    "192.0.2.9",
		},
		{
			name:    "nothing resolvable",
			headers: map[string]string{},
			want:    "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ResolveIdentity(req, constants.DefaultIdentityHeaders))
		})
	}
}

func TestResolveIdentityIgnoresRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.RemoteAddr = "203.0.113.50:4321"

	assert.Equal(t, constants.UnknownIdentity, ResolveIdentity(req, constants.DefaultIdentityHeaders))
}

func TestResolveIdentityCapsLength(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.Header.Set("X-Forwarded-For", strings.Repeat("é", 5000)+", 10.0.0.1")

	got := ResolveIdentity(req, constants.DefaultIdentityHeaders)
	assert.Equal(t, constants.MaxIdentityLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}
