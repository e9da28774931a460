package ratelimit

import (
	"net/http"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	anonymous = "anonymous"
)

// Headers which may carry the address of the client behind a proxy,
// in order of preference
var ipHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ClientIdentifier returns the key requests are limited by: the session
// when there is one, then the client address from proxy headers, then a
// shared anonymous key
func ClientIdentifier(header http.Header, session string) string {
	if session != "" {
		return "session:" + session
	}
	for _, key := range ipHeaders {
		if value := header.Get(key); value != "" {
			// X-Forwarded-For can be a list, the first entry is the client
			if ip, _, _ := strings.Cut(value, ","); strings.TrimSpace(ip) != "" {
				return "ip:" + strings.TrimSpace(ip)
			}
		}
	}
	return anonymous
}
