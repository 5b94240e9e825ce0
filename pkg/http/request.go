package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig controls which upstream proxies are allowed to assert a client
// address via forwarding headers.
type IPConfig struct {
	TrustedProxies []string // CIDR notation
}

// ExtractClientIP resolves the client address for a request. Forwarding
// headers are honored only when the direct peer sits inside a trusted
// proxy range; otherwise anyone could smuggle an arbitrary address into
// the lockout counters. X-Forwarded-For wins over X-Real-IP, and the
// direct peer address is the fallback for both.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	peer := getRemoteAddr(r)

	if config == nil || !isTrustedProxy(peer, config.TrustedProxies) {
		return peer
	}

	// X-Forwarded-For accumulates one entry per hop; the first parseable
	// entry is the original client.
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if candidate := strings.TrimSpace(part); isValidIP(candidate) {
			return candidate
		}
	}

	if xri := r.Header.Get("X-Real-IP"); isValidIP(xri) {
		return xri
	}

	return peer
}

// getRemoteAddr strips the port from RemoteAddr, which the HTTP server
// populates as "host:port" for TCP peers.
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trustedProxies []string) bool {
	peer := net.ParseIP(ip)
	if peer == nil {
		return false
	}

	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if ipNet.Contains(peer) {
			return true
		}
	}
	return false
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
