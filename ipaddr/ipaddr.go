// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package ipaddr normalizes network addresses used for uploader identity
// and deletion authorization.
package ipaddr

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Normalize canonicalizes a raw address string: quotes and zone suffixes
// are stripped, IPv4-mapped IPv6 addresses collapse to IPv4, and a
// trailing :port on an IPv4 address is dropped. Returns ok=false for
// empty, "unknown", or unparseable input.
func Normalize(raw string) (string, bool) {
	value := strings.Trim(strings.TrimSpace(raw), `"`)
	if value == "" || strings.EqualFold(value, "unknown") {
		return "", false
	}

	value = strings.TrimPrefix(value, "::ffff:")
	if i := strings.IndexByte(value, '%'); i >= 0 {
		value = value[:i]
	}

	candidates := []string{value}
	if strings.Count(value, ":") == 1 && strings.Contains(value, ".") {
		// Looks like "v4:port".
		candidates = append(candidates, value[:strings.IndexByte(value, ':')])
	}

	for _, candidate := range candidates {
		addr, err := netip.ParseAddr(candidate)
		if err != nil {
			continue
		}
		return addr.Unmap().String(), true
	}
	return "", false
}

// IP sources reported by ClientIP.
const (
	SourceForwardedFor = "x-forwarded-for"
	SourceRealIP       = "x-real-ip"
	SourceRemoteAddr   = "remote-addr"
	SourceUnknown      = "unknown"
)

// ClientIP resolves the requester's address, preferring proxy headers over
// the peer address, and reports which source supplied it.
func ClientIP(r *http.Request) (string, string) {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip, ok := Normalize(part); ok {
				return ip, SourceForwardedFor
			}
		}
	}

	if ip, ok := Normalize(r.Header.Get("X-Real-Ip")); ok {
		return ip, SourceRealIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip, ok := Normalize(host); ok {
		return ip, SourceRemoteAddr
	}

	return "", SourceUnknown
}

// HostAddresses returns the normalized addresses assigned to this host's
// network interfaces. Used to build the privileged-origin set.
func HostAddresses() []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var result []string
	for _, addr := range addrs {
		var ipStr string
		switch a := addr.(type) {
		case *net.IPNet:
			ipStr = a.IP.String()
		case *net.IPAddr:
			ipStr = a.IP.String()
		default:
			continue
		}
		if normalized, ok := Normalize(ipStr); ok {
			result = append(result, normalized)
		}
	}
	return result
}
