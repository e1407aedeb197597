package utils

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyHeaders are consulted in order when the origin sits behind a trusted proxy.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Forwarded-For", "X-Real-IP"}

// ParseAddr parses "ip", "ip:port" or "[v6]:port". IPv4-mapped IPv6 is unmapped.
func ParseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// ClientAddr resolves the address of the client that sent r.
//
// With trustProxy the left-most address of the first proxy header present
// wins; otherwise only RemoteAddr is used. Only enable trustProxy when the
// origin is reachable solely through the proxy (e.g. cloudflared on localhost).
func ClientAddr(r *http.Request, trustProxy bool) (netip.Addr, bool) {
	if trustProxy {
		for _, h := range proxyHeaders {
			v := r.Header.Get(h)
			if i := strings.IndexByte(v, ','); i >= 0 {
				v = v[:i]
			}
			if addr, ok := ParseAddr(v); ok {
				return addr, true
			}
		}
	}
	return ParseAddr(r.RemoteAddr)
}

// ClientIP is ClientAddr as a string, falling back to the raw RemoteAddr.
// Used as the per-client key of the rate limiter.
func ClientIP(r *http.Request, trustProxy bool) string {
	if addr, ok := ClientAddr(r, trustProxy); ok {
		return addr.String()
	}
	return r.RemoteAddr
}

// PrefixSet is an allowlist of addresses and CIDR ranges.
// A bare address is stored as a single-host prefix.
type PrefixSet struct {
	prefixes []netip.Prefix
}

// NewPrefixSet parses entries such as "10.0.0.0/8" or "192.168.1.10".
// Unparseable entries are skipped.
func NewPrefixSet(entries []string) *PrefixSet {
	set := &PrefixSet{}
	for _, raw := range entries {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if p, err := netip.ParsePrefix(s); err == nil {
			set.prefixes = append(set.prefixes, p.Masked())
			continue
		}
		if addr, ok := ParseAddr(s); ok {
			set.prefixes = append(set.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return set
}

// Len returns the number of valid entries.
func (s *PrefixSet) Len() int {
	return len(s.prefixes)
}

// Contains reports whether addr falls in any entry.
func (s *PrefixSet) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range s.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
