// Package subdomain maps request hosts to shop subdomain labels. It is shared
// by the server-side middleware and the client's subdomain detection so both
// agree on what counts as a shop host.
package subdomain

import (
	"net"
	"strings"
)

// Reserved labels that are never treated as shop names.
var reserved = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
}

// Extract returns the shop subdomain label of host relative to baseDomain, or
// "" when the host has no extra leading label. A port suffix is ignored, and
// reserved labels (www, api, admin) report no subdomain.
//
// Extract("coffee-shop.localhost:3000", "localhost") == "coffee-shop"
// Extract("www.localhost:3000", "localhost") == ""
// Extract("localhost:3000", "localhost") == ""
func Extract(host, baseDomain string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == baseDomain {
		return ""
	}

	suffix := "." + baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	prefix := strings.TrimSuffix(host, suffix)
	// Only a single extra label selects a shop; deeper nesting is not a shop host.
	if prefix == "" || strings.Contains(prefix, ".") {
		return ""
	}
	if reserved[prefix] {
		return ""
	}
	return prefix
}

// IsReserved reports whether label is one of the reserved subdomains.
func IsReserved(label string) bool {
	return reserved[label]
}
