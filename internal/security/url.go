package security

import "strings"

// ExtractHostWithoutPort extracts the hostname from a host:port string.
// Handles IPv6 addresses with brackets correctly.
//
// Examples:
//   - "example.com:8443" -> "example.com"
//   - "[::1]:8080" -> "::1"
//   - "192.168.1.1:8080" -> "192.168.1.1"
func ExtractHostWithoutPort(host string) string {
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end > 0 {
			return host[1:end]
		}
	}

	colon := strings.LastIndex(host, ":")
	if colon > 0 {
		port := host[colon+1:]
		if port != "" && strings.Trim(port, "0123456789") == "" {
			return host[:colon]
		}
	}

	return host
}
