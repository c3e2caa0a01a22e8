// Package security validates user-supplied asset URLs such as recipe images
// and profile photos before they are stored.
package security

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrUnsafeURL is wrapped by every ValidateAssetURL failure
var ErrUnsafeURL = errors.New("unsafe asset URL")

// IsPrivateIP checks if the given IP address is a private, localhost, or link-local address.
// Returns false for public IPs and invalid IP strings.
func IsPrivateIP(ipStr string) bool {
	if ipStr == "" {
		return false
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	if ip.IsLoopback() || ip.IsPrivate() {
		return true
	}

	// 169.254.x.x for IPv4, fe80::/10 for IPv6
	return ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// IsLocalhost checks if the given host is localhost.
// Accepts: "localhost", "127.0.0.1", "::1", "[::1]", "0.0.0.0"
func IsLocalhost(host string) bool {
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")

	switch host {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ValidateAssetURL checks that urlStr is safe to store and render as an image source.
// It checks:
// - URL is valid and has http/https scheme
// - HTTPS is required (unless allowLocal is true and host is localhost)
// - Host is not a private IP address
// - Host is not localhost (unless allowLocal is true)
//
// allowLocal is set in local development, where the storage emulator serves
// assets over plain HTTP on localhost.
func ValidateAssetURL(urlStr string, allowLocal bool) error {
	if urlStr == "" {
		return fmt.Errorf("%w: URL is empty", ErrUnsafeURL)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: invalid URL: %w", ErrUnsafeURL, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: unsupported URL scheme %q (only http and https are allowed)", ErrUnsafeURL, parsed.Scheme)
	}

	host := ExtractHostWithoutPort(parsed.Host)
	if host == "" {
		return fmt.Errorf("%w: missing host", ErrUnsafeURL)
	}

	isLocal := IsLocalhost(host)
	if isLocal {
		if !allowLocal {
			return fmt.Errorf("%w: localhost URLs are not allowed", ErrUnsafeURL)
		}
		return nil
	}

	if scheme == "http" {
		return fmt.Errorf("%w: HTTPS is required for asset URLs", ErrUnsafeURL)
	}

	if IsPrivateIP(host) {
		return fmt.Errorf("%w: private IP addresses are not allowed", ErrUnsafeURL)
	}

	return nil
}
