package errors

import (
	"net"
	"strconv"
	"strings"
	"unicode"
)

// ValidateURL validates a remote inspection endpoint URL.
// It ensures the URL has a safe scheme (http or https) and no control characters.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, r := range rawURL {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "URL contains invalid characters")
		}
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateListenAddr validates a host:port pair for the inspection server.
// An empty host (":8090") binds every interface.
func ValidateListenAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInput, "listen address cannot be empty")
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid listen address %q", addr)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return New(ErrCodeInvalidInput, "invalid port %q", port)
	}

	return nil
}

// ValidateFormat checks format against the allowed set.
func ValidateFormat(format string, allowed map[string]bool) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !allowed[format] {
		return New(ErrCodeInvalidFormat, "unsupported format: %q", format)
	}
	return nil
}
