// Package device renders a human-readable description of the client from its
// User-Agent, for audit trails on login and registration.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe summarizes a User-Agent as "<browser> on <platform>", e.g.
// "Chrome on Mac OS X". Empty input yields "Unknown Device".
func Describe(rawUserAgent string) string {
	if strings.TrimSpace(rawUserAgent) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUserAgent)
	browser, _ := ua.Browser()
	platform := ua.OSInfo().Name
	if platform == "" {
		platform = ua.Platform()
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if platform == "" {
		platform = "Unknown Platform"
	}
	return browser + " on " + platform
}
