package analytics

import "strings"

// UnknownBrowser is reported for empty or unrecognized user agents.
const UnknownBrowser = "Unknown"

// browserTokens is the ordered set of known-browser tokens; the first
// match wins. Edge user agents also contain "Chrome", so they count as
// Chrome here, matching the substring-order contract.
var browserTokens = []string{"Chrome", "Firefox", "Safari", "Edge"}

// ParseBrowser maps a user-agent string to a browser name.
func ParseBrowser(userAgent string) string {
	if userAgent == "" {
		return UnknownBrowser
	}

	for _, token := range browserTokens {
		if strings.Contains(userAgent, token) {
			return token
		}
	}

	return UnknownBrowser
}
