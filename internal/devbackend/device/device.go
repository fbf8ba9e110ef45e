// Package device derives human-readable device names from user-agent
// strings for audit records.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent converts a raw user-agent header into a display name such
// as "Chrome on Mac OS X". Unknown parts fall back to generic labels so the
// result always reads as "<browser> on <platform>".
func ParseUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	// Mobile platforms read better by hardware name ("iPhone") than by OS.
	platform := ""
	if ua.Mobile() {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = ua.OSInfo().Name
	}
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown Platform"
	}

	return strings.TrimSpace(browser + " on " + platform)
}
