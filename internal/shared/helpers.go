// Package shared provides common utility functions used across multiple
// packages in the ornithe-installer codebase.
package shared

import (
	"fmt"
	"runtime"
	"strings"
)

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// HTTPStatusErrorWithBody creates a formatted error that includes the
// response body for non-2xx HTTP responses.
func HTTPStatusErrorWithBody(status int, url string, body string) error {
	return fmt.Errorf("status=%d url=%s response=%s", status, url, body)
}

// IsLinuxLike reports whether goos should be treated as a Linux-like host,
// which is anything that is neither Windows nor macOS.
func IsLinuxLike(goos string) bool {
	goos = strings.ToLower(strings.TrimSpace(goos))
	if goos == "" {
		goos = runtime.GOOS
	}
	return goos != "windows" && goos != "darwin"
}

// SplitMaven splits a maven coordinate into its colon-separated parts.
// The second return value is false when the coordinate has fewer than
// three parts.
func SplitMaven(coordinate string) ([]string, bool) {
	parts := strings.Split(strings.TrimSpace(coordinate), ":")
	if len(parts) < 3 {
		return parts, false
	}
	for _, part := range parts {
		if part == "" {
			return parts, false
		}
	}
	return parts, true
}
