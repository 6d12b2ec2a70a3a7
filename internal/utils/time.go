package utils

import "time"

// FormatTimestamp renders a timestamp the way all API responses do (RFC3339, UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
