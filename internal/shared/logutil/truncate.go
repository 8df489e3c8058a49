// Package logutil holds small helpers for log output.
package logutil

import "strings"

// Truncate shortens s to limit runes, appending "..." when cut.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
