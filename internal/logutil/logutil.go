// Package logutil keeps credentials and derived secrets out of logs and
// diagnostic dumps of the settings store.
package logutil

import "strings"

// IsSensitiveKey returns true when a setting key likely holds sensitive data.
func IsSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch {
	case strings.Contains(normalized, "password"):
		return true
	case strings.Contains(normalized, "salt"):
		return true
	case strings.Contains(normalized, "secret"):
		return true
	case strings.Contains(normalized, "token"):
		return true
	case strings.Contains(normalized, "fcminstanceid"):
		return true
	case strings.Contains(normalized, "iterations"):
		return true
	default:
		return false
	}
}

// RedactValue replaces the value when its key looks sensitive.
func RedactValue(key, value string) string {
	if IsSensitiveKey(key) {
		return "[REDACTED]"
	}
	return value
}

// TruncateForLog returns a single-line truncated preview for long stored
// blobs (survey content, message inboxes).
func TruncateForLog(value string, maxChars int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ReplaceAll(trimmed, "\n", "\\n")
	if maxChars <= 0 || len(normalized) <= maxChars {
		return normalized
	}
	return normalized[:maxChars] + "... [truncated]"
}
