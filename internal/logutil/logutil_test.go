package logutil

import "testing"

func TestIsSensitiveKey(t *testing.T) {
	t.Parallel()

	sensitive := []string{
		"password",
		"hash_salt_key",
		"hash_iterations_key",
		"fcmInstanceID",
		"oauth-token",
		"client_secret",
	}
	for _, key := range sensitive {
		if !IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = false, want true", key)
		}
	}

	benign := []string{
		"serverUrl",
		"survey_ids",
		"gps",
		"about_page_text",
		"s1-content",
	}
	for _, key := range benign {
		if IsSensitiveKey(key) {
			t.Errorf("IsSensitiveKey(%q) = true, want false", key)
		}
	}
}

func TestRedactValue(t *testing.T) {
	t.Parallel()

	if got := RedactValue("password", "hunter2"); got != "[REDACTED]" {
		t.Fatalf("RedactValue(password) = %q", got)
	}
	if got := RedactValue("serverUrl", "https://x"); got != "https://x" {
		t.Fatalf("RedactValue(serverUrl) = %q", got)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	if got := TruncateForLog("  short\nvalue  ", 0); got != "short\\nvalue" {
		t.Fatalf("TruncateForLog = %q", got)
	}
	long := TruncateForLog("abcdefghij", 4)
	if long != "abcd... [truncated]" {
		t.Fatalf("TruncateForLog long = %q", long)
	}
}
