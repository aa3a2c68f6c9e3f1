// Package logging provides credential sanitization helpers for log output and
// API responses.
package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength is the maximum length of a SQL statement to log.
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
	// PasswordMask replaces the password segment in masked connection URLs.
	PasswordMask = "****"
)

var (
	// Matches password=xxx, pwd=xxx, pass=xxx up to the next delimiter.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches the password segment of a ://user:password@host URL.
	// Username and host are capture groups so they survive masking.
	urlPasswordPattern = regexp.MustCompile(`(://[^:/@]+:)([^@]+)(@)`)

	// Matches full user:pass@host credentials for error sanitization, where
	// even the username must not leak.
	connStringPattern = regexp.MustCompile(`://[^:/@\s]+:[^@\s]+@[^/\s]+`)
)

// MaskConnectionURL replaces the password segment of a connection URL with a
// fixed mask, leaving username and host visible. URLs without a password are
// returned unchanged. Every externally-surfaced connection URL must pass
// through this; the raw value is used only to open connections.
func MaskConnectionURL(connectionURL string) string {
	return urlPasswordPattern.ReplaceAllString(connectionURL, "${1}"+PasswordMask+"${3}")
}

// SanitizeError strips credentials from error text before logging. Driver
// errors frequently echo the DSN, so both key=value and URL credential forms
// are redacted.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeQuery truncates a SQL statement for logging and redacts anything
// that looks like an inline credential.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	sanitized := query
	if len(sanitized) > MaxQueryLogLength {
		sanitized = sanitized[:MaxQueryLogLength] + "..."
	}
	return passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
}
