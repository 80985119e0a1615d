package errors

import (
	"strings"
	"unicode"
)

// ValidateFacilityID validates a facility identifier for safety and
// correctness. Identifiers end up in file names (cache keys) and DOT output,
// so the rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateFacilityID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "facility id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "facility id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "facility id contains control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidGraph, "facility id contains invalid sequence %q", pattern)
		}
	}

	return nil
}

// ValidateEnum checks that value is one of allowed, returning an
// ErrCodeInvalidMode error that names both the value and the allowed set.
// Channel mode parsing goes through this so misconfiguration always fails
// fast instead of silently falling back.
func ValidateEnum(channel, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return New(ErrCodeInvalidMode, "invalid %s mode %q (allowed: %s)",
		channel, value, strings.Join(allowed, ", "))
}
