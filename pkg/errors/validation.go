package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds member identifiers. Ids end up in cache keys, URLs and
// SQLite primary keys.
const maxIDLength = 128

// ValidateMemberID validates a member identifier for safety.
//
// The rules are intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 128 characters
func ValidateMemberID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidMember, "member id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidMember, "member id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidMember, "member id contains invalid characters: %q", id)
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidMember, "member id cannot contain path separators: %q", id)
	}
	return nil
}

// ValidateMemberName rejects empty names and names containing control characters.
func ValidateMemberName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidMember, "member name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidMember, "member name contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates an image URL stored in the view configuration.
// Empty is allowed (no image). Otherwise the URL must use http(s) or be a
// site-relative path such as "/uploads/bg.png".
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return nil
	}
	if strings.HasPrefix(rawURL, "/") && !strings.HasPrefix(rawURL, "//") && !strings.Contains(rawURL, "..") {
		return nil
	}
	return New(ErrCodeInvalidInput, "URL must use http or https scheme or be a site-relative path")
}
