package utils

import (
	"net/mail"
	"strings"
)

// ValidEmail reports whether s is a single bare address such as a@b.co.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmailLocalPart returns the part of an address before "@".
func EmailLocalPart(s string) string {
	if at := strings.Index(s, "@"); at >= 0 {
		return s[:at]
	}
	return s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NilIfEmpty returns nil for blank strings so optional columns stay NULL.
func NilIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
