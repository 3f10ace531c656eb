package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

// ContainsGeorgian checks if a string contains Georgian characters.
func ContainsGeorgian(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return unicode.Is(unicode.Georgian, r) }) >= 0
}

// ContainsLatinLetter checks if a string contains an ASCII letter.
func ContainsLatinLetter(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r < unicode.MaxASCII && unicode.IsLetter(r)
	}) >= 0
}

// Hash computes a SHA-256 hex hash of the parts joined by NUL bytes.
func Hash(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
