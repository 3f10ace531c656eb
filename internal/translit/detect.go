package translit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Georgian Unicode block: Asomtavruli, Nuskhuri, Mkhedruli and punctuation.
const (
	georgianFirst = 0x10A0
	georgianLast  = 0x10FF
)

// IsScriptText reports whether the first non-space character of s belongs to
// the Georgian block. Nothing after that character is inspected.
func IsScriptText(s string) bool {
	s = strings.TrimFunc(s, isTrimSpace)
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r >= georgianFirst && r <= georgianLast
}

// IsScriptText is the package-level IsScriptText. Detection looks only at the
// Unicode block, so the table tr was built with plays no part; the method is
// here so a *Transliterator covers every operation.
func (tr *Transliterator) IsScriptText(s string) bool { return IsScriptText(s) }

func isTrimSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
