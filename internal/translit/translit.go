// Package translit converts Mingrelian and Georgian text between the
// Mkhedruli script and its Latin romanization.
//
// Romanization uses single letters, digraphs (zh, gh, sh, ch, dz) and
// apostrophe-marked ejectives (k', p', t', ts', ch', e'). Reverse conversion
// is case-insensitive and consumes the longest romanization keys first, so
// ts' always decodes to წ and never to თ + ს + ჸ.
//
// Known asymmetries of the alphabet:
//   - ჲ is decoded from y but has no romanization of its own; ToLatin
//     leaves it unchanged.
//   - ʼ (U+02BC) romanizes to ', which decodes to ჸ.
//   - q' decodes to ყ, the same symbol as q, and ყ romanizes to q.
//
// Characters outside the alphabet pass through unchanged. All functions are
// safe for concurrent use by multiple goroutines.
package translit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Direction selects the conversion applied by Convert.
type Direction int

const (
	Auto        Direction = iota // by the first significant character
	ToLatinDir                   // Mkhedruli → Latin
	ToScriptDir                  // Latin → Mkhedruli
)

var directionNames = [...]string{
	Auto:        "auto",
	ToLatinDir:  "latin",
	ToScriptDir: "script",
}

// String returns the flag name of the direction.
func (d Direction) String() string {
	if int(d) >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses "auto", "latin" or "script".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "latin", "lat":
		return ToLatinDir, nil
	case "script", "mkhedruli", "geo":
		return ToScriptDir, nil
	}
	return Auto, fmt.Errorf("translit: unknown direction %q", s)
}

// Transliterator converts text using one alphabet table.
type Transliterator struct {
	table *Table
}

// New returns a Transliterator over the default alphabet.
func New() *Transliterator {
	return &Transliterator{table: DefaultTable()}
}

// NewWithTable returns a Transliterator over a custom table.
func NewWithTable(t *Table) *Transliterator {
	return &Transliterator{table: t}
}

// Table returns the alphabet in use.
func (tr *Transliterator) Table() *Table { return tr.table }

// ToLatin romanizes every script symbol in s, one code point at a time.
// Invalid UTF-8 bytes are copied unchanged.
func (tr *Transliterator) ToLatin(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
			i++
			continue
		}
		if latin, ok := tr.table.Forward(r); ok {
			b.WriteString(latin)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}

	return b.String()
}

// ToScript lowercases s and replaces every romanization key with its script
// symbol, one key at a time from the longest key to the shortest.
func (tr *Transliterator) ToScript(s string) string {
	if s == "" {
		return ""
	}

	// cases.Caser keeps state, so each call gets its own.
	out := cases.Lower(language.Und).String(s)
	for _, e := range tr.table.reverse {
		if strings.Contains(out, e.Latin) {
			out = strings.ReplaceAll(out, e.Latin, string(e.Symbol))
		}
	}
	return out
}

// Convert applies the conversion selected by d. Auto romanizes text led by a
// Georgian character and decodes everything else.
func (tr *Transliterator) Convert(s string, d Direction) string {
	switch d {
	case ToLatinDir:
		return tr.ToLatin(s)
	case ToScriptDir:
		return tr.ToScript(s)
	}
	if IsScriptText(s) {
		return tr.ToLatin(s)
	}
	return tr.ToScript(s)
}

var std = New()

// ToLatin romanizes s with the default alphabet.
func ToLatin(s string) string { return std.ToLatin(s) }

// ToScript converts romanized s to Mkhedruli with the default alphabet.
func ToScript(s string) string { return std.ToScript(s) }

// Convert converts s in direction d with the default alphabet.
func Convert(s string, d Direction) string { return std.Convert(s, d) }
