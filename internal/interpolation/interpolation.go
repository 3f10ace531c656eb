// Package interpolation shields placeholders, format verbs and URLs from
// transliteration. Protected spans are swapped for private-use markers that
// neither conversion direction touches, and swapped back afterwards.
package interpolation

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	markerOpen  = '\uE000'
	markerClose = '\uE001'
)

// Mapping stores the original span and its marker.
type Mapping struct {
	Original    string
	Placeholder string
	Index       int
}

type varMatch struct {
	start, end int
}

var patterns = []*regexp.Regexp{
	regexp.MustCompile(`https?://[^\s<>"]+`),                    // URLs
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),          // ${value}
	regexp.MustCompile(`\{\{\s*[a-zA-Z_][a-zA-Z0-9_.]*\s*\}\}`), // {{ name }}
	regexp.MustCompile(`\{[a-zA-Z0-9_]+\}`),                     // {0}, {name}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubcpqv]`), // %d, %s, %2d
	regexp.MustCompile(`%%`),                                    // escaped percent literal
}

// Protect replaces every protected span with a marker and returns the marked
// text plus the mappings needed by Restore.
func Protect(text string) (string, []Mapping) {
	var all []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, varMatch{start: loc[0], end: loc[1]})
		}
	}
	if len(all) == 0 {
		return text, nil
	}

	// By position, longest first on ties, then drop overlaps.
	slices.SortFunc(all, func(a, b varMatch) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		return cmp.Compare(b.end, a.end)
	})
	var kept []varMatch
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			kept = append(kept, m)
			lastEnd = m.end
		}
	}

	var b strings.Builder
	mappings := make([]Mapping, 0, len(kept))
	prev := 0
	for i, m := range kept {
		placeholder := marker(i + 1)
		b.WriteString(text[prev:m.start])
		b.WriteString(placeholder)
		prev = m.end
		mappings = append(mappings, Mapping{
			Original:    text[m.start:m.end],
			Placeholder: placeholder,
			Index:       i + 1,
		})
	}
	b.WriteString(text[prev:])

	return b.String(), mappings
}

// Restore puts the original spans back in place of their markers.
func Restore(converted string, mappings []Mapping) string {
	result := converted
	for _, m := range mappings {
		result = strings.Replace(result, m.Placeholder, m.Original, 1)
	}
	return result
}

func marker(n int) string {
	return string(markerOpen) + strconv.Itoa(n) + string(markerClose)
}
