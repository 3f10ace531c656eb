// Package parser splits text files into the spans a conversion rewrites and
// renders converted spans back without disturbing the rest of the file.
package parser

import (
	"path/filepath"
	"slices"
	"strings"
)

// Kind names the layout a Document was read with.
type Kind string

const (
	KindPlain Kind = "txt"
	KindTSV   Kind = "tsv"
	KindINI   Kind = "ini"
)

// Span is one run of convertible text within a line.
type Span struct {
	Text    string
	Line    int    // 1-based
	Column  int    // TSV cell, -1 elsewhere
	Key     string // INI key, or the id cell of a TSV row
	Section string // INI only
}

// Document is a parsed file. Lines are NFC-normalised and are what Render
// rewrites.
type Document struct {
	Path  string
	Kind  Kind
	Lines []string
	Spans []Span
}

// Texts returns the distinct span texts in first-seen order.
func (d *Document) Texts() []string {
	seen := make(map[string]struct{}, len(d.Spans))
	var out []string
	for _, s := range d.Spans {
		if _, ok := seen[s.Text]; ok {
			continue
		}
		seen[s.Text] = struct{}{}
		out = append(out, s.Text)
	}
	return out
}

// Format reads and renders one family of file extensions.
type Format interface {
	// Extensions lists the lower-case extensions handled, dot included.
	Extensions() []string
	Parse(path string) (*Document, error)
	// Render returns the file with every span found in converted replaced.
	// Spans missing from converted keep their original text.
	Render(doc *Document, converted map[string]string) []byte
}

// Formats returns the built-in formats.
func Formats() []Format {
	return []Format{NewINIFormat(), NewTextFormat()}
}

// ForPath picks the first format handling the extension of path.
func ForPath(formats []Format, path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}
	for _, f := range formats {
		if slices.Contains(f.Extensions(), ext) {
			return f, true
		}
	}
	return nil, false
}
