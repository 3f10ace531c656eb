package parser

import (
	"strings"
)

// INIFormat converts the values of INI files. Sections, keys and comments are
// left untouched.
type INIFormat struct{}

func NewINIFormat() *INIFormat { return &INIFormat{} }

func (f *INIFormat) Extensions() []string { return []string{".ini"} }

func (f *INIFormat) Parse(path string) (*Document, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: path, Kind: KindINI, Lines: lines}
	section := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "", strings.HasPrefix(trimmed, ";"), strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
			section = trimmed[1 : len(trimmed)-1]
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if !convertible(value) {
			continue
		}
		doc.Spans = append(doc.Spans, Span{
			Text:    value,
			Line:    i + 1,
			Column:  -1,
			Key:     strings.TrimSpace(key),
			Section: section,
		})
	}
	return doc, nil
}

func (f *INIFormat) Render(doc *Document, converted map[string]string) []byte {
	lines := cloneLines(doc)
	for _, s := range doc.Spans {
		out, ok := converted[s.Text]
		if !ok || s.Line < 1 || s.Line > len(lines) {
			continue
		}
		line := lines[s.Line-1]
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		after := line[eq+1:]
		lead := after[:len(after)-len(strings.TrimLeft(after, " \t"))]
		lines[s.Line-1] = line[:eq+1] + lead + out
	}
	return joinLines(lines)
}
