package parser

import (
	"strings"
)

// TextFormat handles plain text, Markdown and tab-separated files. A .tsv
// file, or any file whose lines mostly share one tab count, is split per cell.
type TextFormat struct{}

func NewTextFormat() *TextFormat { return &TextFormat{} }

func (f *TextFormat) Extensions() []string {
	return []string{".txt", ".md", ".tsv"}
}

func (f *TextFormat) Parse(path string) (*Document, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: path, Kind: KindPlain, Lines: lines}
	if strings.HasSuffix(strings.ToLower(path), ".tsv") || detectTSV(lines) {
		doc.Kind = KindTSV
		doc.Spans = tsvSpans(lines)
	} else {
		doc.Spans = plainSpans(lines)
	}
	return doc, nil
}

// detectTSV checks if the file has consistent tab-separated columns.
func detectTSV(lines []string) bool {
	if len(lines) < 2 {
		return false
	}

	tabCounts := make(map[int]int)
	nonEmpty := 0
	for _, line := range lines[:min(len(lines), 20)] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		nonEmpty++
		if n := strings.Count(line, "\t"); n > 0 {
			tabCounts[n]++
		}
	}
	if nonEmpty == 0 {
		return false
	}

	best := 0
	for _, c := range tabCounts {
		best = max(best, c)
	}
	// More than 60% of non-empty lines share one tab count.
	return float64(best)/float64(nonEmpty) > 0.6
}

func tsvSpans(lines []string) []Span {
	var spans []Span
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		for col, cell := range cells {
			if !convertible(cell) {
				continue
			}
			s := Span{Text: cell, Line: i + 1, Column: col}
			if col > 0 {
				s.Key = cells[0]
			}
			spans = append(spans, s)
		}
	}
	return spans
}

func plainSpans(lines []string) []Span {
	var spans []Span
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !convertible(trimmed) {
			continue
		}
		spans = append(spans, Span{Text: trimmed, Line: i + 1, Column: -1})
	}
	return spans
}

func (f *TextFormat) Render(doc *Document, converted map[string]string) []byte {
	lines := cloneLines(doc)
	for _, s := range doc.Spans {
		out, ok := converted[s.Text]
		if !ok || s.Line < 1 || s.Line > len(lines) {
			continue
		}
		idx := s.Line - 1

		if doc.Kind == KindTSV {
			cells := strings.Split(lines[idx], "\t")
			if s.Column >= 0 && s.Column < len(cells) {
				cells[s.Column] = out
			}
			lines[idx] = strings.Join(cells, "\t")
			continue
		}

		// Indentation and trailing space stay.
		lines[idx] = strings.Replace(lines[idx], s.Text, out, 1)
	}
	return joinLines(lines)
}
