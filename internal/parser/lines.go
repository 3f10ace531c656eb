package parser

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kkahadze/mkhedruli-megruli/internal/textutil"
)

const maxLineBytes = 4 * 1024 * 1024

var identifier = regexp.MustCompile(`^[A-Za-z0-9_.-]*[_0-9][A-Za-z0-9_.-]*$`)

// readLines reads a file as NFC-normalized lines without terminators.
func readLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		lines = append(lines, norm.NFC.String(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return lines, nil
}

// convertible reports whether s holds letters either direction can change.
// Identifier-like tokens such as item_01 are left alone.
func convertible(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || identifier.MatchString(s) {
		return false
	}
	return textutil.ContainsGeorgian(s) || textutil.ContainsLatinLetter(s)
}

func cloneLines(doc *Document) []string {
	return slices.Clone(doc.Lines)
}

func joinLines(lines []string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}
