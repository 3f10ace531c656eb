package translit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Entry pairs a script symbol with its Latin form.
type Entry struct {
	Symbol rune
	Latin  string
}

// forwardEntries is the canonical Mkhedruli → Latin table, in alphabet order.
var forwardEntries = []Entry{
	{'ა', "a"}, {'ბ', "b"}, {'გ', "g"}, {'დ', "d"}, {'ე', "e"},
	{'ვ', "v"}, {'ზ', "z"}, {'თ', "t"}, {'ი', "i"}, {'კ', "k'"},
	{'ლ', "l"}, {'მ', "m"}, {'ნ', "n"}, {'ო', "o"}, {'პ', "p'"},
	{'ჟ', "zh"}, {'რ', "r"}, {'ს', "s"}, {'ტ', "t'"}, {'უ', "u"},
	{'ფ', "p"}, {'ქ', "k"}, {'ღ', "gh"}, {'ყ', "q"}, {'შ', "sh"},
	{'ჩ', "ch"}, {'ც', "c"}, {'ძ', "dz"}, {'წ', "ts'"}, {'ჭ', "ch'"},
	{'ხ', "x"}, {'ჯ', "j"}, {'ჰ', "h"}, {'ჷ', "e'"}, {'ჸ', "՚"},
	{'ʼ', "'"},
}

// reverseOnlyEntries are decoded by ToScript but never produced by ToLatin.
// ჲ has no forward form, and the bare apostrophe decodes to ჸ rather than
// back to ʼ, so neither ჲ nor ʼ survives a round trip. q' is accepted as an
// ejective spelling of ყ so it is not split into ყ + ჸ.
var reverseOnlyEntries = []Entry{
	{'ჲ', "y"},
	{'ჸ', "'"},
	{'ყ', "q'"},
}

// Table is an immutable bidirectional alphabet.
type Table struct {
	forward map[rune]string
	order   []Entry
	reverse []Entry // sorted longest key first
	symbols map[rune]bool
}

// NewTable builds a table from forward pairs plus reverse-only pairs. Reverse
// keys come from the forward pairs first; reverseOnly entries override them.
func NewTable(forward, reverseOnly []Entry) (*Table, error) {
	t := &Table{
		forward: make(map[rune]string, len(forward)),
		order:   slices.Clone(forward),
		symbols: make(map[rune]bool, len(forward)+len(reverseOnly)),
	}

	reverse := make(map[string]rune, len(forward)+len(reverseOnly))
	for _, e := range forward {
		if e.Latin == "" {
			return nil, fmt.Errorf("translit: empty latin form for %q", e.Symbol)
		}
		if _, dup := t.forward[e.Symbol]; dup {
			return nil, fmt.Errorf("translit: duplicate symbol %q", e.Symbol)
		}
		t.forward[e.Symbol] = e.Latin
		t.symbols[e.Symbol] = true
		reverse[e.Latin] = e.Symbol
	}
	for _, e := range reverseOnly {
		if e.Latin == "" {
			return nil, fmt.Errorf("translit: empty latin key for %q", e.Symbol)
		}
		t.symbols[e.Symbol] = true
		reverse[e.Latin] = e.Symbol
	}

	for key := range reverse {
		for _, r := range key {
			if t.symbols[r] {
				return nil, fmt.Errorf("translit: latin key %q contains script symbol %q", key, r)
			}
		}
	}

	t.reverse = make([]Entry, 0, len(reverse))
	for key, sym := range reverse {
		t.reverse = append(t.reverse, Entry{Symbol: sym, Latin: key})
	}
	slices.SortFunc(t.reverse, func(a, b Entry) int {
		if c := cmp.Compare(utf8.RuneCountInString(b.Latin), utf8.RuneCountInString(a.Latin)); c != 0 {
			return c
		}
		return strings.Compare(a.Latin, b.Latin)
	})

	return t, nil
}

// MustNewTable is like NewTable but panics on an invalid table.
func MustNewTable(forward, reverseOnly []Entry) *Table {
	t, err := NewTable(forward, reverseOnly)
	if err != nil {
		panic(err)
	}
	return t
}

var defaultTable = MustNewTable(forwardEntries, reverseOnlyEntries)

// DefaultTable returns the Mingrelian/Georgian alphabet table.
func DefaultTable() *Table { return defaultTable }

// Forward returns the Latin form of a script symbol.
func (t *Table) Forward(symbol rune) (string, bool) {
	latin, ok := t.forward[symbol]
	return latin, ok
}

// ForwardEntries returns the forward pairs in alphabet order.
func (t *Table) ForwardEntries() []Entry {
	return slices.Clone(t.order)
}

// ReverseEntries returns the Latin → script pairs, longest key first.
func (t *Table) ReverseEntries() []Entry {
	return slices.Clone(t.reverse)
}

// Len reports the number of forward-mapped symbols.
func (t *Table) Len() int { return len(t.order) }
