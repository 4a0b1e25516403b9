package vocab

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entry is one (word, example, meaning) record.
type Entry struct {
	Word    string
	Example string
	Meaning string
}

// List is the ordered vocabulary for a session. It is never mutated after
// loading; entries are identified by their 0-based index.
type List []Entry

// Len returns the number of entries.
func (l List) Len() int { return len(l) }

// At returns the entry at index i and whether i is in range.
func (l List) At(i int) (Entry, bool) {
	if i < 0 || i >= len(l) {
		return Entry{}, false
	}
	return l[i], true
}

// newEntry builds an entry from split fields. Missing fields are empty and
// anything past the third field is dropped.
func newEntry(fields []string) Entry {
	var e Entry
	for i, f := range fields {
		f = norm.NFC.String(strings.TrimSpace(f))
		switch i {
		case 0:
			e.Word = f
		case 1:
			e.Example = f
		case 2:
			e.Meaning = f
		}
	}
	return e
}
