package vocab

import (
	"errors"
	"path"
	"strings"
)

// Separator is the field separator of delimited vocabulary files.
const Separator = ";"

// ErrEmptyList is returned when a source holds no entries.
var ErrEmptyList = errors.New("vocabulary source has no entries")

// Format identifies how a vocabulary source is encoded.
type Format int

const (
	// FormatDelimited is one entry per line, fields separated by Separator.
	FormatDelimited Format = iota
	// FormatMarkdown is a GFM table with word, example and meaning columns.
	FormatMarkdown
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatDelimited:
		return "delimited"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// FormatFor picks the format from a file name or URL path.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return FormatMarkdown
	default:
		return FormatDelimited
	}
}

// Parse decodes vocabulary text in the given format.
func Parse(text string, format Format) (List, error) {
	var list List
	switch format {
	case FormatMarkdown:
		list = parseMarkdown([]byte(text))
	default:
		list = parseDelimited(text)
	}
	if len(list) == 0 {
		return nil, ErrEmptyList
	}
	return list, nil
}

// parseDelimited splits trimmed text into lines and each line into fields.
// An interior blank line is an empty entry, so an index is a line position
// in the trimmed text.
func parseDelimited(text string) List {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	list := make(List, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		list = append(list, newEntry(strings.Split(line, Separator)))
	}
	return list
}
