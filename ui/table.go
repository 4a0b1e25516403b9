package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/mattn/go-runewidth"

	"github.com/dgnsrekt/vokabel/internal/vocab"
)

const (
	cellPadding    = 2 // cellStyle pads one column on each side
	minTextWidth   = 30
	wordPercent    = 25
	meaningPercent = 30
)

func newTable() table.Model {
	km := table.DefaultKeyMap()
	// Space belongs to read all / continue.
	km.PageDown = key.NewBinding(key.WithKeys("f", "pgdown"), key.WithHelp("f/pgdn", "page down"))

	t := table.New(
		table.WithColumns(columns(80, 0)),
		table.WithFocused(true),
		table.WithKeyMap(km),
	)
	t.SetStyles(tableStyles(false))
	return t
}

// tableStyles returns the row styles. While a sequence is speaking the
// cursor row doubles as the highlighted row.
func tableStyles(speaking bool) table.Styles {
	s := table.Styles{
		Header:   headerStyle,
		Cell:     cellStyle,
		Selected: cursorStyle,
	}
	if speaking {
		s.Selected = highlightStyle
	}
	return s
}

// columns splits width between the number, word, example and meaning
// columns of a list with n entries.
func columns(width, n int) []table.Column {
	numWidth := max(runewidth.StringWidth(strconv.Itoa(n)), 1)
	text := max(width-(numWidth+cellPadding)-3*cellPadding, minTextWidth)

	wordWidth := text * wordPercent / 100
	meaningWidth := text * meaningPercent / 100
	exampleWidth := text - wordWidth - meaningWidth

	return []table.Column{
		{Title: "#", Width: numWidth},
		{Title: "Word", Width: wordWidth},
		{Title: "Example", Width: exampleWidth},
		{Title: "Meaning", Width: meaningWidth},
	}
}

func rows(list vocab.List) []table.Row {
	out := make([]table.Row, len(list))
	for i, e := range list {
		out[i] = table.Row{strconv.Itoa(i + 1), e.Word, e.Example, e.Meaning}
	}
	return out
}

// moveCursor scrolls the table so row i is selected and visible.
func moveCursor(t *table.Model, i int) {
	cur := t.Cursor()
	switch {
	case i > cur:
		t.MoveDown(i - cur)
	case i < cur:
		t.MoveUp(cur - i)
	}
}
