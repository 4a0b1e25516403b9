package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/vokabel/internal/vocab"
)

// searchSource matches against the word and the meaning of each entry.
type searchSource vocab.List

func (s searchSource) String(i int) string { return s[i].Word + " " + s[i].Meaning }

func (s searchSource) Len() int { return len(s) }

// bestMatch returns the index of the entry that best matches query.
func bestMatch(list vocab.List, query string) (int, bool) {
	if query == "" || len(list) == 0 {
		return 0, false
	}
	matches := fuzzy.FindFrom(query, searchSource(list))
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Index, true
}

type searchModel struct {
	input  textinput.Model
	active bool

	// origin is the cursor to return to when the search is canceled.
	origin int
}

func newSearchModel() searchModel {
	ti := textinput.New()
	ti.Prompt = "Jump to: "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(gray)
	ti.CharLimit = 64
	return searchModel{input: ti}
}

func (s *searchModel) open(cursor int) tea.Cmd {
	s.active = true
	s.origin = cursor
	s.input.Reset()
	return s.input.Focus()
}

func (s *searchModel) close() {
	s.active = false
	s.input.Blur()
}
