package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/muesli/reflow/ansi"
)

type keyMap struct {
	Start   key.Binding
	Resume  key.Binding
	Stop    key.Binding
	Reset   key.Binding
	Word    key.Binding
	Example key.Binding
	Meaning key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Search  key.Binding
	Detail  key.Binding
	Copy    key.Binding
	Edit    key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read from row")),
		Resume:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "read all / continue")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Reset:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset progress")),
		Word:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "say word")),
		Example: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "say example")),
		Meaning: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "say meaning")),
		Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump to word")),
		Detail:  key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "entry details")),
		Copy:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy entry")),
		Edit:    key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit source")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "close help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Resume, k.Stop, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Resume, k.Stop, k.Reset, k.Faster, k.Slower},
		{k.Word, k.Example, k.Meaning, k.Search, k.Detail},
		{k.Copy, k.Edit, k.Reload, k.Help, k.Quit},
	}
}

func (m model) helpView() string {
	s := "\n" + m.help.FullHelpView(m.keys.FullHelp()) + "\n"
	if name := m.common.cfg.EngineName; name != "" {
		s += "\nspeech engine: " + name + "\n"
	}
	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := ansi.PrintableRuneWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}
