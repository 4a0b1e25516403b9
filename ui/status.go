package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/vokabel/internal/playback"
)

const statusBarHeight = 1

func (m model) statusBarView(b *strings.Builder) {
	msg := m.statusMessage
	showStatusMessage := msg.text != ""

	noteStyle := statusBarNoteStyle
	switch {
	case showStatusMessage && msg.isError:
		noteStyle = statusBarErrorStyle
	case showStatusMessage:
		noteStyle = statusBarMessageStyle
	}

	logo := logoStyle(" Vokabel ")

	// Row position
	var position string
	if m.state == stateReady && len(m.list) > 0 {
		position = fmt.Sprintf(" %d/%d ", m.table.Cursor()+1, len(m.list))
	}
	position = statusBarPositionStyle(position)

	// Read all / continue
	var button string
	if m.state == stateReady {
		button = statusBarButtonStyle(" space " + m.status.Label() + " ")
	}

	helpNote := statusBarHelpStyle(" ? Help ")

	note := msg.text
	if !showStatusMessage {
		note = m.noteText()
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(button)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	note = noteStyle(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(button)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := noteStyle(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		position,
		button,
		helpNote,
	)
}

func (m model) noteText() string {
	switch m.state {
	case stateLoading:
		return "Loading " + m.common.cfg.Source
	case stateLoadFailed:
		return "Could not load vocabulary"
	}

	var note string
	switch m.status.State {
	case playback.Speaking:
		note = fmt.Sprintf("Speaking %d of %d", m.status.Index+1, len(m.list))
		if e, ok := m.list.At(m.status.Index); ok {
			note += ": " + e.Word
		}
	case playback.Stopped:
		note = "Stopped"
	default:
		note = sourceName(m.source)
	}

	if m.status.State != playback.Speaking && m.status.Resumable {
		if saved := m.savedNote(); saved != "" {
			note += " · " + saved
		}
	}
	if m.speechErr != nil {
		note += " · speech unavailable"
	}
	return note
}

func (m model) savedNote() string {
	if m.deps.Progress == nil {
		return ""
	}
	t, ok := m.deps.Progress.SavedAt()
	if !ok {
		return ""
	}
	return "saved " + humanize.Time(t)
}
