package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vokabel/internal/vocab"
)

type detailRenderedMsg string

// entryMarkdown describes entry i as a small markdown document.
func entryMarkdown(i int, e vocab.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %d. %s\n\n", i+1, e.Word)
	if e.Example != "" {
		fmt.Fprintf(&b, "> %s\n\n", e.Example)
	}
	if e.Meaning != "" {
		fmt.Fprintf(&b, "**Meaning:** %s\n\n", e.Meaning)
	}
	if spoken := vocab.Normalize(e.Word); spoken != "" && spoken != e.Word {
		fmt.Fprintf(&b, "Spoken as `%s`.\n", spoken)
	}
	return b.String()
}

func renderDetail(cfg Config, width int, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(cfg, width, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return detailRenderedMsg(s)
	}
}

func glamourRender(cfg Config, width int, markdown string) (string, error) {
	if !cfg.GlamourEnabled {
		return markdown, nil
	}

	if cfg.GlamourMaxWidth > 0 {
		width = min(int(cfg.GlamourMaxWidth), width) //nolint:gosec
	}
	width = max(0, width)

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return out, nil
}
