// Package ui provides the vocabulary table TUI.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/dgnsrekt/vokabel/internal/playback"
	"github.com/dgnsrekt/vokabel/internal/tts"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
	"github.com/dgnsrekt/vokabel/internal/vocab"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	loadTimeout          = time.Second * 30
	searchBarHeight      = 1
	ellipsis             = "…"
)

// Player is the playback surface driven by the table.
type Player interface {
	SetList(list vocab.List)
	StartFrom(i int)
	Resume()
	Stop()
	Reset()
	SpeakText(text string, locale ttypes.Locale)
	Status() playback.Status
	Close()
}

// RateControl adjusts the speaking rate.
type RateControl interface {
	Rate() float64
	SetRate(rate float64) error
}

// SaveTimes reports when progress was last saved.
type SaveTimes interface {
	SavedAt() (time.Time, bool)
}

// Prefetcher synthesizes utterances before they are needed.
type Prefetcher interface {
	Ahead(list vocab.List, i int)
	Warm(text string, locale ttypes.Locale)
}

// LoadFunc reads a vocabulary source.
type LoadFunc func(ctx context.Context, location string) (vocab.List, vocab.Source, error)

// Deps are the collaborators of the TUI. Player and Events are required.
type Deps struct {
	Player Player

	// Events must be the queue the player reports to.
	Events *Events

	Rate     RateControl
	Progress SaveTimes
	Prefetch Prefetcher

	// CheckSpeech reports whether the speech engine can run. A failure is
	// shown once and the table stays usable.
	CheckSpeech func() error

	// Load defaults to vocab.Load.
	Load LoadFunc
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug(
		"Starting vokabel",
		"source", cfg.Source,
		"watch", cfg.Watch,
		"glamour", cfg.GlamourEnabled,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if cfg.Source == "-" {
		// stdin carries the list, keys come from the terminal
		opts = append(opts, tea.WithInputTTY())
	}
	return tea.NewProgram(newModel(cfg, deps), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	loadedMsg struct {
		list   vocab.List
		source vocab.Source
	}
	loadFailedMsg           struct{ err error }
	speechCheckMsg          struct{ err error }
	statusMessageTimeoutMsg struct{ id int }
)

// state is the top-level application state.
type state int

const (
	stateLoading state = iota
	stateReady
	stateLoadFailed
)

func (s state) String() string {
	return map[state]string{
		stateLoading:    "loading vocabulary",
		stateReady:      "showing vocabulary",
		stateLoadFailed: "load failed",
	}[s]
}

type statusMessage struct {
	text    string
	isError bool
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	width  int
	height int
}

type model struct {
	common *commonModel
	deps   Deps
	state  state

	list    vocab.List
	source  vocab.Source
	loadErr error

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	search  searchModel

	detail     string
	showDetail bool
	showHelp   bool

	status playback.Status

	statusMessage statusMessage
	statusID      int
	speechErr     error

	watcher *watcher
}

func newModel(cfg Config, deps Deps) model {
	if cfg.GlamourStyle == "" {
		cfg.GlamourStyle = styles.AutoStyle
	}
	if cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}
	if deps.Load == nil {
		deps.Load = vocab.Load
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(green)),
	)

	return model{
		common:  &commonModel{cfg: cfg},
		deps:    deps,
		state:   stateLoading,
		table:   newTable(),
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
		search:  newSearchModel(),
		status:  deps.Player.Status(),
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.loadCmd(),
		waitForEvents(m.deps.Events),
	}
	if m.deps.CheckSpeech != nil {
		cmds = append(cmds, checkSpeech(m.deps.CheckSpeech))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.state == stateReady && !m.showDetail && msg.Action == tea.MouseActionPress {
			switch msg.Button { //nolint:exhaustive
			case tea.MouseButtonWheelUp:
				m.table.MoveUp(1)
			case tea.MouseButtonWheelDown:
				m.table.MoveDown(1)
			}
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if m.state == stateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case loadedMsg:
		return m, m.loaded(msg)

	case loadFailedMsg:
		if m.state == stateReady {
			log.Warn("reload failed", "source", m.common.cfg.Source, "error", msg.err)
			return m, m.showStatusMessage("Reload failed: "+msg.err.Error(), true)
		}
		log.Error("unable to load vocabulary", "source", m.common.cfg.Source, "error", msg.err)
		m.state = stateLoadFailed
		m.loadErr = msg.err
		return m, m.showStatusMessage(msg.err.Error(), true)

	case playbackMsg:
		var cmds []tea.Cmd
		for _, ev := range msg {
			if cmd := m.applyEvent(ev); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		cmds = append(cmds, waitForEvents(m.deps.Events))
		return m, tea.Batch(cmds...)

	case speechCheckMsg:
		if msg.err == nil {
			return m, nil
		}
		log.Warn("speech unavailable", "error", msg.err)
		m.speechErr = msg.err
		return m, m.showStatusMessage("Speech unavailable: "+firstLine(msg.err.Error()), true)

	case detailRenderedMsg:
		m.detail = string(msg)
		m.showDetail = true

	case reloadMsg:
		cmds := []tea.Cmd{m.loadCmd()}
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.wait)
		}
		return m, tea.Batch(cmds...)

	case editorFinishedMsg:
		if msg.err != nil {
			log.Error("editor finished with error", "error", msg.err)
			return m, m.showStatusMessage("Editor failed: "+msg.err.Error(), true)
		}
		if m.watcher == nil {
			return m, m.loadCmd()
		}

	case statusMessageTimeoutMsg:
		if msg.id == m.statusID {
			m.statusMessage = statusMessage{}
		}

	case errMsg:
		return m, m.showStatusMessage(msg.Error(), true)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.active {
		return m.updateSearch(msg)
	}

	switch {
	case msg.String() == "ctrl+z":
		return m, tea.Suspend
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.setSize(m.common.width, m.common.height)
		return m, nil
	}

	if m.showDetail {
		if msg.String() == "esc" || key.Matches(msg, m.keys.Detail) {
			m.showDetail = false
			m.detail = ""
		}
		return m, nil
	}

	if m.state == stateLoadFailed && key.Matches(msg, m.keys.Reload) {
		m.state = stateLoading
		m.loadErr = nil
		return m, tea.Batch(m.spinner.Tick, m.loadCmd())
	}
	if m.state != stateReady {
		return m, nil
	}

	player := m.deps.Player
	cursor := m.table.Cursor()

	switch {
	case key.Matches(msg, m.keys.Start):
		player.StartFrom(cursor)
	case key.Matches(msg, m.keys.Resume):
		player.Resume()
	case key.Matches(msg, m.keys.Stop):
		player.Stop()
	case key.Matches(msg, m.keys.Reset):
		player.Reset()

	case key.Matches(msg, m.keys.Word):
		m.speakCell(func(e vocab.Entry) string { return e.Word }, ttypes.LocaleGerman)
	case key.Matches(msg, m.keys.Example):
		m.speakCell(func(e vocab.Entry) string { return e.Example }, ttypes.LocaleGerman)
	case key.Matches(msg, m.keys.Meaning):
		m.speakCell(func(e vocab.Entry) string { return e.Meaning }, ttypes.LocaleEnglish)

	case key.Matches(msg, m.keys.Faster):
		return m, m.changeRate(tts.FasterRate)
	case key.Matches(msg, m.keys.Slower):
		return m, m.changeRate(tts.SlowerRate)

	case key.Matches(msg, m.keys.Search):
		cmd := m.search.open(cursor)
		m.setSize(m.common.width, m.common.height)
		return m, cmd

	case key.Matches(msg, m.keys.Detail):
		if e, ok := m.list.At(cursor); ok {
			return m, renderDetail(m.common.cfg, m.common.width, entryMarkdown(cursor, e))
		}

	case key.Matches(msg, m.keys.Copy):
		e, ok := m.list.At(cursor)
		if !ok {
			return m, nil
		}
		text := strings.Join([]string{e.Word, e.Example, e.Meaning}, vocab.Separator+" ")
		// Copy using OSC 52
		te.Copy(text)
		// Copy using native system clipboard
		_ = clipboard.WriteAll(text)
		return m, m.showStatusMessage("Copied "+e.Word, false)

	case key.Matches(msg, m.keys.Edit):
		if !m.source.IsLocal() {
			return m, m.showStatusMessage("Only local files can be edited", true)
		}
		log.Info("opening editor", "file", m.source.Path, "line", cursor+1)
		return m, openEditor(m.source.Path, cursor+1)

	case key.Matches(msg, m.keys.Reload):
		if m.source.Location == "-" {
			return m, m.showStatusMessage("Standard input cannot be reloaded", true)
		}
		return m, m.loadCmd()

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		if m.table.Cursor() != cursor {
			m.warmCursor()
		}
		return m, cmd
	}

	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		moveCursor(&m.table, m.search.origin)
		m.search.close()
		m.setSize(m.common.width, m.common.height)
		return m, nil
	case "enter":
		m.search.close()
		m.setSize(m.common.width, m.common.height)
		m.warmCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.search.input, cmd = m.search.input.Update(msg)
	if i, ok := bestMatch(m.list, m.search.input.Value()); ok {
		moveCursor(&m.table, i)
	}
	return m, cmd
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.watcher != nil {
		m.watcher.close()
	}
	player := m.deps.Player
	return m, func() tea.Msg {
		player.Close()
		return tea.QuitMsg{}
	}
}

func (m *model) loaded(msg loadedMsg) tea.Cmd {
	reload := m.state == stateReady

	m.state = stateReady
	m.list = msg.list
	m.source = msg.source
	m.loadErr = nil
	m.showDetail = false

	m.table.SetRows(rows(m.list))
	m.table.SetCursor(m.table.Cursor())
	m.setSize(m.common.width, m.common.height)

	m.deps.Player.SetList(m.list)

	var cmds []tea.Cmd
	if reload {
		cmds = append(cmds, m.showStatusMessage(fmt.Sprintf("Reloaded %d entries", len(m.list)), false))
	}
	if m.common.cfg.Watch && m.source.IsLocal() && m.watcher == nil {
		w, err := newWatcher(m.source.Path)
		if err != nil {
			log.Error("error creating fsnotify watcher", "error", err)
			cmds = append(cmds, m.showStatusMessage("Cannot watch "+m.source.Path, true))
		} else {
			m.watcher = w
			cmds = append(cmds, w.wait)
		}
	}
	return tea.Batch(cmds...)
}

// applyEvent mirrors a controller transition. The cursor follows the
// speaking row and doubles as its highlight.
func (m *model) applyEvent(ev playback.Event) tea.Cmd {
	m.status = ev.Status
	speaking := ev.Status.State == playback.Speaking && ev.Status.Index >= 0

	m.table.SetStyles(tableStyles(speaking && m.common.cfg.HighlightEnabled))
	if speaking {
		moveCursor(&m.table, ev.Status.Index)
		if m.deps.Prefetch != nil {
			m.deps.Prefetch.Ahead(m.list, ev.Status.Index)
		}
	}

	if ev.Err != nil && !errors.Is(ev.Err, context.Canceled) {
		return m.showStatusMessage("Speech failed: "+firstLine(ev.Err.Error()), true)
	}
	return nil
}

func (m *model) speakCell(field func(vocab.Entry) string, locale ttypes.Locale) {
	e, ok := m.list.At(m.table.Cursor())
	if !ok {
		return
	}
	if text := field(e); strings.TrimSpace(text) != "" {
		m.deps.Player.SpeakText(text, locale)
	}
}

// warmCursor prepares the word under the cursor so reading it starts
// without a synthesis delay.
func (m *model) warmCursor() {
	if m.deps.Prefetch == nil {
		return
	}
	if e, ok := m.list.At(m.table.Cursor()); ok {
		m.deps.Prefetch.Warm(vocab.Normalize(e.Word), ttypes.LocaleGerman)
	}
}

func (m *model) changeRate(next func(float64) float64) tea.Cmd {
	if m.deps.Rate == nil {
		return nil
	}
	rate := next(m.deps.Rate.Rate())
	if err := m.deps.Rate.SetRate(rate); err != nil {
		return m.showStatusMessage(err.Error(), true)
	}
	return m.showStatusMessage(fmt.Sprintf("Speaking rate %g×", rate), false)
}

func (m *model) showStatusMessage(text string, isError bool) tea.Cmd {
	m.statusID++
	m.statusMessage = statusMessage{text: text, isError: isError}

	id := m.statusID
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{id: id}
	})
}

func (m *model) setSize(w, h int) {
	m.common.width = w
	m.common.height = h
	m.help.Width = w
	m.search.input.Width = max(w-len(m.search.input.Prompt)-2, 1)

	m.table.SetColumns(columns(w, len(m.list)))
	m.table.SetWidth(w)
	m.table.SetHeight(m.bodyHeight())
}

func (m model) bodyHeight() int {
	h := m.common.height - statusBarHeight
	if m.search.active {
		h -= searchBarHeight
	}
	if m.showHelp {
		h -= lipgloss.Height(m.helpView())
	}
	return max(h, 1)
}

func (m model) View() string {
	var b strings.Builder

	h := m.bodyHeight()
	body := lipgloss.NewStyle().Height(h).MaxHeight(h).Render(m.bodyView())
	fmt.Fprint(&b, body+"\n")

	if m.search.active {
		fmt.Fprint(&b, " "+m.search.input.View()+"\n")
	}

	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

func (m model) bodyView() string {
	switch {
	case m.state == stateLoading:
		return "\n  " + m.spinner.View() + " Loading vocabulary" + ellipsis
	case m.state == stateLoadFailed:
		return "\n  " + errorTitleStyle("Error") + " " + m.loadErr.Error() +
			"\n\n  " + subtleStyle("r to retry, q to quit")
	case m.showDetail:
		return m.detail
	default:
		return m.table.View()
	}
}

// COMMANDS

func (m model) loadCmd() tea.Cmd {
	load := m.deps.Load
	location := m.common.cfg.Source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		list, src, err := load(ctx, location)
		if err != nil {
			return loadFailedMsg{err}
		}
		return loadedMsg{list: list, source: src}
	}
}

func checkSpeech(check func() error) tea.Cmd {
	return func() tea.Msg {
		return speechCheckMsg{check()}
	}
}

// ETC

func sourceName(src vocab.Source) string {
	if src.IsLocal() {
		return filepath.Base(src.Path)
	}
	if src.Location == "-" {
		return "stdin"
	}
	return src.Location
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
