package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/vokabel/internal/playback"
	"github.com/dgnsrekt/vokabel/internal/ttypes"
	"github.com/dgnsrekt/vokabel/internal/vocab"
)

var testList = vocab.List{
	{Word: "Hund (dog), der", Example: "Der Hund bellt.", Meaning: "dog"},
	{Word: "Katze", Example: "Die Katze schläft.", Meaning: "cat"},
	{Word: "Haus", Example: "Das Haus ist groß.", Meaning: "house"},
	{Word: "Baum", Example: "", Meaning: "tree"},
}

type spoken struct {
	text   string
	locale ttypes.Locale
}

type fakePlayer struct {
	mu      sync.Mutex
	calls   []string
	spoken  []spoken
	list    vocab.List
	status  playback.Status
	started []int
	closed  bool
}

func (p *fakePlayer) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePlayer) SetList(list vocab.List) {
	p.mu.Lock()
	p.list = list
	p.mu.Unlock()
	p.record("setlist")
}

func (p *fakePlayer) StartFrom(i int) {
	p.mu.Lock()
	p.started = append(p.started, i)
	p.mu.Unlock()
	p.record("start")
}

func (p *fakePlayer) Resume() { p.record("resume") }
func (p *fakePlayer) Stop()   { p.record("stop") }
func (p *fakePlayer) Reset()  { p.record("reset") }

func (p *fakePlayer) SpeakText(text string, locale ttypes.Locale) {
	p.mu.Lock()
	p.spoken = append(p.spoken, spoken{text, locale})
	p.mu.Unlock()
	p.record("speak")
}

func (p *fakePlayer) Status() playback.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakePlayer) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.record("close")
}

func (p *fakePlayer) lastCall() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	return p.calls[len(p.calls)-1]
}

type fakeRate struct {
	rate float64
	err  error
}

func (r *fakeRate) Rate() float64 { return r.rate }

func (r *fakeRate) SetRate(rate float64) error {
	if r.err != nil {
		return r.err
	}
	r.rate = rate
	return nil
}

type fakePrefetch struct {
	ahead  []int
	warmed []string
}

func (f *fakePrefetch) Ahead(_ vocab.List, i int) { f.ahead = append(f.ahead, i) }

func (f *fakePrefetch) Warm(text string, _ ttypes.Locale) { f.warmed = append(f.warmed, text) }

type fakeSaves struct{ at time.Time }

func (f fakeSaves) SavedAt() (time.Time, bool) { return f.at, !f.at.IsZero() }

func testConfig() Config {
	return Config{
		Source:           "words.csv",
		GlamourStyle:     "notty",
		GlamourEnabled:   false,
		HighlightEnabled: true,
	}
}

func staticLoad(list vocab.List, src vocab.Source, err error) LoadFunc {
	return func(context.Context, string) (vocab.List, vocab.Source, error) {
		return list, src, err
	}
}

// newLoadedModel returns a model sized 100x30 with testList loaded.
func newLoadedModel(t *testing.T, deps Deps) (model, *fakePlayer) {
	t.Helper()

	player := &fakePlayer{}
	deps.Player = player
	if deps.Events == nil {
		deps.Events = NewEvents()
	}
	m := newModel(testConfig(), deps)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, loadedMsg{list: testList, source: vocab.Source{Location: "words.csv"}})
	if m.state != stateReady {
		t.Fatalf("state = %v, want ready", m.state)
	}
	return m, player
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return mm
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestLoadedHandsListToPlayer(t *testing.T) {
	m, player := newLoadedModel(t, Deps{})

	if len(player.list) != len(testList) {
		t.Errorf("player list has %d entries, want %d", len(player.list), len(testList))
	}
	if n := len(m.table.Rows()); n != len(testList) {
		t.Errorf("table has %d rows, want %d", n, len(testList))
	}
	if got := m.table.Rows()[1][0]; got != "2" {
		t.Errorf("row number = %q, want 2", got)
	}
}

func TestKeysDriveController(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want string
	}{
		{"enter starts from row", []tea.KeyMsg{runes("j"), enterKey}, "start"},
		{"space resumes", []tea.KeyMsg{spaceKey}, "resume"},
		{"stop", []tea.KeyMsg{runes("s")}, "stop"},
		{"reset", []tea.KeyMsg{runes("x")}, "reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, player := newLoadedModel(t, Deps{})
			for _, k := range tt.keys {
				m = update(t, m, k)
			}
			if got := player.lastCall(); got != tt.want {
				t.Errorf("last call = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnterStartsFromCursor(t *testing.T) {
	m, player := newLoadedModel(t, Deps{})
	m = update(t, m, runes("j"))
	m = update(t, m, runes("j"))
	_ = update(t, m, enterKey)

	if len(player.started) != 1 || player.started[0] != 2 {
		t.Errorf("StartFrom calls = %v, want [2]", player.started)
	}
}

func TestSpeakCell(t *testing.T) {
	tests := []struct {
		key  string
		want spoken
	}{
		{"w", spoken{"Hund (dog), der", ttypes.LocaleGerman}},
		{"e", spoken{"Der Hund bellt.", ttypes.LocaleGerman}},
		{"m", spoken{"dog", ttypes.LocaleEnglish}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, player := newLoadedModel(t, Deps{})
			_ = update(t, m, runes(tt.key))
			if len(player.spoken) != 1 || player.spoken[0] != tt.want {
				t.Errorf("spoken = %v, want %v", player.spoken, tt.want)
			}
		})
	}
}

func TestSpeakEmptyCell(t *testing.T) {
	m, player := newLoadedModel(t, Deps{})
	m.table.SetCursor(3)
	_ = update(t, m, runes("e"))
	if len(player.spoken) != 0 {
		t.Errorf("spoke an empty example: %v", player.spoken)
	}
}

func TestKeysIgnoredWhileLoading(t *testing.T) {
	player := &fakePlayer{}
	m := newModel(testConfig(), Deps{Player: player, Events: NewEvents()})
	m = update(t, m, spaceKey)
	_ = update(t, m, enterKey)
	if len(player.calls) != 0 {
		t.Errorf("calls while loading: %v", player.calls)
	}
}

func TestPlaybackEventFollowsRow(t *testing.T) {
	pf := &fakePrefetch{}
	m, _ := newLoadedModel(t, Deps{Prefetch: pf})

	m = update(t, m, playbackMsg{{Status: playback.Status{State: playback.Speaking, Index: 2}}})
	if got := m.table.Cursor(); got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
	if len(pf.ahead) != 1 || pf.ahead[0] != 2 {
		t.Errorf("prefetch ahead = %v, want [2]", pf.ahead)
	}
	if !strings.Contains(m.noteText(), "Speaking 3 of 4: Haus") {
		t.Errorf("note = %q", m.noteText())
	}

	m = update(t, m, playbackMsg{{Status: playback.Status{State: playback.Stopped, Index: -1, Resumable: true}}})
	if m.status.State != playback.Stopped {
		t.Errorf("status = %v, want stopped", m.status)
	}
	if got := m.table.Cursor(); got != 2 {
		t.Errorf("cursor moved on stop: %d", got)
	}
}

func TestPlaybackErrorShowsMessage(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})

	m = update(t, m, playbackMsg{{Status: playback.Status{State: playback.Idle, Index: -1}, Err: errors.New("boom\ndetails")}})
	if !m.statusMessage.isError || m.statusMessage.text != "Speech failed: boom" {
		t.Errorf("status message = %+v", m.statusMessage)
	}

	m.statusMessage = statusMessage{}
	m = update(t, m, playbackMsg{{Status: playback.Status{State: playback.Idle, Index: -1}, Err: context.Canceled}})
	if m.statusMessage.text != "" {
		t.Errorf("canceled speech reported: %+v", m.statusMessage)
	}
}

func TestLoadFailure(t *testing.T) {
	player := &fakePlayer{}
	m := newModel(testConfig(), Deps{Player: player, Events: NewEvents()})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = update(t, m, loadFailedMsg{errors.New("HTTP status 404")})
	if m.state != stateLoadFailed {
		t.Fatalf("state = %v", m.state)
	}
	if m.statusMessage.text != "HTTP status 404" {
		t.Errorf("status message = %q", m.statusMessage.text)
	}

	m = update(t, m, statusMessageTimeoutMsg{id: m.statusID})
	if m.statusMessage.text != "" {
		t.Errorf("status message not dismissed: %q", m.statusMessage.text)
	}
	if !strings.Contains(m.View(), "HTTP status 404") {
		t.Error("error text missing from table area")
	}
	if len(player.calls) != 0 {
		t.Errorf("player used after failed load: %v", player.calls)
	}
}

func TestStaleStatusTimeoutIgnored(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})
	_ = m.showStatusMessage("first", false)
	old := m.statusID
	_ = m.showStatusMessage("second", false)

	m = update(t, m, statusMessageTimeoutMsg{id: old})
	if m.statusMessage.text != "second" {
		t.Errorf("status message = %q, want second", m.statusMessage.text)
	}
}

func TestReloadFailureKeepsList(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})
	m = update(t, m, loadFailedMsg{errors.New("gone")})
	if m.state != stateReady || len(m.list) != len(testList) {
		t.Errorf("reload failure dropped the list: state %v, %d entries", m.state, len(m.list))
	}
}

func TestSpeechCheckNotice(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})
	m = update(t, m, speechCheckMsg{errors.New("espeak-ng not found\ninstall it")})

	if m.statusMessage.text != "Speech unavailable: espeak-ng not found" {
		t.Errorf("status message = %q", m.statusMessage.text)
	}
	if !strings.Contains(m.noteText(), "speech unavailable") {
		t.Errorf("note = %q", m.noteText())
	}
}

func TestSearchJumps(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})

	m = update(t, m, runes("/"))
	if !m.search.active {
		t.Fatal("search not active")
	}
	m = update(t, m, runes("tree"))
	if got := m.table.Cursor(); got != 3 {
		t.Errorf("cursor = %d, want 3", got)
	}

	m = update(t, m, escKey)
	if m.search.active {
		t.Error("search still active after esc")
	}
	if got := m.table.Cursor(); got != 0 {
		t.Errorf("cursor after esc = %d, want 0", got)
	}

	m = update(t, m, runes("/"))
	m = update(t, m, runes("katz"))
	m = update(t, m, enterKey)
	if got := m.table.Cursor(); got != 1 {
		t.Errorf("cursor after enter = %d, want 1", got)
	}
}

func TestRateKeys(t *testing.T) {
	rate := &fakeRate{rate: 0.9}
	m, _ := newLoadedModel(t, Deps{Rate: rate})

	m = update(t, m, runes("+"))
	if rate.rate != 1.0 {
		t.Errorf("rate = %v, want 1", rate.rate)
	}
	m = update(t, m, runes("-"))
	m = update(t, m, runes("-"))
	if rate.rate != 0.75 {
		t.Errorf("rate = %v, want 0.75", rate.rate)
	}

	rate.err = errors.New("invalid rate")
	m = update(t, m, runes("+"))
	if !m.statusMessage.isError {
		t.Error("rate error not shown")
	}
}

func TestNavigationWarmsCursor(t *testing.T) {
	pf := &fakePrefetch{}
	m, _ := newLoadedModel(t, Deps{Prefetch: pf})

	_ = update(t, m, runes("j"))
	if len(pf.warmed) != 1 || pf.warmed[0] != "Katze" {
		t.Errorf("warmed = %v, want [Katze]", pf.warmed)
	}
}

func TestDetailView(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})

	_, cmd := m.Update(runes("i"))
	if cmd == nil {
		t.Fatal("no render command")
	}
	msg := cmd()
	rendered, ok := msg.(detailRenderedMsg)
	if !ok {
		t.Fatalf("render returned %T", msg)
	}
	if !strings.Contains(string(rendered), "Hund") {
		t.Errorf("detail = %q", rendered)
	}

	m = update(t, m, rendered)
	if !m.showDetail {
		t.Fatal("detail not shown")
	}
	if !strings.Contains(m.View(), "Der Hund bellt.") {
		t.Error("detail missing from view")
	}
	m = update(t, m, escKey)
	if m.showDetail {
		t.Error("detail still shown after esc")
	}
}

func TestStatusBarLabel(t *testing.T) {
	m, player := newLoadedModel(t, Deps{})
	if !strings.Contains(m.View(), playback.LabelReadAll) {
		t.Errorf("view lacks %q", playback.LabelReadAll)
	}

	player.status = playback.Status{State: playback.Stopped, Index: -1, Resumable: true}
	m = update(t, m, playbackMsg{{Status: player.status}})
	if !strings.Contains(m.View(), playback.LabelContinue) {
		t.Errorf("view lacks %q", playback.LabelContinue)
	}
}

func TestSavedNote(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{Progress: fakeSaves{at: time.Now().Add(-3 * time.Minute)}})
	m = update(t, m, playbackMsg{{Status: playback.Status{State: playback.Idle, Index: -1, Resumable: true}}})

	if got := m.noteText(); !strings.Contains(got, "saved 3 minutes ago") {
		t.Errorf("note = %q", got)
	}
}

func TestQuitClosesPlayer(t *testing.T) {
	m, player := newLoadedModel(t, Deps{})

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not quit")
	}
	if !player.closed {
		t.Error("player not closed")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})
	before := m.bodyHeight()

	m = update(t, m, runes("?"))
	if !m.showHelp {
		t.Fatal("help not shown")
	}
	if m.bodyHeight() >= before {
		t.Errorf("body height %d not reduced from %d", m.bodyHeight(), before)
	}
	if !strings.Contains(m.View(), "read from row") {
		t.Error("help view missing bindings")
	}
}

func TestInitLoads(t *testing.T) {
	player := &fakePlayer{}
	m := newModel(testConfig(), Deps{
		Player: player,
		Events: NewEvents(),
		Load:   staticLoad(testList, vocab.Source{Location: "words.csv"}, nil),
	})

	msg := m.loadCmd()()
	loaded, ok := msg.(loadedMsg)
	if !ok {
		t.Fatalf("loadCmd returned %T", msg)
	}
	if len(loaded.list) != len(testList) {
		t.Errorf("loaded %d entries", len(loaded.list))
	}

	m.deps.Load = staticLoad(nil, vocab.Source{}, vocab.ErrLoadFailure)
	if _, ok := m.loadCmd()().(loadFailedMsg); !ok {
		t.Error("failed load did not produce loadFailedMsg")
	}
}

func TestReloadStdin(t *testing.T) {
	m, _ := newLoadedModel(t, Deps{})
	m.source = vocab.Source{Location: "-"}
	m = update(t, m, runes("r"))
	if !m.statusMessage.isError {
		t.Error("stdin reload not refused")
	}
}
