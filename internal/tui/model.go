// Package tui provides the Bubble Tea ball screen.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/accball/internal/model"
	"github.com/verte-zerg/accball/internal/motion"
	"github.com/verte-zerg/accball/internal/render"
	"github.com/verte-zerg/accball/internal/source"
	"github.com/verte-zerg/accball/internal/store"
)

// Rows below the canvas: footer and short help.
const chromeRows = 2

// rebaseliner is implemented by sources that replay recorded baseline resets.
type rebaseliner interface {
	Rebaseline() bool
}

type tickMsg struct {
	gen int
	at  time.Time
}

// Model implements the Bubble Tea ball screen.
type Model struct {
	config     model.Config
	store      *store.Store
	source     source.Source
	tilter     source.Tilter
	integrator *motion.Integrator
	canvas     *render.Canvas
	keys       keyMap
	help       help.Model

	width  int
	height int

	clockStart  time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	tickGen     int
	paused      bool
	finished    bool

	startedAt time.Time
	recorded  []motion.Sample
	resets    []int
	savedID   int64
}

var (
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	recStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// NewModel constructs the ball screen. st may be nil when cfg.Record is false.
func NewModel(cfg model.Config, src source.Source, st *store.Store) *Model {
	canvas := render.NewCanvas(0, 0)
	tilter, _ := src.(source.Tilter)
	now := time.Now()
	return &Model{
		config:     cfg,
		store:      st,
		source:     src,
		tilter:     tilter,
		integrator: motion.NewIntegrator(canvas),
		canvas:     canvas,
		keys:       newKeyMap(tilter != nil),
		help:       help.New(),
		clockStart: now,
		startedAt:  now,
	}
}

// SavedTraceID returns the id of the trace saved on quit, or 0.
func (m *Model) SavedTraceID() int64 {
	return m.savedID
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		if msg.gen != m.tickGen || m.paused || m.finished {
			return m, nil
		}
		m.handleTick(msg.at)
		if m.finished {
			return m, nil
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	_, rows := m.canvas.Size()
	var body string
	switch {
	case m.help.ShowAll:
		body = lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, m.help.View(m.keys))
	case m.tooSmall():
		body = lipgloss.Place(m.width, rows, lipgloss.Center, lipgloss.Center, noticeStyle.Render("terminal too small"))
	default:
		body = m.canvas.Render()
	}
	if m.height < chromeRows+1 {
		return body
	}
	footer := lipgloss.Place(m.width, 1, lipgloss.Left, lipgloss.Center, m.renderFooter())
	helpLine := lipgloss.Place(m.width, 1, lipgloss.Left, lipgloss.Center, m.help.ShortHelpView(m.keys.ShortHelp()))
	return body + "\n" + footer + "\n" + helpLine
}

func (m *Model) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(m.interval(), func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m *Model) interval() time.Duration {
	rate := m.config.RateHz
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

// clock converts wall time into a monotonic sample timestamp that excludes
// paused time and is never zero.
func (m *Model) clock(at time.Time) int64 {
	return int64(at.Sub(m.clockStart)-m.pausedTotal) + 1
}

func (m *Model) handleTick(at time.Time) {
	s, ok := m.source.Next(m.clock(at))
	if !ok {
		m.finished = true
		return
	}
	if r, ok := m.source.(rebaseliner); ok && r.Rebaseline() {
		m.recenter()
	}
	if m.config.Record {
		m.recorded = append(m.recorded, s)
	}
	m.integrator.OnSample(s)
}

// recenter clears the surface and returns the ball to its baseline.
func (m *Model) recenter() {
	m.canvas.Clear()
	m.integrator.ViewportChanged(m.canvas.Viewport())
	m.markReset()
}

// markReset notes that the next recorded sample starts a new baseline.
func (m *Model) markReset() {
	if !m.config.Record || len(m.recorded) == 0 {
		return
	}
	next := len(m.recorded)
	if n := len(m.resets); n > 0 && m.resets[n-1] == next {
		return
	}
	m.resets = append(m.resets, next)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	rows := height - chromeRows
	if rows < 0 {
		rows = 0
	}
	m.canvas.Resize(width, rows)
	m.help.Width = width
	m.integrator.ViewportChanged(m.canvas.Viewport())
	m.markReset()
}

func (m *Model) tooSmall() bool {
	vp := m.canvas.Viewport()
	return vp.Width < 2*motion.Radius || vp.Height < 2*motion.Radius
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.saveRecording()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		return m, m.togglePause()
	case key.Matches(msg, m.keys.Recenter):
		m.recenter()
	case key.Matches(msg, m.keys.Up):
		m.tilter.Nudge(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.tilter.Nudge(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.tilter.Nudge(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.tilter.Nudge(1, 0)
	case key.Matches(msg, m.keys.Level):
		m.tilter.Level()
	}
	return m, nil
}

func (m *Model) togglePause() tea.Cmd {
	if m.finished {
		return nil
	}
	now := time.Now()
	if !m.paused {
		m.paused = true
		m.pausedAt = now
		return nil
	}
	m.paused = false
	m.pausedTotal += now.Sub(m.pausedAt)
	m.tickGen++
	return m.tick()
}

func (m *Model) saveRecording() {
	if !m.config.Record || m.store == nil || len(m.recorded) == 0 || m.savedID != 0 {
		return
	}
	vp, _ := m.integrator.Viewport()
	trace := model.Trace{
		StartedAt: m.startedAt,
		EndedAt:   time.Now(),
		Source:    m.source.Name(),
		Width:     vp.Width,
		Height:    vp.Height,
		Resets:    m.resets,
	}
	id, err := m.store.InsertTrace(context.Background(), trace, m.recorded)
	if err != nil {
		logErrf("failed to save trace: %v\n", err)
		return
	}
	m.savedID = id
}

func (m *Model) renderFooter() string {
	st := m.integrator.State()
	segments := []string{m.source.Name()}
	if m.tilter != nil {
		gx, gy := m.tilter.Gravity()
		segments = append(segments, fmt.Sprintf("g %+.1f,%+.1f", gx, gy))
	}
	segments = append(segments,
		fmt.Sprintf("pos %.0f,%.0f", st.X, st.Y),
		fmt.Sprintf("vel %+.2f,%+.2f", st.VX, st.VY),
		fmt.Sprintf("rebounds %d", m.integrator.Rebounds()),
	)
	if r, ok := m.source.(*source.Replay); ok {
		done, total := r.Progress()
		segments = append(segments, fmt.Sprintf("replay %d/%d", done, total))
	}
	if m.finished {
		segments = append(segments, "replay finished")
	}
	if m.paused {
		segments = append(segments, "paused")
	}
	footer := strings.Join(segments, "  ")
	rec := ""
	if m.config.Record {
		rec = fmt.Sprintf("  REC %d", len(m.recorded))
	}
	if m.width > 0 {
		footer = runewidth.Truncate(footer, m.width-runewidth.StringWidth(rec), "…")
	}
	out := footerStyle.Render(footer)
	if rec != "" {
		out += recStyle.Render(rec)
	}
	return out
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
