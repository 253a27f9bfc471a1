// Package traceui provides the Bubble Tea trace browser.
package traceui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/accball/internal/model"
	"github.com/verte-zerg/accball/internal/motion"
	"github.com/verte-zerg/accball/internal/stats"
	"github.com/verte-zerg/accball/internal/store"
)

const (
	tabTraces = iota
	tabReport
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea trace browser.
type Model struct {
	store    *store.Store
	filter   model.TraceFilter
	viewport motion.Viewport

	traces   []model.Trace
	selected int64
	errMsg   string

	tabs      []string
	activeTab int
	table     table.Model
	report    viewport.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a trace browser. vp is the surface traces are
// analyzed against; the zero Viewport uses each trace's recorded size.
func NewModel(st *store.Store, filter model.TraceFilter, vp motion.Viewport) *Model {
	m := &Model{
		store:    st,
		filter:   filter,
		viewport: vp,
		tabs:     []string{"Traces", "Report"},
		table:    buildTraceTable(0, 1),
		report:   viewport.New(0, 0),
	}
	m.initInputs()
	m.refreshTraces()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderReport()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabTraces {
				m.openSelected()
			}
			return m, nil
		case "x":
			if m.activeTab == tabTraces {
				m.deleteSelected()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabTraces {
				m.table.GotoTop()
			} else {
				m.report.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabTraces {
				m.table.GotoBottom()
			} else {
				m.report.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabTraces {
				m.table, cmd = m.table.Update(msg)
			} else {
				m.report, cmd = m.report.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Selected returns the id of the trace shown in the report tab, or 0.
func (m *Model) Selected() int64 {
	return m.selected
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Source: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
	}
	m.setInputsFromFilter()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromFilter() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.filter.Source))
	if m.filter.Since != nil {
		m.filterInputs[1].SetValue(m.filter.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.filter.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.filter.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.report.Width = m.width
	m.report.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	next := m.activeTab + delta
	if next < 0 {
		next = len(m.tabs) - 1
	}
	if next >= len(m.tabs) {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabTraces {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	src := m.filter.Source
	if src == "" {
		src = "any"
	}
	since := "any"
	if m.filter.Since != nil {
		since = m.filter.Since.Format("2006-01-02")
	}
	last := "all"
	if m.filter.Last > 0 {
		last = strconv.Itoa(m.filter.Last)
	}
	surface := "recorded"
	if m.viewport != (motion.Viewport{}) {
		surface = fmt.Sprintf("%.0fx%.0f", m.viewport.Width, m.viewport.Height)
	}
	summary := fmt.Sprintf("Filter: source=%s  since=%s  last=%s  viewport=%s", src, since, last, surface)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Open: enter  Delete: x  Filter: /  Quit: q"
	if m.activeTab == tabReport {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Filter: /  Quit: q"
	}
	out := headerStyle.Render(help)
	if m.errMsg != "" {
		out += "\n" + errorStyle.Render(m.errMsg)
	}
	return out
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filter (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab == tabReport {
		return m.report.View()
	}
	if len(m.traces) == 0 {
		return "No traces found."
	}
	return tableMutedStyle.Render(m.table.View())
}

func (m *Model) refreshTraces() {
	traces, err := m.store.ListTraces(context.Background(), m.filter)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.traces = traces
	m.table.SetRows(traceRows(traces))
	m.table.GotoBottom()
}

func (m *Model) selectedTrace() (model.Trace, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.traces) {
		return model.Trace{}, false
	}
	return m.traces[idx], true
}

func (m *Model) openSelected() {
	tr, ok := m.selectedTrace()
	if !ok {
		return
	}
	m.selected = tr.ID
	m.renderReport()
	m.report.GotoTop()
	m.activeTab = tabReport
	m.table.Blur()
}

func (m *Model) deleteSelected() {
	tr, ok := m.selectedTrace()
	if !ok {
		return
	}
	if err := m.store.DeleteTrace(context.Background(), tr.ID); err != nil {
		m.errMsg = err.Error()
		return
	}
	if m.selected == tr.ID {
		m.selected = 0
		m.report.SetContent("")
	}
	m.refreshTraces()
}

func (m *Model) renderReport() {
	if m.selected == 0 {
		m.report.SetContent("Select a trace and press enter.")
		return
	}
	report, err := stats.BuildReport(context.Background(), m.store, m.selected, m.viewport)
	if err != nil {
		m.report.SetContent(fmt.Sprintf("Failed to load trace: %v", err))
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if err := stats.RenderReport(&buf, report, width); err != nil {
		m.report.SetContent(fmt.Sprintf("Failed to render report: %v", err))
		return
	}
	m.report.SetContent(strings.TrimRight(buf.String(), "\n"))
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromFilter()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshTraces()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	src := strings.TrimSpace(m.filterInputs[0].Value())
	sinceInput := strings.TrimSpace(m.filterInputs[1].Value())
	var since *time.Time
	if sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}
	lastInput := strings.TrimSpace(m.filterInputs[2].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}
	m.filter = model.TraceFilter{Source: src, Since: since, Last: last}
	return nil
}

func buildTraceTable(width, height int) table.Model {
	t := table.New(
		table.WithColumns(traceColumns()),
		table.WithHeight(maxInt(1, height-1)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(traceTableStyles())
	return t
}

func traceColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Started", Width: 19},
		{Title: "Source", Width: 8},
		{Title: "Samples", Width: 8},
		{Title: "Duration", Width: 9},
		{Title: "Viewport", Width: 10},
	}
}

func traceRows(traces []model.Trace) []table.Row {
	rows := make([]table.Row, 0, len(traces))
	for _, tr := range traces {
		rows = append(rows, table.Row{
			strconv.FormatInt(tr.ID, 10),
			tr.StartedAt.Local().Format("2006-01-02 15:04:05"),
			tr.Source,
			strconv.Itoa(tr.Samples),
			fmt.Sprintf("%.1fs", tr.Duration().Seconds()),
			fmt.Sprintf("%.0fx%.0f", tr.Width, tr.Height),
		})
	}
	return rows
}

func traceTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
