package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/slotplayer/internal/core"
	"github.com/tessro/slotplayer/internal/tail"
	"github.com/tessro/slotplayer/internal/tui/components"
	"github.com/tessro/slotplayer/internal/tui/styles"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelSlots
	PanelActivity
	PanelLog
)

const (
	maxActivity        = 50
	defaultRefreshRate = 100 * time.Millisecond
)

// LineSource provides buffered log lines.
type LineSource interface {
	Lines() []string
}

// Options configures the monitor.
type Options struct {
	// Latest is read on every refresh. Required.
	Latest *core.LatestSnapshot
	// Keys receives the player shortcuts. Sends never block.
	Keys chan<- core.Key
	// Events feeds the activity panel.
	Events <-chan tail.Event
	// Logs feeds the log panel.
	Logs LineSource
	// Header is shown in the status bar, e.g. the listening port.
	Header string
	// Theme is "auto", "dark" or "light".
	Theme       string
	RefreshRate time.Duration
}

// Model is the main TUI model
type Model struct {
	opts         Options
	width        int
	height       int
	focusedPanel Panel

	// State
	snap     *core.Snapshot
	activity []tail.Event
	logs     []string

	// Components
	nowPlaying   *components.NowPlaying
	slotsView    *components.Slots
	activityView *components.Activity
	logsView     *components.Logs

	// Overlays
	showHelp    bool
	showFilter  bool
	filterInput textinput.Model

	// Status line after a shortcut
	notice       string
	noticeExpiry time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	if opts.RefreshRate <= 0 {
		opts.RefreshRate = defaultRefreshRate
	}

	ti := textinput.New()
	ti.Placeholder = "Filter slots by file name..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		opts:         opts,
		focusedPanel: PanelNowPlaying,
		nowPlaying:   components.NewNowPlaying(),
		slotsView:    components.NewSlots(),
		activityView: components.NewActivity(),
		logsView:     components.NewLogs(),
		filterInput:  ti,
	}
}

// Messages
type tickMsg time.Time
type eventMsg tail.Event
type eventsClosedMsg struct{}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.RefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForEvent() tea.Cmd {
	if m.opts.Events == nil {
		return nil
	}
	events := m.opts.Events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForEvent())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.tick()

	case eventMsg:
		m.addActivity(tail.Event(msg))
		return m, m.waitForEvent()

	case eventsClosedMsg:
		return m, nil
	}

	if m.showFilter {
		var inputCmd tea.Cmd
		m.filterInput, inputCmd = m.filterInput.Update(msg)
		return m, inputCmd
	}

	return m, nil
}

func (m *Model) refresh() {
	if m.opts.Latest != nil {
		if snap, ok := m.opts.Latest.Load(); ok {
			m.snap = &snap
		}
	}
	if m.opts.Logs != nil {
		m.logs = m.opts.Logs.Lines()
	}
	if m.notice != "" && time.Now().After(m.noticeExpiry) {
		m.notice = ""
	}
}

func (m *Model) addActivity(e tail.Event) {
	m.activity = append([]tail.Event{e}, m.activity...)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[:maxActivity]
	}
}

// send forwards a shortcut to the tick loop without blocking the UI.
func (m *Model) send(k core.Key) {
	if m.opts.Keys == nil {
		return
	}
	select {
	case m.opts.Keys <- k:
	default:
		m.setNotice("player busy, key dropped")
	}
}

func (m *Model) setNotice(s string) {
	m.notice = s
	m.noticeExpiry = time.Now().Add(3 * time.Second)
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	switch msg.String() {
	case "ctrl+c":
		m.send(core.KeyQuit)
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		}
		return m, nil
	}

	if m.showFilter {
		return m.handleFilterKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.send(core.KeyQuit)
		m.quitting = true
		return m, tea.Quit

	case "d":
		m.send(core.KeyDump)
		m.setNotice("dumped loaded clips to the log")
		return m, nil

	case "f":
		m.send(core.KeyFullscreen)
		return m, nil

	case "?":
		m.showHelp = true
		return m, nil

	case "/":
		m.showFilter = true
		m.filterInput.SetValue(m.slotsView.Filter())
		m.filterInput.Focus()
		return m, textinput.Blink

	case "tab":
		m.focusedPanel = (m.focusedPanel + 1) % 4
		return m, nil

	case "shift+tab":
		m.focusedPanel = (m.focusedPanel + 3) % 4
		return m, nil
	}

	// Panel-specific keys
	switch m.focusedPanel {
	case PanelSlots:
		switch msg.String() {
		case "j", "down":
			m.slotsView.ScrollDown()
		case "k", "up":
			m.slotsView.ScrollUp()
		}
	case PanelLog:
		switch msg.String() {
		case "j", "down":
			m.logsView.ScrollDown()
		case "k", "up":
			m.logsView.ScrollUp()
		}
	}

	return m, nil
}

func (m Model) handleFilterKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.showFilter = false
		m.filterInput.Blur()
		return m, nil

	case "enter":
		m.slotsView.SetFilter(strings.TrimSpace(m.filterInput.Value()))
		m.showFilter = false
		m.filterInput.Blur()
		m.focusedPanel = PanelSlots
		return m, nil
	}

	var inputCmd tea.Cmd
	m.filterInput, inputCmd = m.filterInput.Update(msg)
	return m, inputCmd
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.showFilter {
		return m.renderFilter()
	}

	// Left: Now Playing (top), Slots (bottom)
	// Right: Activity (top), Log (bottom)
	leftWidth := m.width * 50 / 100
	rightWidth := m.width - leftWidth - 2
	topHeight := m.height * 40 / 100
	bottomHeight := m.height - topHeight - 2

	nowPlaying := m.nowPlaying.Render(m.snap, leftWidth-2, topHeight-2, m.focusedPanel == PanelNowPlaying)
	slotsView := m.slotsView.Render(m.snap, leftWidth-2, bottomHeight-2, m.focusedPanel == PanelSlots)
	activityView := m.activityView.Render(m.activity, rightWidth-2, topHeight-2, m.focusedPanel == PanelActivity)
	logsView := m.logsView.Render(m.logs, rightWidth-2, bottomHeight-2, m.focusedPanel == PanelLog)

	leftCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, slotsView)
	rightCol := lipgloss.JoinVertical(lipgloss.Left, activityView, logsView)

	main := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	status := styles.Dim.Render("q:quit  d:dump  f:fullscreen  /:filter  ?:help  tab:switch panel")
	if m.opts.Header != "" {
		status = styles.Muted.Render(m.opts.Header) + "  " + status
	}
	if m.notice != "" {
		status = styles.Paused.Render(m.notice)
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := "Slot Player - Keyboard Shortcuts"
	divider := strings.Repeat("═", len(title))

	help := `
  ` + title + `
  ` + divider + `

  Player
  ──────
  d            Dump loaded clips to the log
  f            Toggle fullscreen
  q, Ctrl+C    Quit the player

  Monitor
  ───────
  ?            Toggle help
  /            Filter slots
  Tab          Next panel
  Shift+Tab    Previous panel

  Slots and Log Panels
  ────────────────────
  j/↓          Scroll down
  k/↑          Scroll up

  Press ? or Esc to close
`

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.BorderStyle.Render(help))
}

func (m Model) renderFilter() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Filter Slots"))
	b.WriteString("\n\n")
	b.WriteString(m.filterInput.View())
	b.WriteString("\n\n")

	if m.snap != nil {
		preview := components.NewSlots()
		preview.SetFilter(strings.TrimSpace(m.filterInput.Value()))
		matches := preview.Visible(m.snap.Clips)
		b.WriteString(styles.Muted.Render(fmt.Sprintf("%d of %d clips match", len(matches), len(m.snap.Clips))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Enter:apply  Esc:close"))

	content := lipgloss.NewStyle().
		Width(60).
		Padding(1, 2).
		Render(b.String())

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(styles.FocusedBorder.Render(content))
}

// Run starts the monitor and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	styles.UseTheme(opts.Theme)

	model := NewModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
