// Package tui provides the Bubble Tea performance dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/perfdash/internal/analysis"
	"github.com/verte-zerg/perfdash/internal/export"
	"github.com/verte-zerg/perfdash/internal/history"
	"github.com/verte-zerg/perfdash/internal/model"
	"github.com/verte-zerg/perfdash/internal/savedurls"
)

const (
	tabAnalyze = iota
	tabMobile
	tabDesktop
	tabSaved
	tabHistory
)

const (
	footerHeight   = 2
	inputHeight    = 8
	historyRuns    = 20
	historyWindow  = 3
	historyPlotRow = 6
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
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	improvedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	regressedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	descStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Runner runs an analysis into a session.
type Runner interface {
	Run(ctx context.Context, sess *analysis.Session, raw []string, onEntry func(model.ResultEntry)) ([]model.ResultEntry, error)
}

// Deps are the services the dashboard drives.
type Deps struct {
	Runner   Runner
	Session  *analysis.Session
	Registry *savedurls.Registry
	History  history.Store
	Sink     export.Sink
	Now      func() time.Time
}

// Model implements the Bubble Tea dashboard.
type Model struct {
	deps Deps

	tabs      []string
	activeTab int
	width     int
	height    int

	input   textarea.Model
	spinner spinner.Model

	resultTables map[model.DeviceClass]*table.Model
	savedTable   table.Model
	history      viewport.Model
	form         savedForm

	running       bool
	cancel        context.CancelFunc
	events        <-chan tea.Msg
	progressDone  int
	progressTotal int

	errMsg string
	status string
}

// NewModel constructs the dashboard model.
func NewModel(deps Deps) *Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := &Model{
		deps: deps,
		tabs: []string{"Analyze", "Mobile", "Desktop", "Saved URLs", "History"},
	}
	m.input = textarea.New()
	m.input.Placeholder = "https://example.com"
	m.input.ShowLineNumbers = false
	m.input.CharLimit = 0
	m.input.SetHeight(inputHeight)
	m.input.Focus()

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = titleStyle

	m.resultTables = map[model.DeviceClass]*table.Model{}
	for _, device := range model.Devices() {
		t := newResultTable()
		m.resultTables[device] = &t
	}
	m.savedTable = newSavedTable()
	m.history = viewport.New(0, 0)
	m.form = newSavedForm()

	m.refreshResultTables()
	m.refreshSavedTable()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case entryMsg:
		return m, m.handleEntry(msg)
	case runDoneMsg:
		m.handleRunDone(msg)
		return m, nil
	case exportDoneMsg:
		m.handleExportDone(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The banner is transient: any key press dismisses it.
	m.errMsg = ""
	m.status = ""

	if msg.Type == tea.KeyCtrlC {
		m.cancelRun()
		return m, tea.Quit
	}
	if m.form.active {
		return m, m.updateForm(msg)
	}

	switch msg.String() {
	case "tab":
		return m, m.moveTab(1)
	case "shift+tab":
		return m, m.moveTab(-1)
	case "ctrl+r":
		return m, m.startRun()
	case "ctrl+e":
		return m, m.exportCmd()
	case "esc":
		if m.running {
			m.cancelRun()
			m.status = "Cancelling analysis..."
		}
		return m, nil
	}

	switch m.activeTab {
	case tabAnalyze:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case tabMobile, tabDesktop:
		if msg.String() == "q" {
			m.cancelRun()
			return m, tea.Quit
		}
		t := m.resultTables[m.activeDevice()]
		var cmd tea.Cmd
		*t, cmd = t.Update(msg)
		return m, cmd
	case tabSaved:
		return m.updateSaved(msg)
	case tabHistory:
		switch msg.String() {
		case "q":
			m.cancelRun()
			return m, tea.Quit
		case "r":
			m.refreshHistory()
			return m, nil
		}
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X"))
	if headerHeight < 1 {
		headerHeight = 1
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight := m.layoutHeights()
	m.input.SetWidth(maxInt(20, m.width-2))
	tableHeight := maxInt(3, bodyHeight/2)
	for _, t := range m.resultTables {
		t.SetWidth(m.width)
		t.SetHeight(tableHeight)
		t.SetColumns(resultColumns(m.width))
	}
	m.savedTable.SetWidth(m.width)
	m.savedTable.SetHeight(maxInt(3, bodyHeight-2))
	m.savedTable.SetColumns(savedColumns(m.width))
	m.history.Width = m.width
	m.history.Height = bodyHeight
	m.form.setWidth(m.width)
	if m.activeTab == tabHistory {
		m.refreshHistory()
	}
}

func (m *Model) moveTab(delta int) tea.Cmd {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	return m.setTab(next)
}

func (m *Model) setTab(tab int) tea.Cmd {
	m.activeTab = tab
	m.input.Blur()
	for _, t := range m.resultTables {
		t.Blur()
	}
	m.savedTable.Blur()
	switch tab {
	case tabAnalyze:
		return m.input.Focus()
	case tabMobile, tabDesktop:
		m.resultTables[m.activeDevice()].Focus()
	case tabSaved:
		m.savedTable.Focus()
	case tabHistory:
		m.refreshHistory()
	}
	return nil
}

func (m *Model) activeDevice() model.DeviceClass {
	if m.activeTab == tabDesktop {
		return model.Desktop
	}
	return model.Mobile
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

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabAnalyze:
		return m.renderAnalyze()
	case tabMobile, tabDesktop:
		return m.renderResults(m.activeDevice())
	case tabSaved:
		return m.renderSaved()
	case tabHistory:
		return m.history.View()
	}
	return ""
}

func (m *Model) renderAnalyze() string {
	lines := []string{
		titleStyle.Render("Enter URLs, one per line"),
		m.input.View(),
		"",
		m.renderProgress(),
	}
	for _, device := range model.Devices() {
		entries := m.deps.Session.ByDevice(device)
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s results: %d", device, len(entries))))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderProgress() string {
	if m.running {
		return fmt.Sprintf("%s Analyzing %d/%d", m.spinner.View(), m.progressDone, m.progressTotal)
	}
	if n := m.deps.Session.Len(); n > 0 {
		return statusStyle.Render(fmt.Sprintf("Last run: %d results", n))
	}
	return statusStyle.Render("Ready")
}

func (m *Model) renderHelp() string {
	var help string
	switch {
	case m.form.active:
		help = "tab: next field  enter: save  esc: cancel"
	case m.activeTab == tabAnalyze:
		help = "Tabs: tab/shift+tab  Run: ctrl+r  Export: ctrl+e  Cancel: esc  Quit: ctrl+c"
	case m.activeTab == tabSaved:
		help = "Toggle: space  All: a  None: A  New: n  Edit: e  Delete: d  Load: enter  Quit: ctrl+c"
	case m.activeTab == tabHistory:
		help = "Tabs: tab/shift+tab  Scroll: up/down  Refresh: r  Quit: q"
	default:
		help = "Tabs: tab/shift+tab  Select: up/down  Run: ctrl+r  Export: ctrl+e  Quit: q"
	}
	return helpStyle.Render(help)
}

func (m *Model) renderFooter() string {
	line := ""
	switch {
	case m.errMsg != "":
		line = errorStyle.Render(truncateLine(m.errMsg, m.width))
	case m.status != "":
		line = statusStyle.Render(truncateLine(m.status, m.width))
	}
	return m.renderHelp() + "\n" + line
}
