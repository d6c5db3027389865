package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/perfdash/internal/delta"
	"github.com/verte-zerg/perfdash/internal/history"
	"github.com/verte-zerg/perfdash/internal/model"
	"github.com/verte-zerg/perfdash/internal/report"
)

const minURLColumn = 16

var metricColumns = []table.Column{
	{Title: "Perf", Width: 5},
	{Title: "SEO", Width: 5},
	{Title: "FCP", Width: 7},
	{Title: "LCP", Width: 7},
	{Title: "CLS", Width: 6},
	{Title: "SI", Width: 7},
	{Title: "TBT", Width: 7},
	{Title: "TTI", Width: 7},
	{Title: "Delta", Width: 7},
}

func resultColumns(width int) []table.Column {
	used := 0
	for _, c := range metricColumns {
		used += c.Width + 1
	}
	cols := []table.Column{{Title: "URL", Width: maxInt(minURLColumn, width-used-2)}}
	return append(cols, metricColumns...)
}

func newResultTable() table.Model {
	t := table.New(
		table.WithColumns(resultColumns(0)),
		table.WithHeight(5),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
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

func (m *Model) refreshResultTables() {
	entries := m.deps.Session.Entries()
	baseline := m.deps.Session.Baseline()
	for device, t := range m.resultTables {
		rows := report.ComparisonRows(entries, device, baseline)
		tableRows := make([]table.Row, 0, len(rows))
		for _, r := range rows {
			tableRows = append(tableRows, table.Row(r))
		}
		t.SetRows(tableRows)
		if t.Cursor() >= len(tableRows) {
			t.SetCursor(maxInt(0, len(tableRows)-1))
		}
	}
}

func (m *Model) renderResults(device model.DeviceClass) string {
	entries := m.deps.Session.ByDevice(device)
	if len(entries) == 0 {
		if m.running {
			return fmt.Sprintf("%s Waiting for %s results...", m.spinner.View(), device)
		}
		return "No results yet. Enter URLs on the Analyze tab and press ctrl+r."
	}
	t := m.resultTables[device]
	view := mutedStyle.Render(t.View())
	idx := t.Cursor()
	if idx < 0 || idx >= len(entries) {
		return view
	}
	return view + "\n\n" + m.renderDetail(entries[idx])
}

func (m *Model) renderDetail(entry model.ResultEntry) string {
	text, dir := m.deps.Session.Baseline().ForEntry(entry)
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s (%s)", entry.URL, entry.Device)),
	}
	lines = append(lines, report.DetailLines(entry.Report)...)
	lines = append(lines, "TTI delta vs previous run: "+deltaStyle(dir).Render(deltaLabel(text, dir)))
	width := m.width
	if width <= 0 {
		width = 80
	}
	for _, key := range model.AuditKeys() {
		audit, ok := entry.Report.Audits[key]
		if !ok || audit.Description == "" {
			continue
		}
		lines = append(lines, "", audit.Title, wrapText(audit.Description, width, descStyle))
	}
	return strings.Join(lines, "\n")
}

func deltaLabel(text string, dir delta.Direction) string {
	if dir == delta.Unknown {
		return text
	}
	return fmt.Sprintf("%s s (%s)", text, dir)
}

func deltaStyle(dir delta.Direction) lipgloss.Style {
	switch dir {
	case delta.Improved:
		return improvedStyle
	case delta.Regressed:
		return regressedStyle
	default:
		return unchangedStyle
	}
}

func (m *Model) refreshHistory() {
	if m.deps.History == nil {
		m.history.SetContent("History is unavailable.")
		return
	}
	rep, err := history.BuildReport(context.Background(), m.deps.History, historyRuns)
	if err != nil {
		m.errMsg = err.Error()
		m.history.SetContent("Failed to load history.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	var buf bytes.Buffer
	if err := history.RenderSummary(&buf, rep); err != nil {
		m.history.SetContent(fmt.Sprintf("Failed to render history: %v", err))
		return
	}
	if err := history.RenderTrends(&buf, rep.Trends, historyWindow); err != nil {
		m.history.SetContent(fmt.Sprintf("Failed to render history: %v", err))
		return
	}
	if err := history.RenderCurves(&buf, rep.Trends, historyWindow, width, historyPlotRow, true); err != nil {
		m.history.SetContent(fmt.Sprintf("Failed to render history: %v", err))
		return
	}
	m.history.SetContent(strings.TrimRight(buf.String(), "\n"))
}
