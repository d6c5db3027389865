package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/perfdash/internal/analysis"
	"github.com/verte-zerg/perfdash/internal/export"
	"github.com/verte-zerg/perfdash/internal/generator"
	"github.com/verte-zerg/perfdash/internal/model"
	"github.com/verte-zerg/perfdash/internal/savedurls"
	"github.com/verte-zerg/perfdash/internal/store"
)

func newTestModel(t *testing.T) (*Model, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "perfdash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	reg, err := savedurls.Load(context.Background(), st)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	exportDir := filepath.Join(dir, "exports")
	m := NewModel(Deps{
		Runner:   analysis.New(generator.New(42), st, model.Config{Seed: 42}),
		Session:  analysis.NewSession(),
		Registry: reg,
		History:  st,
		Sink:     export.NewFileSink(exportDir),
		Now:      func() time.Time { return time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC) },
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, exportDir
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drainRun feeds every pipeline event into the model and returns the entry counts seen after each one.
func drainRun(t *testing.T, m *Model) []int {
	t.Helper()
	if m.events == nil {
		t.Fatalf("expected a run in progress")
	}
	var seen []int
	for msg := range m.events {
		m.Update(msg)
		if _, ok := msg.(entryMsg); ok {
			seen = append(seen, m.progressDone)
		}
	}
	return seen
}

func TestInvalidURLShowsBannerUntilNextKey(t *testing.T) {
	m, _ := newTestModel(t)
	m.input.SetValue("https://ok.com\nnot a url")

	m.Update(key("ctrl+r"))
	if !strings.Contains(m.errMsg, "not a url") {
		t.Fatalf("expected invalid URL banner, got %q", m.errMsg)
	}
	if m.running || m.deps.Session.Len() != 0 {
		t.Fatalf("expected no run to start")
	}
	if !strings.Contains(m.View(), "not a url") {
		t.Fatalf("expected banner in view")
	}

	m.Update(key("x"))
	if m.errMsg != "" {
		t.Fatalf("expected banner cleared on key press, got %q", m.errMsg)
	}
}

func TestEmptyInputReportsNoInput(t *testing.T) {
	m, _ := newTestModel(t)
	m.input.SetValue("  \n\n")
	m.Update(key("ctrl+r"))
	if !strings.Contains(m.errMsg, "at least one URL") {
		t.Fatalf("expected NoInput banner, got %q", m.errMsg)
	}
}

func TestRunFillsTablesProgressively(t *testing.T) {
	m, _ := newTestModel(t)
	m.input.SetValue("https://a.com\nhttps://b.com")

	m.Update(key("ctrl+r"))
	if !m.running {
		t.Fatalf("expected run to start")
	}
	m.Update(key("ctrl+r"))
	if !strings.Contains(m.errMsg, "already running") {
		t.Fatalf("expected busy banner, got %q", m.errMsg)
	}

	seen := drainRun(t, m)
	if len(seen) != 4 || seen[0] != 1 || seen[3] != 4 {
		t.Fatalf("expected four progressive entries, got %v", seen)
	}
	if m.running {
		t.Fatalf("expected run to finish")
	}
	if !strings.Contains(m.status, "4 results") {
		t.Fatalf("unexpected status %q", m.status)
	}
	for _, device := range model.Devices() {
		rows := m.resultTables[device].Rows()
		if len(rows) != 2 || rows[0][0] != "https://a.com" || rows[1][0] != "https://b.com" {
			t.Fatalf("%s table: unexpected rows %v", device, rows)
		}
		if rows[0][len(rows[0])-1] != "N/A" {
			t.Fatalf("%s table: expected N/A delta on first run, got %q", device, rows[0][len(rows[0])-1])
		}
	}

	m.Update(key("ctrl+r"))
	drainRun(t, m)
	rows := m.resultTables[model.Mobile].Rows()
	if rows[0][len(rows[0])-1] == "N/A" {
		t.Fatalf("expected delta against the previous run")
	}
}

func TestExportWritesCSV(t *testing.T) {
	m, exportDir := newTestModel(t)

	_, cmd := m.Update(key("ctrl+e"))
	if cmd != nil || !strings.Contains(m.errMsg, "no results") {
		t.Fatalf("expected EmptyExport banner, got %q", m.errMsg)
	}

	m.input.SetValue("https://a.com")
	m.Update(key("ctrl+r"))
	drainRun(t, m)

	_, cmd = m.Update(key("ctrl+e"))
	if cmd == nil {
		t.Fatalf("expected export command, banner %q", m.errMsg)
	}
	m.Update(cmd())
	path := filepath.Join(exportDir, "performance-report-2026-05-04.csv")
	if !strings.Contains(m.status, path) {
		t.Fatalf("expected export path in status, got %q (err %q)", m.status, m.errMsg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1+1+2+1 {
		t.Fatalf("expected header, mobile, separator and desktop lines, got %d", len(lines))
	}
}

func TestSavedURLTab(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()
	if _, err := m.deps.Registry.Add(ctx, "A", "https://a.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := m.deps.Registry.Add(ctx, "B", "https://b.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.refreshSavedTable()
	m.setTab(tabSaved)

	m.Update(key("enter"))
	if !strings.Contains(m.errMsg, "no saved URLs selected") {
		t.Fatalf("expected MissingSelection banner, got %q", m.errMsg)
	}

	m.Update(key(" "))
	rows := m.savedTable.Rows()
	if rows[0][0] != "[x]" || rows[1][0] != "[ ]" {
		t.Fatalf("expected first entry toggled, got %v", rows)
	}
	m.Update(key("a"))
	if m.savedTable.Rows()[1][0] != "[x]" {
		t.Fatalf("expected select all")
	}

	m.Update(key("enter"))
	if m.activeTab != tabAnalyze {
		t.Fatalf("expected switch to analyze tab")
	}
	if m.input.Value() != "https://a.com\nhttps://b.com" {
		t.Fatalf("unexpected loaded input %q", m.input.Value())
	}
}

func TestSavedFormRejectsInvalidURL(t *testing.T) {
	m, _ := newTestModel(t)
	m.setTab(tabSaved)

	m.Update(key("n"))
	if !m.form.active {
		t.Fatalf("expected form to open")
	}
	m.form.inputs[formName].SetValue("Home")
	m.form.inputs[formURL].SetValue("not a url")
	m.Update(key("enter"))
	if !m.form.active || !strings.Contains(m.form.err, "not a url") {
		t.Fatalf("expected form to stay open with error, got %q", m.form.err)
	}
	if m.deps.Registry.Len() != 0 {
		t.Fatalf("expected registry unchanged")
	}

	m.form.inputs[formURL].SetValue("https://home.example")
	m.Update(key("enter"))
	if m.form.active {
		t.Fatalf("expected form to close, err %q", m.form.err)
	}
	if m.deps.Registry.Len() != 1 || len(m.savedTable.Rows()) != 1 {
		t.Fatalf("expected one saved entry")
	}
}

func TestRenderFooterShowsHelpAndBanner(t *testing.T) {
	m, _ := newTestModel(t)
	m.errMsg = "invalid URL(s): x"
	out := m.renderFooter()
	if !strings.Contains(out, "Run: ctrl+r") || !strings.Contains(out, "invalid URL(s): x") {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestTabCycles(t *testing.T) {
	m, _ := newTestModel(t)
	for i := 0; i < len(m.tabs); i++ {
		m.Update(key("tab"))
	}
	if m.activeTab != tabAnalyze {
		t.Fatalf("expected to wrap back to analyze, got %d", m.activeTab)
	}
}
