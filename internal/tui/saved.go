package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/perfdash/internal/model"
	"github.com/verte-zerg/perfdash/internal/savedurls"
)

const (
	formName = iota
	formURL
)

type savedForm struct {
	active    bool
	editingID string
	inputs    []textinput.Model
	index     int
	err       string
}

func newSavedForm() savedForm {
	return savedForm{
		inputs: []textinput.Model{
			newFormInput("Name: ", "Homepage"),
			newFormInput("URL:  ", "https://example.com"),
		},
	}
}

func newFormInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (f *savedForm) setWidth(width int) {
	for i := range f.inputs {
		promptWidth := lipgloss.Width(f.inputs[i].Prompt)
		f.inputs[i].Width = maxInt(10, width-promptWidth-2)
	}
}

func (f *savedForm) open(entry *model.SavedURL) tea.Cmd {
	f.active = true
	f.err = ""
	f.editingID = ""
	f.inputs[formName].SetValue("")
	f.inputs[formURL].SetValue("")
	if entry != nil {
		f.editingID = entry.ID
		f.inputs[formName].SetValue(entry.Name)
		f.inputs[formURL].SetValue(entry.URL)
	}
	return f.focus(formName)
}

func (f *savedForm) close() {
	f.active = false
	f.err = ""
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *savedForm) focus(idx int) tea.Cmd {
	f.index = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == idx {
			cmd = f.inputs[i].Focus()
			continue
		}
		f.inputs[i].Blur()
	}
	return cmd
}

func savedColumns(width int) []table.Column {
	nameWidth := 20
	idWidth := 8
	urlWidth := maxInt(20, width-nameWidth-idWidth-3-4-2)
	return []table.Column{
		{Title: "Sel", Width: 3},
		{Title: "Name", Width: nameWidth},
		{Title: "URL", Width: urlWidth},
		{Title: "ID", Width: idWidth},
	}
}

func newSavedTable() table.Model {
	t := table.New(
		table.WithColumns(savedColumns(0)),
		table.WithHeight(8),
	)
	t.SetStyles(tableStyles())
	return t
}

func (m *Model) refreshSavedTable() {
	if m.deps.Registry == nil {
		return
	}
	entries := m.deps.Registry.List()
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		mark := "[ ]"
		if e.Selected {
			mark = "[x]"
		}
		id := e.ID
		if len(id) > 8 {
			id = id[:8]
		}
		rows = append(rows, table.Row{mark, e.Name, e.URL, id})
	}
	m.savedTable.SetRows(rows)
	if m.savedTable.Cursor() >= len(rows) {
		m.savedTable.SetCursor(maxInt(0, len(rows)-1))
	}
}

func (m *Model) selectedSaved() (model.SavedURL, bool) {
	if m.deps.Registry == nil {
		return model.SavedURL{}, false
	}
	entries := m.deps.Registry.List()
	idx := m.savedTable.Cursor()
	if idx < 0 || idx >= len(entries) {
		return model.SavedURL{}, false
	}
	return entries[idx], true
}

func (m *Model) updateSaved(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.deps.Registry == nil {
		return m, nil
	}
	ctx := context.Background()
	reg := m.deps.Registry
	var err error
	switch msg.String() {
	case "q":
		m.cancelRun()
		return m, tea.Quit
	case "n":
		return m, m.form.open(nil)
	case "e":
		entry, ok := m.selectedSaved()
		if !ok {
			return m, nil
		}
		return m, m.form.open(&entry)
	case " ", "space":
		if entry, ok := m.selectedSaved(); ok {
			err = reg.Toggle(ctx, entry.ID)
		}
	case "a":
		err = reg.SelectAll(ctx)
	case "A":
		err = reg.DeselectAll(ctx)
	case "d":
		if entry, ok := m.selectedSaved(); ok {
			err = reg.Remove(ctx, entry.ID)
			if err == nil {
				m.status = fmt.Sprintf("Removed %s", entry.Name)
			}
		}
	case "enter":
		return m, m.loadSelected()
	default:
		var cmd tea.Cmd
		m.savedTable, cmd = m.savedTable.Update(msg)
		return m, cmd
	}
	if err != nil {
		m.errMsg = err.Error()
		logrus.WithError(err).Warn("saved url update failed")
	}
	m.refreshSavedTable()
	return m, nil
}

func (m *Model) loadSelected() tea.Cmd {
	urls, err := m.deps.Registry.LoadSelected()
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.input.SetValue(strings.Join(urls, "\n"))
	m.status = fmt.Sprintf("Loaded %d saved URLs", len(urls))
	return m.setTab(tabAnalyze)
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.form.close()
		return nil
	case "tab", "down":
		return m.form.focus((m.form.index + 1) % len(m.form.inputs))
	case "shift+tab", "up":
		return m.form.focus((m.form.index + len(m.form.inputs) - 1) % len(m.form.inputs))
	case "enter":
		m.submitForm()
		return nil
	}
	var cmd tea.Cmd
	m.form.inputs[m.form.index], cmd = m.form.inputs[m.form.index].Update(msg)
	return cmd
}

func (m *Model) submitForm() {
	ctx := context.Background()
	name := m.form.inputs[formName].Value()
	rawURL := m.form.inputs[formURL].Value()
	var err error
	if m.form.editingID == "" {
		_, err = m.deps.Registry.Add(ctx, name, rawURL)
	} else {
		err = m.deps.Registry.Edit(ctx, m.form.editingID, name, rawURL)
	}
	if err != nil {
		m.form.err = err.Error()
		var merr *model.Error
		if errors.As(err, &merr) && merr.Field == savedurls.FieldURL {
			m.form.focus(formURL)
		} else if errors.As(err, &merr) && merr.Field == savedurls.FieldName {
			m.form.focus(formName)
		}
		return
	}
	if m.form.editingID == "" {
		m.status = "Saved " + strings.TrimSpace(name)
	} else {
		m.status = "Updated " + strings.TrimSpace(name)
	}
	m.form.close()
	m.refreshSavedTable()
}

func (m *Model) renderSaved() string {
	if m.form.active {
		title := "New saved URL"
		if m.form.editingID != "" {
			title = "Edit saved URL"
		}
		lines := []string{titleStyle.Render(title)}
		for _, input := range m.form.inputs {
			lines = append(lines, input.View())
		}
		if m.form.err != "" {
			lines = append(lines, errorStyle.Render(m.form.err))
		}
		return strings.Join(lines, "\n")
	}
	if m.deps.Registry == nil || m.deps.Registry.Len() == 0 {
		return "No saved URLs. Press n to add one."
	}
	return mutedStyle.Render(m.savedTable.View())
}
