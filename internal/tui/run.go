package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/perfdash/internal/analysis"
	"github.com/verte-zerg/perfdash/internal/model"
	"github.com/verte-zerg/perfdash/internal/report"
	"github.com/verte-zerg/perfdash/internal/urllist"
)

const exportTimeout = 30 * time.Second

type entryMsg struct {
	entry model.ResultEntry
}

type runDoneMsg struct {
	entries []model.ResultEntry
	err     error
}

type exportDoneMsg struct {
	location string
	err      error
}

// startRun validates the input and runs the pipeline in the background.
// Entries arrive through events so the tables fill in as each one completes.
func (m *Model) startRun() tea.Cmd {
	if m.running {
		m.errMsg = model.NewError(model.Busy, "an analysis is already running").Error()
		return nil
	}
	urls, err := analysis.Validate(urllist.SplitLines(m.input.Value()))
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg, len(urls)*len(model.Devices())+1)
	runner := m.deps.Runner
	sess := m.deps.Session
	go func() {
		defer close(events)
		entries, err := runner.Run(ctx, sess, urls, func(entry model.ResultEntry) {
			events <- entryMsg{entry: entry}
		})
		events <- runDoneMsg{entries: entries, err: err}
	}()

	m.running = true
	m.cancel = cancel
	m.events = events
	m.progressDone = 0
	m.progressTotal = len(urls) * len(model.Devices())
	return tea.Batch(m.spinner.Tick, waitForEvent(events))
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) handleEntry(msg entryMsg) tea.Cmd {
	m.progressDone++
	logrus.WithFields(logrus.Fields{"url": msg.entry.URL, "device": msg.entry.Device}).Debug("entry received")
	m.refreshResultTables()
	if m.events == nil {
		return nil
	}
	return waitForEvent(m.events)
}

func (m *Model) handleRunDone(msg runDoneMsg) {
	m.running = false
	m.cancelRun()
	m.events = nil
	m.refreshResultTables()
	switch {
	case msg.err == nil:
		m.status = fmt.Sprintf("Analysis complete: %d results", len(msg.entries))
	case errors.Is(msg.err, context.Canceled):
		m.status = fmt.Sprintf("Analysis cancelled after %d results", len(msg.entries))
	default:
		m.errMsg = msg.err.Error()
		logrus.WithError(msg.err).Error("analysis failed")
	}
	if m.activeTab == tabHistory {
		m.refreshHistory()
	}
}

func (m *Model) cancelRun() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// exportCmd snapshots the session as CSV and writes it through the sink off the UI loop.
func (m *Model) exportCmd() tea.Cmd {
	if m.running {
		m.errMsg = model.NewError(model.Busy, "wait for the analysis to finish before exporting").Error()
		return nil
	}
	content, err := report.ToCSV(m.deps.Session.Entries(), m.deps.Session.Baseline())
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	if m.deps.Sink == nil {
		m.errMsg = "no export destination configured"
		return nil
	}
	sink := m.deps.Sink
	name := report.FileName(m.deps.Now())
	m.status = "Exporting..."
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		location, err := sink.Write(ctx, name, content)
		return exportDoneMsg{location: location, err: err}
	}
}

func (m *Model) handleExportDone(msg exportDoneMsg) {
	if msg.err != nil {
		m.status = ""
		m.errMsg = msg.err.Error()
		logrus.WithError(msg.err).Error("export failed")
		return
	}
	m.status = "Exported " + msg.location
	logrus.WithField("location", msg.location).Info("report exported")
}
