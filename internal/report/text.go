package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/perfdash/internal/delta"
	"github.com/verte-zerg/perfdash/internal/model"
)

// ComparisonHeaders are the columns of the per-device comparison table.
var ComparisonHeaders = []string{"URL", "Perf", "SEO", "FCP", "LCP", "CLS", "SI", "TBT", "TTI", "TTI Delta"}

// ComparisonRows builds one row per entry of the given device, in entry order.
func ComparisonRows(entries []model.ResultEntry, device model.DeviceClass, baseline delta.Baseline) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if e.Device != device {
			continue
		}
		row := []string{
			e.URL,
			Percent(e.Report.Categories[model.CategoryPerformance]),
			Percent(e.Report.Categories[model.CategorySEO]),
		}
		for _, key := range model.AuditKeys() {
			audit, ok := e.Report.Audits[key]
			if !ok || audit.DisplayValue == "" {
				row = append(row, MissingValue)
				continue
			}
			row = append(row, audit.DisplayValue)
		}
		deltaText, _ := baseline.ForEntry(e)
		row = append(row, deltaText)
		rows = append(rows, row)
	}
	return rows
}

// ComparisonLines renders the comparison table for one device as aligned lines.
func ComparisonLines(entries []model.ResultEntry, device model.DeviceClass, baseline delta.Baseline) []string {
	rows := ComparisonRows(entries, device, baseline)
	if len(rows) == 0 {
		return nil
	}
	right := map[int]bool{}
	for i := 1; i < len(ComparisonHeaders); i++ {
		right[i] = true
	}
	return FormatTable(ComparisonHeaders, rows, right)
}

// DetailLines renders the metric table of a single report.
func DetailLines(r model.PerformanceReport) []string {
	rows := ToRows(r)
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		score := ""
		if !row.Category {
			score = FormatScore(row.Score)
		}
		cells = append(cells, []string{row.Label, row.Value, score})
	}
	return FormatTable([]string{"Metric", "Value", "Score"}, cells, map[int]bool{1: true, 2: true})
}

// RenderText writes a comparison section per device that has results.
func RenderText(w io.Writer, entries []model.ResultEntry, baseline delta.Baseline) error {
	if len(entries) == 0 {
		return model.NewError(model.EmptyExport, "no results to show")
	}
	first := true
	for _, device := range model.Devices() {
		lines := ComparisonLines(entries, device, baseline)
		if len(lines) == 0 {
			continue
		}
		if !first {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		first = false
		if _, err := fmt.Fprintf(w, "%s\n%s\n", device, strings.Join(lines, "\n")); err != nil {
			return err
		}
	}
	return nil
}
