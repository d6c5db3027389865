package history

import (
	"fmt"
	"io"

	"github.com/verte-zerg/perfdash/internal/report"
)

// RenderSummary prints run counts and averages.
func RenderSummary(w io.Writer, r Report) error {
	if len(r.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalPerf, totalTTI, bestPerf float64
	for _, res := range r.Results {
		totalPerf += res.PerformanceScore
		totalTTI += res.InteractiveSeconds
		if res.PerformanceScore > bestPerf {
			bestPerf = res.PerformanceScore
		}
	}
	count := float64(len(r.Results))
	if count == 0 {
		count = 1
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", len(r.Runs)),
		fmt.Sprintf("Measurements: %d", len(r.Results)),
		fmt.Sprintf("Avg Performance: %s", report.Percent(totalPerf/count)),
		fmt.Sprintf("Best Performance: %s", report.Percent(bestPerf)),
		fmt.Sprintf("Avg Time to Interactive: %.2f s", totalTTI/count),
		fmt.Sprintf("Last Run: %s", r.Runs[len(r.Runs)-1].EndedAt.Local().Format("2006-01-02 15:04")),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// TrendRows builds the per-(url, device) trend table rows.
func TrendRows(trends []Trend, window int) [][]string {
	rows := make([][]string, 0, len(trends))
	for _, t := range trends {
		perf, tti := t.Latest()
		rows = append(rows, []string{
			t.URL,
			string(t.Device),
			fmt.Sprintf("%d", len(t.Interactive)),
			report.Percent(perf),
			fmt.Sprintf("%.2f s", tti),
			Sparkline(MovingAverage(t.Interactive, window)),
		})
	}
	return rows
}

// RenderTrends prints one row per (url, device) with a TTI sparkline.
func RenderTrends(w io.Writer, trends []Trend, window int) error {
	if len(trends) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Trends"); err != nil {
		return err
	}
	headers := []string{"URL", "Device", "Runs", "Perf", "TTI", "TTI Trend"}
	lines := report.FormatTable(headers, TrendRows(trends, window), map[int]bool{2: true, 3: true, 4: true})
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves plots performance and TTI curves for each trend.
func RenderCurves(w io.Writer, trends []Trend, window, totalWidth, height int, useColor bool) error {
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, t := range trends {
		if len(t.Interactive) < 2 {
			continue
		}
		perf := make([]float64, len(t.Performance))
		for i, v := range t.Performance {
			perf[i] = v * 100
		}
		err := PlotCurvesWithColor(w, fmt.Sprintf("%s (%s)", t.URL, t.Device), []Curve{
			{Name: "Performance", Values: MovingAverage(perf, window)},
			{Name: "TTI", Values: MovingAverage(t.Interactive, window)},
		}, width, height, useColor)
		if err != nil {
			return err
		}
	}
	return nil
}
