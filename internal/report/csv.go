package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/perfdash/internal/delta"
	"github.com/verte-zerg/perfdash/internal/model"
)

// CSVHeaders are the export columns in order.
var CSVHeaders = []string{
	"URL",
	"Device",
	"Performance Score",
	"SEO Score",
	"First Contentful Paint (s)",
	"Largest Contentful Paint (s)",
	"Cumulative Layout Shift",
	"Speed Index (s)",
	"Total Blocking Time (ms)",
	"Time to Interactive (s)",
	"Time to First Byte (ms)",
	"Page Weight (KB)",
	"Interaction to Next Paint (ms)",
	"TTI Delta (s)",
}

// ToCSV serializes entries with Mobile rows first, two empty rows, then Desktop rows.
// Each group keeps its original order. Values come from the stored reports only.
func ToCSV(entries []model.ResultEntry, baseline delta.Baseline) (string, error) {
	if len(entries) == 0 {
		return "", model.NewError(model.EmptyExport, "no results to export; run an analysis first")
	}
	var mobile, desktop []model.ResultEntry
	for _, e := range entries {
		switch e.Device {
		case model.Mobile:
			mobile = append(mobile, e)
		case model.Desktop:
			desktop = append(desktop, e)
		}
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(CSVHeaders); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range mobile {
		if err := w.Write(csvRecord(e, baseline)); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	if len(mobile) > 0 && len(desktop) > 0 {
		for i := 0; i < 2; i++ {
			if err := w.Write([]string{}); err != nil {
				return "", fmt.Errorf("failed to write csv separator: %w", err)
			}
		}
	}
	for _, e := range desktop {
		if err := w.Write(csvRecord(e, baseline)); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return b.String(), nil
}

// FileName returns the export file name for the given date.
func FileName(now time.Time) string {
	return fmt.Sprintf("performance-report-%s.csv", now.Format("2006-01-02"))
}

func csvRecord(e model.ResultEntry, baseline delta.Baseline) []string {
	r := e.Report
	deltaText, _ := baseline.ForEntry(e)
	return []string{
		e.URL,
		string(e.Device),
		scoreCell(r.Categories, model.CategoryPerformance),
		scoreCell(r.Categories, model.CategorySEO),
		auditCell(r, model.AuditFCP, secondsCell),
		auditCell(r, model.AuditLCP, secondsCell),
		auditCell(r, model.AuditCLS, unitlessCell),
		auditCell(r, model.AuditSI, secondsCell),
		auditCell(r, model.AuditTBT, millisCell),
		auditCell(r, model.AuditTTI, secondsCell),
		millisCell(r.Diagnostics.ServerResponseMs),
		fmt.Sprintf("%.0f", r.Diagnostics.TotalByteWeightKB),
		millisCell(r.Diagnostics.InteractionToNextPaintMs),
		deltaText,
	}
}

func scoreCell(categories map[string]float64, key string) string {
	v, ok := categories[key]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d", int(math.Round(v*100)))
}

func auditCell(r model.PerformanceReport, key string, format func(float64) string) string {
	audit, ok := r.Audits[key]
	if !ok {
		return ""
	}
	return format(audit.NumericValue)
}

func secondsCell(ms float64) string {
	return fmt.Sprintf("%.2f", ms/1000)
}

func millisCell(ms float64) string {
	return fmt.Sprintf("%.0f", ms)
}

func unitlessCell(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
