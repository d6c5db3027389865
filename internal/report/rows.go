// Package report projects analysis results into table rows, text tables and CSV.
package report

import (
	"fmt"
	"math"

	"github.com/verte-zerg/perfdash/internal/model"
)

// MissingValue is displayed for absent audits or scores.
const MissingValue = "n/a"

// Row is one line of a report table.
type Row struct {
	Key         string
	Label       string
	Value       string
	Score       *float64
	Description string
	Category    bool
}

var categoryLabels = []struct {
	key   string
	label string
}{
	{model.CategoryPerformance, "Performance"},
	{model.CategorySEO, "SEO"},
}

// ToRows lists category scores first, then the fixed audits in display order.
// A missing category shows 0%; a missing audit shows MissingValue and no score.
func ToRows(report model.PerformanceReport) []Row {
	rows := make([]Row, 0, len(categoryLabels)+len(model.AuditKeys()))
	for _, c := range categoryLabels {
		score := report.Categories[c.key]
		rows = append(rows, Row{
			Key:      c.key,
			Label:    c.label,
			Value:    Percent(score),
			Score:    &score,
			Category: true,
		})
	}
	for _, key := range model.AuditKeys() {
		audit, ok := report.Audits[key]
		if !ok {
			rows = append(rows, Row{Key: key, Label: model.AuditTitle(key), Value: MissingValue})
			continue
		}
		label := audit.Title
		if label == "" {
			label = model.AuditTitle(key)
		}
		value := audit.DisplayValue
		if value == "" {
			value = MissingValue
		}
		rows = append(rows, Row{
			Key:         key,
			Label:       label,
			Value:       value,
			Score:       audit.Score,
			Description: audit.Description,
		})
	}
	return rows
}

// Percent renders a [0,1] score as a rounded percentage.
func Percent(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

// FormatScore renders a raw audit score with two decimals, or MissingValue.
func FormatScore(score *float64) string {
	if score == nil {
		return MissingValue
	}
	return fmt.Sprintf("%.2f", *score)
}
