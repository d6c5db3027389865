// Package delta compares time-to-interactive against the previous run.
package delta

import (
	"fmt"
	"math"

	"github.com/verte-zerg/perfdash/internal/model"
)

// NotAvailable is shown when there is no previous measurement.
const NotAvailable = "N/A"

// Direction classifies a change in loading time.
type Direction int

const (
	// Unknown means there is no previous measurement to compare with.
	Unknown Direction = iota
	Improved
	Regressed
	Unchanged
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

type key struct {
	url    string
	device model.DeviceClass
}

// Baseline is a read-only snapshot of persisted loading times keyed by (url, device).
type Baseline struct {
	values map[key]float64
}

// NewBaseline indexes persisted entries. Later entries win for duplicate keys.
func NewBaseline(entries []model.PersistedDelta) Baseline {
	values := make(map[key]float64, len(entries))
	for _, e := range entries {
		values[key{url: e.URL, device: e.Device}] = e.TotalLoadingTimeSeconds
	}
	return Baseline{values: values}
}

// Previous returns the persisted seconds for (url, device), or nil when absent.
func (b Baseline) Previous(url string, device model.DeviceClass) *float64 {
	v, ok := b.values[key{url: url, device: device}]
	if !ok {
		return nil
	}
	return &v
}

// Len returns the number of keys in the baseline.
func (b Baseline) Len() int {
	return len(b.values)
}

// Format renders previous-current to three decimals, with "+" marking an improvement.
func Format(current float64, previous *float64) string {
	if previous == nil {
		return NotAvailable
	}
	diff := roundMillis(*previous - current)
	switch {
	case diff > 0:
		return fmt.Sprintf("+%.3f", diff)
	case diff < 0:
		return fmt.Sprintf("%.3f", diff)
	default:
		return "0.000"
	}
}

// Classify maps the sign of previous-current to a Direction.
func Classify(current float64, previous *float64) Direction {
	if previous == nil {
		return Unknown
	}
	diff := roundMillis(*previous - current)
	switch {
	case diff > 0:
		return Improved
	case diff < 0:
		return Regressed
	default:
		return Unchanged
	}
}

// ForEntry formats and classifies the delta of a result entry against b.
func (b Baseline) ForEntry(entry model.ResultEntry) (string, Direction) {
	current, ok := entry.Report.InteractiveSeconds()
	if !ok {
		return NotAvailable, Unknown
	}
	prev := b.Previous(entry.URL, entry.Device)
	return Format(current, prev), Classify(current, prev)
}

// Merge overlays the entries' loading times onto existing, one record per (url, device).
// Existing order is kept; new keys are appended in entry order.
func Merge(existing []model.PersistedDelta, entries []model.ResultEntry) []model.PersistedDelta {
	out := append([]model.PersistedDelta(nil), existing...)
	index := make(map[key]int, len(out))
	for i, e := range out {
		index[key{url: e.URL, device: e.Device}] = i
	}
	for _, entry := range entries {
		seconds, ok := entry.Report.InteractiveSeconds()
		if !ok {
			continue
		}
		record := model.PersistedDelta{
			URL:                     entry.URL,
			Device:                  entry.Device,
			TotalLoadingTimeSeconds: seconds,
			Timestamp:               entry.Report.FetchTime,
		}
		k := key{url: entry.URL, device: entry.Device}
		if i, ok := index[k]; ok {
			out[i] = record
			continue
		}
		index[k] = len(out)
		out = append(out, record)
	}
	return out
}

func roundMillis(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0
	}
	return r
}
