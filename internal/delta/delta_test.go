package delta

import (
	"testing"
	"time"

	"github.com/verte-zerg/perfdash/internal/model"
)

func ptr(v float64) *float64 {
	return &v
}

func TestFormat(t *testing.T) {
	cases := []struct {
		current  float64
		previous *float64
		want     string
	}{
		{5.0, nil, "N/A"},
		{0, nil, "N/A"},
		{5.0, ptr(5.0), "0.000"},
		{5.0, ptr(6.0), "+1.000"},
		{6.0, ptr(5.0), "-1.000"},
		{4.2, ptr(4.2004), "0.000"},
		{4.2004, ptr(4.2), "0.000"},
		{3.1234, ptr(3.5), "+0.377"},
	}
	for _, tc := range cases {
		if got := Format(tc.current, tc.previous); got != tc.want {
			t.Fatalf("Format(%v, %v): expected %q, got %q", tc.current, tc.previous, tc.want, got)
		}
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(5, nil); got != Unknown {
		t.Fatalf("expected unknown, got %s", got)
	}
	if got := Classify(5, ptr(5)); got != Unchanged {
		t.Fatalf("expected unchanged, got %s", got)
	}
	if got := Classify(5, ptr(6)); got != Improved {
		t.Fatalf("expected improved, got %s", got)
	}
	if got := Classify(6, ptr(5)); got != Regressed {
		t.Fatalf("expected regressed, got %s", got)
	}
	if Unknown == Unchanged {
		t.Fatalf("unknown must differ from unchanged")
	}
}

func TestBaselinePrevious(t *testing.T) {
	b := NewBaseline([]model.PersistedDelta{
		{URL: "https://example.com", Device: model.Mobile, TotalLoadingTimeSeconds: 4},
		{URL: "https://example.com", Device: model.Mobile, TotalLoadingTimeSeconds: 5},
	})
	if b.Len() != 1 {
		t.Fatalf("expected duplicate keys to collapse, got %d", b.Len())
	}
	prev := b.Previous("https://example.com", model.Mobile)
	if prev == nil || *prev != 5 {
		t.Fatalf("expected later entry to win, got %v", prev)
	}
	if b.Previous("https://example.com", model.Desktop) != nil {
		t.Fatalf("expected nil for missing device")
	}
	if (Baseline{}).Previous("https://example.com", model.Mobile) != nil {
		t.Fatalf("expected nil on zero baseline")
	}
}

func TestForEntry(t *testing.T) {
	b := NewBaseline([]model.PersistedDelta{
		{URL: "https://example.com", Device: model.Desktop, TotalLoadingTimeSeconds: 4},
	})
	entry := model.ResultEntry{
		URL:    "https://example.com",
		Device: model.Desktop,
		Report: model.PerformanceReport{Audits: map[string]model.Audit{
			model.AuditTTI: {NumericValue: 3500},
		}},
	}
	text, dir := b.ForEntry(entry)
	if text != "+0.500" || dir != Improved {
		t.Fatalf("unexpected delta %q %s", text, dir)
	}
	entry.Report.Audits = nil
	text, dir = b.ForEntry(entry)
	if text != NotAvailable || dir != Unknown {
		t.Fatalf("expected N/A for missing audit, got %q %s", text, dir)
	}
}

func TestMergeOverwritesSameKey(t *testing.T) {
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := old.Add(time.Hour)
	existing := []model.PersistedDelta{
		{URL: "https://a.com", Device: model.Mobile, TotalLoadingTimeSeconds: 6, Timestamp: old},
		{URL: "https://b.com", Device: model.Mobile, TotalLoadingTimeSeconds: 7, Timestamp: old},
	}
	entries := []model.ResultEntry{
		{URL: "https://a.com", Device: model.Mobile, Report: model.PerformanceReport{
			FetchTime: now,
			Audits:    map[string]model.Audit{model.AuditTTI: {NumericValue: 4000}},
		}},
		{URL: "https://a.com", Device: model.Desktop, Report: model.PerformanceReport{
			FetchTime: now,
			Audits:    map[string]model.Audit{model.AuditTTI: {NumericValue: 3000}},
		}},
	}
	merged := Merge(existing, entries)
	if len(merged) != 3 {
		t.Fatalf("expected 3 records, got %d", len(merged))
	}
	if merged[0].TotalLoadingTimeSeconds != 4 || !merged[0].Timestamp.Equal(now) {
		t.Fatalf("expected a.com mobile to be overwritten, got %+v", merged[0])
	}
	if merged[1].TotalLoadingTimeSeconds != 7 {
		t.Fatalf("expected b.com untouched, got %+v", merged[1])
	}
	if merged[2].Device != model.Desktop || merged[2].TotalLoadingTimeSeconds != 3 {
		t.Fatalf("expected new desktop record appended, got %+v", merged[2])
	}
	if existing[0].TotalLoadingTimeSeconds != 6 {
		t.Fatalf("merge must not mutate its input")
	}
}
