package generator

import (
	"strings"
	"testing"

	"github.com/verte-zerg/perfdash/internal/model"
)

func TestScoreForBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		good  float64
		poor  float64
		want  float64
	}{
		{"fcp below good", 1799.999, 1800, 3000, 0.9},
		{"fcp at good", 1800, 1800, 3000, 0.5},
		{"fcp above good", 1800.001, 1800, 3000, 0.5},
		{"fcp below poor", 2999.999, 1800, 3000, 0.5},
		{"fcp at poor", 3000, 1800, 3000, 0.2},
		{"fcp above poor", 3000.001, 1800, 3000, 0.2},
		{"lcp at good", 2500, 2500, 4000, 0.5},
		{"lcp at poor", 4000, 2500, 4000, 0.2},
		{"cls below good", 0.099, 0.1, 0.25, 0.9},
		{"cls at good", 0.1, 0.1, 0.25, 0.5},
		{"cls at poor", 0.25, 0.1, 0.25, 0.2},
		{"si below good", 3399, 3400, 5800, 0.9},
		{"si at poor", 5800, 3400, 5800, 0.2},
		{"tbt below good", 199, 200, 600, 0.9},
		{"tbt at good", 200, 200, 600, 0.5},
		{"tti below good", 3799, 3800, 7300, 0.9},
		{"tti below poor", 7299, 3800, 7300, 0.5},
		{"tti at poor", 7300, 3800, 7300, 0.2},
	}
	for _, tc := range cases {
		if got := ScoreFor(tc.value, tc.good, tc.poor); got != tc.want {
			t.Fatalf("%s: expected %.1f, got %.1f", tc.name, tc.want, got)
		}
	}
}

func TestGenerateShapeAndRanges(t *testing.T) {
	gen := New(42)
	for i := 0; i < 200; i++ {
		for _, device := range model.Devices() {
			report := gen.Generate("https://example.com", device)
			if report.FinalURL != "https://example.com" || report.Device != device {
				t.Fatalf("unexpected identity: %q %q", report.FinalURL, report.Device)
			}
			if report.FetchTime.IsZero() {
				t.Fatalf("expected fetch time")
			}
			perf := report.Categories[model.CategoryPerformance]
			if perf < 0.6 || perf > 1 {
				t.Fatalf("performance out of range: %f", perf)
			}
			seo := report.Categories[model.CategorySEO]
			if seo < 0.7 || seo >= 0.95 {
				t.Fatalf("seo out of range: %f", seo)
			}
			if len(report.Audits) != len(model.AuditKeys()) {
				t.Fatalf("expected %d audits, got %d", len(model.AuditKeys()), len(report.Audits))
			}
			mult := 1.0
			if device == model.Desktop {
				mult = DesktopMultiplier
			}
			assertRange(t, report, model.AuditFCP, 1200*mult, 3000*mult)
			assertRange(t, report, model.AuditLCP, 2000*mult, 5000*mult)
			assertRange(t, report, model.AuditCLS, 0, 0.25)
			assertRange(t, report, model.AuditSI, 1500*mult, 4000*mult)
			assertRange(t, report, model.AuditTBT, 0, 300)
			assertRange(t, report, model.AuditTTI, 3000*mult, 7000*mult)
		}
	}
}

func TestGenerateScoresMatchThresholds(t *testing.T) {
	gen := New(7)
	thresholds := map[string][2]float64{
		model.AuditFCP: {1800, 3000},
		model.AuditLCP: {2500, 4000},
		model.AuditCLS: {0.1, 0.25},
		model.AuditSI:  {3400, 5800},
		model.AuditTBT: {200, 600},
		model.AuditTTI: {3800, 7300},
	}
	for i := 0; i < 100; i++ {
		report := gen.Generate("https://example.com", model.Mobile)
		for key, th := range thresholds {
			audit := report.Audits[key]
			if audit.Score == nil {
				t.Fatalf("expected score for %s", key)
			}
			if want := ScoreFor(audit.NumericValue, th[0], th[1]); *audit.Score != want {
				t.Fatalf("%s: value %f scored %.1f, want %.1f", key, audit.NumericValue, *audit.Score, want)
			}
		}
	}
}

func TestGenerateDisplayValues(t *testing.T) {
	report := New(1).Generate("https://example.com", model.Mobile)
	if v := report.Audits[model.AuditFCP].DisplayValue; !strings.HasSuffix(v, " s") {
		t.Fatalf("expected seconds display, got %q", v)
	}
	if v := report.Audits[model.AuditTBT].DisplayValue; !strings.HasSuffix(v, " ms") || strings.Contains(v, ".") {
		t.Fatalf("expected integer ms display, got %q", v)
	}
	cls := report.Audits[model.AuditCLS].DisplayValue
	if parts := strings.Split(cls, "."); len(parts) != 2 || len(parts[1]) != 3 {
		t.Fatalf("expected 3 decimals for cls, got %q", cls)
	}
	if formatSeconds(1849) != "1.8 s" {
		t.Fatalf("unexpected seconds format: %q", formatSeconds(1849))
	}
	if formatMillis(120.6) != "121 ms" {
		t.Fatalf("unexpected ms format: %q", formatMillis(120.6))
	}
}

func TestGenerateDiagnosticsRanges(t *testing.T) {
	gen := New(3)
	for i := 0; i < 100; i++ {
		d := gen.Generate("https://example.com", model.Desktop).Diagnostics
		if d.ServerResponseMs < 70 || d.ServerResponseMs >= 560 {
			t.Fatalf("ttfb out of range: %f", d.ServerResponseMs)
		}
		if d.TotalByteWeightKB < 500 || d.TotalByteWeightKB >= 3000 {
			t.Fatalf("page weight out of range: %f", d.TotalByteWeightKB)
		}
		if d.InteractionToNextPaintMs < 35 || d.InteractionToNextPaintMs >= 350 {
			t.Fatalf("inp out of range: %f", d.InteractionToNextPaintMs)
		}
	}
}

func assertRange(t *testing.T, report model.PerformanceReport, key string, lo, hi float64) {
	t.Helper()
	audit, ok := report.Audits[key]
	if !ok {
		t.Fatalf("missing audit %s", key)
	}
	if audit.NumericValue < lo || audit.NumericValue > hi {
		t.Fatalf("%s out of range [%f, %f]: %f", key, lo, hi, audit.NumericValue)
	}
}
