package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/perfdash/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "perfdash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSavedURLsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	entries, err := st.LoadSavedURLs(ctx)
	if err != nil {
		t.Fatalf("load saved urls: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %d", len(entries))
	}

	want := []model.SavedURL{
		{ID: "a", Name: "Home", URL: "https://example.com", Selected: true},
		{ID: "b", Name: "Docs", URL: "https://example.com/docs"},
	}
	if err := st.SaveSavedURLs(ctx, want); err != nil {
		t.Fatalf("save saved urls: %v", err)
	}
	got, err := st.LoadSavedURLs(ctx)
	if err != nil {
		t.Fatalf("reload saved urls: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected saved urls: %+v", got)
	}

	if err := st.SaveSavedURLs(ctx, want[1:]); err != nil {
		t.Fatalf("overwrite saved urls: %v", err)
	}
	got, err = st.LoadSavedURLs(ctx)
	if err != nil {
		t.Fatalf("reload saved urls: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected wholesale rewrite, got %+v", got)
	}
}

func TestMalformedDocumentReadsAsEmpty(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if err := st.putDocument(ctx, KeyPreviousResults, "{not json"); err != nil {
		t.Fatalf("put raw: %v", err)
	}
	if err := st.putDocument(ctx, KeySavedURLs, `{"id": 3}`); err != nil {
		t.Fatalf("put raw: %v", err)
	}
	prev, err := st.LoadPreviousResults(ctx)
	if err != nil {
		t.Fatalf("expected malformed data to be swallowed, got %v", err)
	}
	if len(prev) != 0 {
		t.Fatalf("expected empty previous results, got %+v", prev)
	}
	saved, err := st.LoadSavedURLs(ctx)
	if err != nil {
		t.Fatalf("expected malformed data to be swallowed, got %v", err)
	}
	if len(saved) != 0 {
		t.Fatalf("expected empty saved urls, got %+v", saved)
	}
}

func TestTypeMismatchedDocumentReadsAsEmpty(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	prevDoc := `[{"url":"https://a.com","device":"Mobile","totalLoadingTime":"oops"}]`
	if err := st.putDocument(ctx, KeyPreviousResults, prevDoc); err != nil {
		t.Fatalf("put document: %v", err)
	}
	savedDoc := `[{"id":"x","name":"n","url":"https://b.com","selected":"yes"}]`
	if err := st.putDocument(ctx, KeySavedURLs, savedDoc); err != nil {
		t.Fatalf("put document: %v", err)
	}
	prev, err := st.LoadPreviousResults(ctx)
	if err != nil {
		t.Fatalf("load previous results: %v", err)
	}
	if len(prev) != 0 {
		t.Fatalf("expected no partially decoded results, got %+v", prev)
	}
	saved, err := st.LoadSavedURLs(ctx)
	if err != nil {
		t.Fatalf("load saved urls: %v", err)
	}
	if len(saved) != 0 {
		t.Fatalf("expected no partially decoded saved urls, got %+v", saved)
	}
}

func TestPreviousResultsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	want := []model.PersistedDelta{
		{URL: "https://example.com", Device: model.Mobile, TotalLoadingTimeSeconds: 5.25, Timestamp: ts},
		{URL: "https://example.com", Device: model.Desktop, TotalLoadingTimeSeconds: 3.5, Timestamp: ts},
	}
	if err := st.SavePreviousResults(ctx, want); err != nil {
		t.Fatalf("save previous: %v", err)
	}
	got, err := st.LoadPreviousResults(ctx)
	if err != nil {
		t.Fatalf("load previous: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	for i := range want {
		if got[i].URL != want[i].URL || got[i].Device != want[i].Device ||
			got[i].TotalLoadingTimeSeconds != want[i].TotalLoadingTimeSeconds || !got[i].Timestamp.Equal(ts) {
			t.Fatalf("unexpected entry %d: %+v", i, got[i])
		}
	}
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		entries := []model.ResultEntry{
			resultEntry("https://example.com", model.Mobile, 0.8, 4000+float64(i)*100),
			resultEntry("https://example.com", model.Desktop, 0.9, 3000),
		}
		id, err := st.InsertRun(ctx, model.RunRecord{StartedAt: start, EndedAt: start.Add(10 * time.Second), URLCount: 1}, entries)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[1] || runs[1].ID != ids[2] {
		t.Fatalf("expected the two most recent runs oldest first, got %+v", runs)
	}

	results, err := st.ListRunResults(ctx, []int64{runs[0].ID, runs[1].ID})
	if err != nil {
		t.Fatalf("list run results: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].RunID != ids[1] || results[0].Device != model.Mobile || results[0].InteractiveSeconds != 4.1 {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
	if results[1].Device != model.Desktop || results[1].PerformanceScore != 0.9 {
		t.Fatalf("unexpected second result: %+v", results[1])
	}
}

func resultEntry(url string, device model.DeviceClass, perf, ttiMs float64) model.ResultEntry {
	return model.ResultEntry{
		URL:    url,
		Device: device,
		Report: model.PerformanceReport{
			FinalURL:   url,
			Device:     device,
			Categories: map[string]float64{model.CategoryPerformance: perf},
			Audits: map[string]model.Audit{
				model.AuditTTI: {ID: model.AuditTTI, NumericValue: ttiMs},
			},
		},
	}
}
