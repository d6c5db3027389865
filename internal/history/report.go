// Package history summarizes past analysis runs.
package history

import (
	"context"

	"github.com/verte-zerg/perfdash/internal/model"
)

// Store reads run history.
type Store interface {
	ListRuns(ctx context.Context, last int) ([]model.RunRecord, error)
	ListRunResults(ctx context.Context, runIDs []int64) ([]model.RunResult, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Runs    []model.RunRecord
	Results []model.RunResult
	Trends  []Trend
}

// BuildReport loads the last runs (all when last <= 0) and their results.
func BuildReport(ctx context.Context, st Store, last int) (Report, error) {
	runs, err := st.ListRuns(ctx, last)
	if err != nil {
		return Report{}, err
	}
	results, err := st.ListRunResults(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	return Report{
		Runs:    runs,
		Results: results,
		Trends:  BuildTrends(results),
	}, nil
}

func runIDs(runs []model.RunRecord) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
