package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/perfdash/internal/history"
)

const (
	defaultHistoryLast   = 20
	defaultHistoryWindow = 3
	historyPlotHeight    = 8
)

var (
	historyLast    int
	historyWindow  int
	historySlowest int
	historyPlot    bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs and per-URL trends",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "number of most recent runs (0: all)")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for trends")
	cmd.Flags().IntVar(&historySlowest, "slowest", 0, "only show the N slowest URL/device pairs")
	cmd.Flags().BoolVar(&historyPlot, "plot", false, "plot performance and TTI curves")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := history.BuildReport(ctx, a.store, historyLast)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := history.RenderSummary(out, rep); err != nil {
		return err
	}
	trends := rep.Trends
	if historySlowest > 0 {
		trends = history.SlowestTrends(trends, historySlowest)
	}
	if err := history.RenderTrends(out, trends, historyWindow); err != nil {
		return err
	}
	if historyPlot {
		return history.RenderCurves(out, trends, historyWindow, history.TerminalWidth(), historyPlotHeight, false)
	}
	return nil
}
