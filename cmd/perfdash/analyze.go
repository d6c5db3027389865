package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/perfdash/internal/analysis"
	"github.com/verte-zerg/perfdash/internal/model"
	"github.com/verte-zerg/perfdash/internal/report"
	"github.com/verte-zerg/perfdash/internal/savedurls"
	"github.com/verte-zerg/perfdash/internal/urllist"
)

var (
	analyzeFile     string
	analyzeSelected bool
	analyzeCSV      bool
	analyzeNoDelay  bool
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [urls...]",
		Short: "Analyze URLs and print a comparison table",
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().StringVar(&analyzeFile, "file", "", "read URLs from file, one per line (- for stdin)")
	cmd.Flags().BoolVar(&analyzeSelected, "selected", false, "analyze the selected saved URLs")
	cmd.Flags().BoolVar(&analyzeCSV, "csv", false, "export the results as CSV")
	cmd.Flags().BoolVar(&analyzeNoDelay, "no-delay", false, "skip the simulated per-device delay")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt)
	defer stop()

	a, err := openApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if analyzeNoDelay {
		a.cfg.DelayMin = 0
		a.cfg.DelayMax = 0
	}

	urls, err := collectURLs(ctx, a, args)
	if err != nil {
		return err
	}

	sess := analysis.NewSession()
	total := 0
	if valid, verr := analysis.Validate(urls); verr == nil {
		total = len(valid) * len(model.Devices())
	}
	done := 0
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	_, runErr := a.pipeline().Run(ctx, sess, urls, func(entry model.ResultEntry) {
		done++
		tti, _ := entry.Report.InteractiveSeconds()
		_, _ = fmt.Fprintf(errOut, "[%d/%d] %s %s perf %s TTI %.1f s\n",
			done, total, entry.Device, entry.URL,
			report.Percent(entry.Report.Categories[model.CategoryPerformance]), tti)
	})
	if runErr != nil && sess.Len() == 0 {
		return runErr
	}

	if err := report.RenderText(out, sess.Entries(), sess.Baseline()); err != nil {
		return err
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("analysis cancelled after %d results", sess.Len())
		}
		return runErr
	}

	if analyzeCSV {
		content, err := report.ToCSV(sess.Entries(), sess.Baseline())
		if err != nil {
			return err
		}
		sink, err := a.sink(ctx)
		if err != nil {
			return fmt.Errorf("failed to configure export: %w", err)
		}
		location, err := sink.Write(ctx, report.FileName(time.Now()), content)
		if err != nil {
			return err
		}
		logrus.WithField("location", location).Info("report exported")
		_, _ = fmt.Fprintf(errOut, "Exported %s\n", location)
	}
	return nil
}

func collectURLs(ctx context.Context, a *app, args []string) ([]string, error) {
	urls := append([]string(nil), args...)
	if analyzeFile != "" {
		fromFile, err := urllist.Load(analyzeFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	if analyzeSelected {
		reg, err := savedurls.Load(ctx, a.store)
		if err != nil {
			return nil, err
		}
		selected, err := reg.LoadSelected()
		if err != nil {
			return nil, err
		}
		urls = append(urls, selected...)
	}
	return urls, nil
}
