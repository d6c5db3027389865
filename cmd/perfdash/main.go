// Package main provides the CLI entrypoint for perfdash.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/perfdash/internal/analysis"
	"github.com/verte-zerg/perfdash/internal/config"
	"github.com/verte-zerg/perfdash/internal/export"
	"github.com/verte-zerg/perfdash/internal/generator"
	"github.com/verte-zerg/perfdash/internal/logging"
	"github.com/verte-zerg/perfdash/internal/model"
	"github.com/verte-zerg/perfdash/internal/savedurls"
	"github.com/verte-zerg/perfdash/internal/store"
	"github.com/verte-zerg/perfdash/internal/telemetry"
	"github.com/verte-zerg/perfdash/internal/tui"
)

const (
	defaultDelayMinMs = 1000
	defaultDelayMaxMs = 2500
	defaultLogLevel   = "info"
	shutdownTimeout   = 5 * time.Second
)

var version = "dev"

var (
	dbPath     string
	configPath string
	logLevel   string

	delayMinMs int
	delayMaxMs int
	seed       int64
	exportDir  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "perfdash",
		Short:         "Website performance dashboard",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: XDG data home)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: XDG config home)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&delayMinMs, "delay-min-ms", defaultDelayMinMs, "minimum simulated delay per device (ms)")
	rootCmd.PersistentFlags().IntVar(&delayMaxMs, "delay-max-ms", defaultDelayMaxMs, "maximum simulated delay per device (ms)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed for generated reports (0: time based)")
	rootCmd.PersistentFlags().StringVar(&exportDir, "export-dir", "", "CSV export directory (default: XDG data home)")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newURLsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the resources shared by every command.
type app struct {
	cfg      model.Config
	fileCfg  config.FileConfig
	store    *store.Store
	logFile  *os.File
	shutdown telemetry.Shutdown
}

// openApp loads config, configures logging and telemetry, and opens the database.
// When logToFile is set, logs go to the log file so they do not corrupt the TUI.
func openApp(ctx context.Context, cmd *cobra.Command, logToFile bool) (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyConfig(cmd, fileCfg)

	a := &app{fileCfg: fileCfg}
	var logOut io.Writer = cmd.ErrOrStderr()
	if logToFile {
		f, err := logging.OpenFile(config.StringValue(fileCfg.Log.File, config.DefaultLogPath()))
		if err != nil {
			return nil, err
		}
		a.logFile = f
		logOut = f
	}
	if err := logging.Configure(logLevel, logOut); err != nil {
		a.Close()
		return nil, err
	}

	a.shutdown, err = telemetry.Setup(ctx, telemetry.Options{
		SentryDSN:    config.StringValue(fileCfg.Telemetry.SentryDSN, ""),
		OTLPEndpoint: config.StringValue(fileCfg.Telemetry.OTLPEndpoint, ""),
		Release:      version,
	})
	if err != nil {
		logrus.WithError(err).Warn("telemetry disabled")
		a.shutdown = nil
	}

	a.cfg, err = analysisConfig()
	if err != nil {
		a.Close()
		return nil, err
	}

	storePath := dbPath
	if storePath == "" {
		storePath = config.DefaultDBPath()
	}
	a.store, err = store.Open(storePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if cerr := a.store.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("failed to close db")
		}
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.shutdown(ctx); err != nil {
			logrus.WithError(err).Warn("failed to flush telemetry")
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// sink returns the S3 sink when a bucket is configured, else the file sink.
func (a *app) sink(ctx context.Context) (export.Sink, error) {
	bucket := config.StringValue(a.fileCfg.Export.S3Bucket, "")
	if bucket == "" {
		return export.NewFileSink(exportDir), nil
	}
	return export.NewS3Sink(ctx, export.S3Options{
		Bucket:   bucket,
		Prefix:   config.StringValue(a.fileCfg.Export.S3Prefix, ""),
		Endpoint: config.StringValue(a.fileCfg.Export.S3Endpoint, ""),
		Region:   config.StringValue(a.fileCfg.Export.S3Region, ""),
	})
}

func (a *app) pipeline() *analysis.Pipeline {
	return analysis.New(generator.New(a.cfg.Seed), a.store, a.cfg)
}

func analysisConfig() (model.Config, error) {
	if delayMinMs < 0 || delayMaxMs < 0 {
		return model.Config{}, fmt.Errorf("--delay-min-ms and --delay-max-ms must be >= 0")
	}
	if delayMaxMs < delayMinMs {
		return model.Config{}, fmt.Errorf("--delay-max-ms must be >= --delay-min-ms")
	}
	return model.Config{
		DelayMin: time.Duration(delayMinMs) * time.Millisecond,
		DelayMax: time.Duration(delayMaxMs) * time.Millisecond,
		Seed:     seed,
	}, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := savedurls.Load(ctx, a.store)
	if err != nil {
		return err
	}
	sink, err := a.sink(ctx)
	if err != nil {
		return fmt.Errorf("failed to configure export: %w", err)
	}

	m := tui.NewModel(tui.Deps{
		Runner:   a.pipeline(),
		Session:  analysis.NewSession(),
		Registry: reg,
		History:  a.store,
		Sink:     sink,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logrus.WithError(err).Error("tui exited with error")
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
