package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/perfdash/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	editCmd := exec.Command(parts[0], append(parts[1:], path)...)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = cmd.OutOrStdout()
	editCmd.Stderr = cmd.ErrOrStderr()
	if err := editCmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

// applyConfig copies file values into flag targets the user did not set explicitly.
func applyConfig(cmd *cobra.Command, fileCfg config.FileConfig) {
	applyIntConfig(cmd, "delay-min-ms", &delayMinMs, fileCfg.Analysis.DelayMinMs)
	applyIntConfig(cmd, "delay-max-ms", &delayMaxMs, fileCfg.Analysis.DelayMaxMs)
	applyInt64Config(cmd, "seed", &seed, fileCfg.Analysis.Seed)
	applyStringConfig(cmd, "export-dir", &exportDir, fileCfg.Export.Dir)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	if exportDir == "" {
		exportDir = config.DefaultExportDir()
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# perfdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[analysis]
# delay-min-ms = %d       # Minimum simulated delay per device (ms)
# delay-max-ms = %d       # Maximum simulated delay per device (ms)
# seed = 0                # Random seed for generated reports (0: time based)

[export]
# dir = %q
# s3-bucket = ""          # Upload CSV exports to this bucket instead of dir
# s3-prefix = "reports"
# s3-endpoint = ""        # S3-compatible endpoint, e.g. http://localhost:9000
# s3-region = "us-east-1"

[telemetry]
# sentry-dsn = ""
# otlp-endpoint = ""      # e.g. http://localhost:4318

[log]
# level = %q
# file = %q
`,
		defaultDelayMinMs,
		defaultDelayMaxMs,
		config.DefaultExportDir(),
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}
