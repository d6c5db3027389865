// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis  AnalysisConfig  `toml:"analysis"`
	Export    ExportConfig    `toml:"export"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Log       LogConfig       `toml:"log"`
}

// AnalysisConfig maps pipeline settings.
type AnalysisConfig struct {
	DelayMinMs *int   `toml:"delay-min-ms"`
	DelayMaxMs *int   `toml:"delay-max-ms"`
	Seed       *int64 `toml:"seed"`
}

// ExportConfig maps CSV export destinations.
type ExportConfig struct {
	Dir        *string `toml:"dir"`
	S3Bucket   *string `toml:"s3-bucket"`
	S3Endpoint *string `toml:"s3-endpoint"`
	S3Prefix   *string `toml:"s3-prefix"`
	S3Region   *string `toml:"s3-region"`
}

// TelemetryConfig maps optional error reporting and tracing endpoints.
type TelemetryConfig struct {
	SentryDSN    *string `toml:"sentry-dsn"`
	OTLPEndpoint *string `toml:"otlp-endpoint"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// StringValue dereferences v or returns fallback.
func StringValue(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
