// Package export delivers generated CSV reports to a destination.
package export

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sink stores a named report and returns where it was written.
type Sink interface {
	Write(ctx context.Context, name string, content string) (string, error)
}

// FileSink writes reports into a local directory.
type FileSink struct {
	Dir string
}

// NewFileSink returns a sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Write stores content atomically as Dir/name and returns the final path.
func (s *FileSink) Write(ctx context.Context, name string, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid export name %q", name)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	tmpFile, err := os.CreateTemp(s.Dir, "export-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if _, err := writer.WriteString(content); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
