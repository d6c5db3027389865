// Package urllist loads URL lists from files.
package urllist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads one URL per line from path. Use "-" for stdin.
func Load(path string) ([]string, error) {
	if path == "-" {
		return Parse(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open url list: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only url list.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads one URL per line, skipping blank lines and '#' comments.
func Parse(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read url list: %w", err)
	}
	return urls, nil
}

// SplitLines splits text area input into one entry per line.
func SplitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
