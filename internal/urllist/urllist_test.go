package urllist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSkipsBlankAndComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# staging\nhttps://a.com\n\n  https://b.com  \n#https://c.com\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	urls, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(urls) != 2 || urls[0] != "https://a.com" || urls[1] != "https://b.com" {
		t.Fatalf("unexpected urls %v", urls)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseEmpty(t *testing.T) {
	urls, err := Parse(strings.NewReader("\n# only comments\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("expected no urls, got %v", urls)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("https://a.com\r\nnot a url\n\nhttps://c.com")
	if len(got) != 4 || got[1] != "not a url" || got[3] != "https://c.com" {
		t.Fatalf("unexpected split %q", got)
	}
}
