package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidURL(t *testing.T) {
	for _, raw := range []string{"https://example.com", "http://localhost:8080/a?b=c", " https://example.com/path "} {
		if !ValidURL(raw) {
			t.Fatalf("expected %q to be valid", raw)
		}
	}
	for _, raw := range []string{"not a url", "", "example.com", "/relative/path", "https://"} {
		if ValidURL(raw) {
			t.Fatalf("expected %q to be invalid", raw)
		}
	}
}

func TestNormalizeURLsKeepsOrderAndDuplicates(t *testing.T) {
	got := NormalizeURLs([]string{" https://a.com ", "", "   ", "https://b.com", "https://a.com"})
	want := []string{"https://a.com", "https://b.com", "https://a.com"}
	if len(got) != len(want) {
		t.Fatalf("expected %d urls, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected url at %d: %q", i, got[i])
		}
	}
}

func TestKindOfUnwraps(t *testing.T) {
	err := fmt.Errorf("failed to run: %w", InvalidURLError([]string{"x", "y"}))
	if KindOf(err) != InvalidURL {
		t.Fatalf("expected InvalidURL, got %q", KindOf(err))
	}
	var e *Error
	if !errors.As(err, &e) || len(e.URLs) != 2 {
		t.Fatalf("expected both urls to be carried, got %+v", e)
	}
	if e.Message != "invalid URL(s): x, y" {
		t.Fatalf("unexpected message: %q", e.Message)
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("expected empty kind for plain errors")
	}
}
