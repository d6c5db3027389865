package model

import (
	"net/url"
	"strings"
)

// ValidURL reports whether raw parses as an absolute URL with a scheme and host.
func ValidURL(raw string) bool {
	u, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// NormalizeURLs trims every entry and drops blanks, keeping input order and duplicates.
func NormalizeURLs(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
