package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type word struct {
	text  string
	width int
}

// wrapText breaks text on spaces so no line exceeds width cells.
// Words wider than width are split across lines.
func wrapText(text string, width int, style lipgloss.Style) string {
	fields := strings.Fields(text)
	if width <= 0 || len(fields) == 0 {
		return style.Render(strings.Join(fields, " "))
	}
	words := make([]word, 0, len(fields))
	for _, f := range fields {
		words = append(words, word{text: f, width: runewidth.StringWidth(f)})
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	flush := func() {
		lines = append(lines, style.Render(line.String()))
		line.Reset()
		lineWidth = 0
	}
	for _, w := range words {
		for w.width > width {
			if lineWidth > 0 {
				flush()
			}
			head := runewidth.Truncate(w.text, width, "")
			if head == "" {
				_, size := utf8.DecodeRuneInString(w.text)
				head = w.text[:size]
			}
			lines = append(lines, style.Render(head))
			w.text = strings.TrimPrefix(w.text, head)
			w.width = runewidth.StringWidth(w.text)
		}
		if w.width == 0 {
			continue
		}
		need := w.width
		if lineWidth > 0 {
			need++
		}
		if lineWidth+need > width {
			flush()
			need = w.width
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(w.text)
		lineWidth += need
	}
	if lineWidth > 0 {
		flush()
	}
	return strings.Join(lines, "\n")
}
