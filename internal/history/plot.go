package history

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Curve is a named series drawn by PlotCurves.
type Curve struct {
	Name   string
	Values []float64
}

type dash struct {
	name   string
	period int
	on     int
}

func (d dash) draws(x int) bool {
	if d.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%d.period < d.on
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisHigh            = "max"
	axisLow             = "min"
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var dashes = []dash{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

var palette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// canvas is a grid of braille cells, each holding a 2x4 dot mask.
type canvas [][]uint8

func newCanvas(width, height int) canvas {
	c := make(canvas, height)
	for y := range c {
		c[y] = make([]uint8, width)
	}
	return c
}

func (c canvas) dot(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cy, cx := y/4, x/2
	if cy >= len(c) || cx >= len(c[cy]) {
		return
	}
	c[cy][cx] |= dotMask(x%2, y%4)
}

// PlotCurves renders curves as a braille chart. Each curve is scaled to its own range.
func PlotCurves(w io.Writer, title string, curves []Curve, width, height int) error {
	return PlotCurvesWithColor(w, title, curves, width, height, false)
}

// PlotCurvesWithColor renders curves with optional forced color output.
func PlotCurvesWithColor(w io.Writer, title string, curves []Curve, width, height int, forceColor bool) error {
	var drawn []Curve
	for _, c := range curves {
		if len(c.Values) > 0 {
			drawn = append(drawn, c)
		}
	}
	if len(drawn) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	canvases := make([]canvas, len(drawn))
	ranges := make([][2]float64, len(drawn))
	dotRows := height * 4
	for i, c := range drawn {
		values := resample(c.Values, width)
		lo, hi := minMax(values)
		if math.Abs(hi-lo) < 1e-9 {
			lo--
			hi++
		}
		ranges[i] = [2]float64{lo, hi}
		canvases[i] = newCanvas(width, height)
		style := dashes[i%len(dashes)]
		prevX, prevY := -1, -1
		for x, v := range values {
			px, py := x*2, rowFor(v, lo, hi, dotRows)
			if prevX >= 0 {
				bresenham(prevX, prevY, px, py, func(dx, dy int) {
					if style.draws(dx) {
						canvases[i].dot(dx, dy)
					}
				})
			} else if style.draws(px) {
				canvases[i].dot(px, py)
			}
			prevX, prevY = px, py
		}
	}

	useColor := shouldUseColor(w, forceColor)
	out := make([]string, 0, height+len(drawn)+3)
	if title != "" {
		out = append(out, title)
	}
	for i, c := range drawn {
		out = append(out, fmt.Sprintf("%s: min=%.2f max=%.2f", c.Name, ranges[i][0], ranges[i][1]))
	}
	labelWidth := utf8.RuneCountInString(axisHigh)
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = axisHigh
		case height - 1:
			label = axisLow
		}
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", labelWidth, label, axisSeparator)
		for x := 0; x < width; x++ {
			mask, owner := cellAt(canvases, x, y)
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				row.WriteString(palette[owner%len(palette)])
				row.WriteRune(ch)
				row.WriteString(colorReset)
				continue
			}
			row.WriteRune(ch)
		}
		out = append(out, row.String())
	}
	out = append(out, legend(drawn, useColor), "")
	for _, line := range out {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	width := totalWidth - utf8.RuneCountInString(axisHigh) - utf8.RuneCountInString(axisSeparator)
	if width < minPlotWidth {
		return minPlotWidth
	}
	return width
}

// TerminalWidth returns the stdout width, or a fallback when not a terminal.
func TerminalWidth() int {
	return terminalWidth()
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func cellAt(canvases []canvas, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, c := range canvases {
		m := c[y][x]
		if m == 0 {
			continue
		}
		if owner == -1 {
			owner = i
		}
		mask |= m
	}
	return mask, owner
}

func legend(curves []Curve, useColor bool) string {
	parts := make([]string, 0, len(curves))
	for i, c := range curves {
		label := fmt.Sprintf("%c %s (%s)", rune(0x2801), c.Name, dashes[i%len(dashes)].name)
		if useColor {
			label = palette[i%len(palette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// resample stretches or averages values down to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := 0; i < width; i++ {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		last := len(values) - 1
		for i := 0; i < width; i++ {
			pos := float64(i) * float64(last) / float64(width-1)
			idx := int(math.Floor(pos))
			if idx >= last {
				out[i] = values[last]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func rowFor(v, lo, hi float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	if row < 0 {
		return 0
	}
	if row >= rows {
		return rows - 1
	}
	return row
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func dotMask(x, y int) uint8 {
	if x == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[y]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[y]
}
