package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Unit   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │ "
	axisLabelHigh       = "high"
	axisLabelLow        = "low"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var seriesColors = []string{
	"\x1b[32m", // green
	"\x1b[36m", // cyan
	"\x1b[33m", // yellow
	"\x1b[35m", // magenta
}

// dash patterns, in braille dot columns: solid, dashed, dotted.
var seriesDashes = []struct {
	name   string
	period int
	on     int
}{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
}

// PlotSeries renders a braille line chart. Each series is scaled to its own
// min/max, printed above the chart.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	kept := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
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

	grids := make([][][]uint8, len(kept))
	ranges := make([][2]float64, len(kept))
	for i, s := range kept {
		lo, hi := bounds(s.Values)
		ranges[i] = [2]float64{lo, hi}
		if hi-lo < 1e-9 {
			lo--
			hi++
		}
		grids[i] = traceSeries(resample(s.Values, width), lo, hi, width, height, i)
	}

	useColor := shouldUseColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for i, s := range kept {
		fmt.Fprintf(&b, "%s: min=%.1f%s max=%.1f%s\n", s.Name, ranges[i][0], s.Unit, ranges[i][1], s.Unit)
	}
	labelWidth := runewidth.StringWidth(axisLabelHigh)
	for y := 0; y < height; y++ {
		label := ""
		switch {
		case y == 0:
			label = axisLabelHigh
		case y == height-1:
			label = axisLabelLow
		}
		fmt.Fprintf(&b, "%*s%s", labelWidth, label, axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, g := range grids {
				if g[y][x] != 0 {
					mask |= g[y][x]
					if owner < 0 {
						owner = i
					}
				}
			}
			ch := rune(0x2800 + int(mask))
			if useColor && owner >= 0 {
				b.WriteString(seriesColors[owner%len(seriesColors)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(kept, useColor))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	axisWidth := runewidth.StringWidth(axisLabelHigh) + runewidth.StringWidth(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		return minPlotWidth
	}
	return plotWidth
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

// traceSeries draws the series into a height x width grid of braille masks.
// Each cell holds 2x4 dots.
func traceSeries(values []float64, lo, hi float64, width, height, idx int) [][]uint8 {
	grid := make([][]uint8, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
	}
	dash := seriesDashes[idx%len(seriesDashes)]
	dotRows := height * 4
	plot := func(x, y int) {
		if dash.period > 1 && x%dash.period >= dash.on {
			return
		}
		cx, cy := x/2, y/4
		if cy < 0 || cy >= height || cx < 0 || cx >= width {
			return
		}
		grid[cy][cx] |= dotMask(x%2, y%4)
	}
	prevX, prevY := -1, -1
	for i, v := range values {
		pos := (v - lo) / (hi - lo)
		y := int(math.Round((1 - pos) * float64(dotRows-1)))
		x := i * 2
		if prevX < 0 {
			plot(x, y)
		} else {
			line(prevX, prevY, x, y, plot)
		}
		prevX, prevY = x, y
	}
	return grid
}

func dotMask(col, row int) uint8 {
	left := [4]uint8{0x01, 0x02, 0x04, 0x40}
	right := [4]uint8{0x08, 0x10, 0x20, 0x80}
	if col == 0 {
		return left[row]
	}
	return right[row]
}

// line walks a Bresenham line between two dot coordinates.
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
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

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := 0; i < width; i++ {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := 0; i < width; i++ {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := fmt.Sprintf("⠉ %s (%s)", s.Name, seriesDashes[i%len(seriesDashes)].name)
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
