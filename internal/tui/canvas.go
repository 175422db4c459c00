package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellGrid is the character canvas the timeline renders into. Each cell
// carries a style class so runs of like-styled cells can be emitted as one
// lipgloss segment.
type cellGrid struct {
	w, h  int
	runes [][]rune
	class [][]styleClass
}

type styleClass uint8

const (
	classPlain styleClass = iota
	classAxis
	classTick
	classToday
	classRowLabel
	classSecondary
	// classPalette+i colors a cell with palette entry i.
	classPalette styleClass = 16
)

func newCellGrid(w, h int) *cellGrid {
	g := &cellGrid{w: w, h: h}
	g.runes = make([][]rune, h)
	g.class = make([][]styleClass, h)
	for y := 0; y < h; y++ {
		g.runes[y] = make([]rune, w)
		g.class[y] = make([]styleClass, w)
		for x := 0; x < w; x++ {
			g.runes[y][x] = ' '
		}
	}
	return g
}

func (g *cellGrid) set(x, y int, r rune, c styleClass) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.runes[y][x] = r
	g.class[y][x] = c
}

// hline draws a horizontal run, clipped to the grid.
func (g *cellGrid) hline(x1, x2, y int, r rune, c styleClass) {
	for x := x1; x <= x2; x++ {
		g.set(x, y, r, c)
	}
}

// text writes a string starting at x, clipped to the grid.
func (g *cellGrid) text(x, y int, s string, c styleClass) {
	for i, r := range []rune(s) {
		g.set(x+i, y, r, c)
	}
}

// render flushes the grid to a styled string, one lipgloss segment per run
// of identically classed cells.
func (g *cellGrid) render(palette []string) string {
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		x := 0
		for x < g.w {
			cls := g.class[y][x]
			start := x
			for x < g.w && g.class[y][x] == cls {
				x++
			}
			seg := string(g.runes[y][start:x])
			b.WriteString(g.styleFor(cls, palette).Render(seg))
		}
		if y < g.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (g *cellGrid) styleFor(c styleClass, palette []string) lipgloss.Style {
	switch {
	case c >= classPalette:
		i := int(c - classPalette)
		if len(palette) == 0 {
			return normalItemStyle
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(palette[i%len(palette)]))
	case c == classAxis:
		return axisStyle
	case c == classTick:
		return tickLabelStyle
	case c == classToday:
		return todayMarkerStyle
	case c == classRowLabel:
		return rowLabelStyle
	case c == classSecondary:
		return secondaryLabelStyle
	default:
		return normalItemStyle
	}
}
