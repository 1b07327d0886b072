package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tinsel/internal/state"
)

const imageMarker = "▣"

type cell struct {
	text  string
	style lipgloss.Style
	// covered marks the trailing column of a double-width glyph.
	covered bool
}

// grid is a fixed-size character canvas.
type grid struct {
	width  int
	height int
	cells  [][]cell
	base   lipgloss.Style
}

func newGrid(width, height int, base lipgloss.Style) *grid {
	g := &grid{width: width, height: height, base: base}
	g.cells = make([][]cell, height)
	for y := range g.cells {
		g.cells[y] = make([]cell, width)
	}
	return g
}

// set writes text at (x, y). Glyphs that would overflow the right edge are
// shifted left; writes outside the grid are ignored.
func (g *grid) set(x, y int, text string, style lipgloss.Style) {
	if y < 0 || y >= g.height || g.width <= 0 {
		return
	}
	w := lipgloss.Width(text)
	if w <= 0 || w > g.width {
		return
	}
	if x+w > g.width {
		x = g.width - w
	}
	if x < 0 {
		x = 0
	}
	row := g.cells[y]

	// Overwriting half of a wide glyph clears the other half.
	if row[x].covered && x > 0 {
		row[x-1] = cell{}
	}
	if end := x + w; end < g.width && row[end].covered {
		row[end] = cell{}
	}

	row[x] = cell{text: text, style: style}
	for i := 1; i < w; i++ {
		row[x+i] = cell{covered: true}
	}
}

func (g *grid) render() string {
	lines := make([]string, g.height)
	blank := g.base.Render(" ")
	for y, row := range g.cells {
		var b strings.Builder
		for _, c := range row {
			switch {
			case c.covered:
			case c.text == "":
				b.WriteString(blank)
			default:
				b.WriteString(c.style.Inherit(g.base).Render(c.text))
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// percentToCell maps a 0-100 position onto a 0..size-1 index.
func percentToCell(pct float64, size int) int {
	if size <= 1 {
		return 0
	}
	idx := int(pct / 100 * float64(size-1))
	if idx < 0 {
		return 0
	}
	if idx >= size {
		return size - 1
	}
	return idx
}

// layerOrder returns elements sorted by stack order; later entries draw on top.
func layerOrder(elements []state.Element) []state.Element {
	out := make([]state.Element, len(elements))
	copy(out, elements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StackOrder < out[j].StackOrder
	})
	return out
}

// renderCanvas draws the scene, then snow on top, into a width x height block.
func (m Model) renderCanvas(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	styles := m.theme.Styles()
	base := styles.Background
	g := newGrid(width, height, base)

	elements := m.snapshot.Scene.Elements
	if len(elements) == 0 {
		msg := "The scene is empty. A new element arrives every " + humanizeDuration(m.snapshot.Interval) + "."
		if m.snapshot.Generating {
			msg = "Decorating..."
		}
		msg = truncate(msg, width)
		g.setText((width-lipgloss.Width(msg))/2, height/2, msg, styles.MutedText)
	}

	for _, el := range layerOrder(elements) {
		x := percentToCell(el.Position.X, width)
		y := percentToCell(el.Position.Y, height)
		if el.IsImage() {
			g.set(x, y, imageMarker, styles.Image)
			continue
		}
		g.set(x, y, el.Visual, styles.Text)
	}

	if m.snowOn {
		m.snow.draw(g, styles)
	}

	box := fmt.Sprintf(" %d elements ", len(elements))
	if m.snapshot.Generating {
		box = fmt.Sprintf(" %d elements, %d coming ", len(elements), m.snapshot.Pending)
	}
	g.setText(1, height-1, truncate(box, width-1), styles.Title)

	return g.render()
}

// setText writes a string one grapheme-cell at a time starting at (x, y).
func (g *grid) setText(x, y int, text string, style lipgloss.Style) {
	for _, r := range text {
		s := string(r)
		w := lipgloss.Width(s)
		if w == 0 {
			continue
		}
		if x+w > g.width {
			return
		}
		g.set(x, y, s, style)
		x += w
	}
}
