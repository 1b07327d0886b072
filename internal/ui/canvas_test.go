package ui

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tinsel/internal/scene"
	"github.com/five82/tinsel/internal/state"
)

func TestPercentToCell(t *testing.T) {
	tests := []struct {
		pct  float64
		size int
		want int
	}{
		{0, 80, 0},
		{100, 80, 79},
		{50, 81, 40},
		{-5, 10, 0},
		{150, 10, 9},
		{42, 1, 0},
	}
	for _, tt := range tests {
		if got := percentToCell(tt.pct, tt.size); got != tt.want {
			t.Fatalf("percentToCell(%v, %d) = %d, want %d", tt.pct, tt.size, got, tt.want)
		}
	}
}

func TestLayerOrder_SortsByStackOrderStable(t *testing.T) {
	in := []state.Element{
		{ID: "a", StackOrder: 5},
		{ID: "b", StackOrder: 1},
		{ID: "c", StackOrder: 5},
		{ID: "d", StackOrder: 3},
	}
	got := layerOrder(in)
	var ids []string
	for _, el := range got {
		ids = append(ids, el.ID)
	}
	if strings.Join(ids, "") != "bdac" {
		t.Fatalf("layerOrder ids = %v, want [b d a c]", ids)
	}
	if in[0].ID != "a" {
		t.Fatalf("layerOrder mutated its input")
	}
}

func TestGrid_WideGlyphsKeepRowWidth(t *testing.T) {
	g := newGrid(10, 1, lipgloss.NewStyle())
	g.set(3, 0, "🎄", lipgloss.NewStyle())
	g.set(4, 0, "x", lipgloss.NewStyle()) // lands on the covered half
	g.set(9, 0, "🎁", lipgloss.NewStyle()) // shifted left to fit

	out := g.render()
	if w := lipgloss.Width(out); w != 10 {
		t.Fatalf("rendered width = %d, want 10: %q", w, out)
	}
	if strings.Contains(out, "🎄") {
		t.Fatalf("tree should have been cleared by the overlapping write: %q", out)
	}
	if !strings.Contains(out, "🎁") || !strings.Contains(out, "x") {
		t.Fatalf("rendered row missing glyphs: %q", out)
	}
}

func TestGrid_IgnoresOutOfBounds(t *testing.T) {
	g := newGrid(4, 2, lipgloss.NewStyle())
	g.set(0, -1, "a", lipgloss.NewStyle())
	g.set(0, 2, "a", lipgloss.NewStyle())
	g.set(0, 0, "toolong", lipgloss.NewStyle())
	if strings.TrimSpace(g.render()) != "" {
		t.Fatalf("out of bounds writes should be ignored: %q", g.render())
	}
}

func TestRenderCanvas_FillsRequestedArea(t *testing.T) {
	m := New(Options{
		Now:  func() time.Time { return time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC) },
		Rand: rand.New(rand.NewPCG(1, 2)),
		Snow: true,
	})
	m.snapshot = scene.Snapshot{
		Interval: scene.DefaultInterval,
		Scene: state.Scene{Elements: []state.Element{
			{ID: "1", Visual: "🎄", Position: state.Point{X: 10, Y: 30}, StackOrder: 2},
			{ID: "2", Visual: "https://cdn.example/a.png", Position: state.Point{X: 70, Y: 80}, StackOrder: 1},
			{ID: "3", Visual: "❄️", Position: state.Point{X: 100, Y: 100}, StackOrder: 9},
		}},
	}
	m.snow.resize(60, 12, m.rng)
	for i := 0; i < 200; i++ {
		m.snow.step(m.rng)
	}

	out := m.renderCanvas(60, 12)
	lines := strings.Split(out, "\n")
	if len(lines) != 12 {
		t.Fatalf("canvas lines = %d, want 12", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 60 {
			t.Fatalf("line %d width = %d, want 60", i, w)
		}
	}
	if !strings.Contains(out, imageMarker) {
		t.Fatalf("image element not drawn as marker")
	}
	if !strings.Contains(out, "3 elements") {
		t.Fatalf("progress box missing")
	}
}

func TestRenderCanvas_EmptyScene(t *testing.T) {
	m := New(Options{})
	m.snapshot = scene.Snapshot{Interval: 6 * time.Hour}
	out := m.renderCanvas(80, 5)
	if !strings.Contains(out, "The scene is empty") || !strings.Contains(out, "0 elements") {
		t.Fatalf("empty canvas = %q", out)
	}
}
