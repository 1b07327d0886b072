package ui

import "math/rand/v2"

var flakeGlyphs = []string{"·", "*", "❄", "❅", "❆"}

type flake struct {
	col   float64 // percent of width
	row   float64 // rows from the top; negative is still above the screen
	speed float64 // rows per frame
	glyph string
}

// snowfield animates falling flakes over the scene. It never blocks input.
type snowfield struct {
	flakes []flake
	width  int
	height int
}

// flakeCount returns how many flakes to draw for a terminal width.
func flakeCount(width int) int {
	switch {
	case width < SnowSmallWidth:
		return SnowSmallCount
	case width < SnowMediumWidth:
		return SnowMediumCount
	default:
		return SnowLargeCount
	}
}

// resize reseeds the field when the terminal changes size.
func (s *snowfield) resize(width, height int, rng *rand.Rand) {
	if width == s.width && height == s.height && len(s.flakes) > 0 {
		return
	}
	s.width, s.height = width, height
	if width <= 0 || height <= 0 {
		s.flakes = nil
		return
	}

	framesPerSecond := float64(1000 / SnowFrameInterval.Milliseconds())
	count := flakeCount(width)
	s.flakes = make([]flake, count)
	for i := range s.flakes {
		// Each flake takes 10 to 30 seconds to cross and starts up to 10 seconds late.
		duration := 10 + rng.Float64()*20
		speed := float64(height) / (duration * framesPerSecond)
		delay := rng.Float64() * 10
		s.flakes[i] = flake{
			col:   rng.Float64() * 100,
			row:   -delay * framesPerSecond * speed,
			speed: speed,
			glyph: flakeGlyphs[rng.IntN(len(flakeGlyphs))],
		}
	}
}

// step advances every flake one frame, wrapping those that fall off the bottom.
func (s *snowfield) step(rng *rand.Rand) {
	for i := range s.flakes {
		f := &s.flakes[i]
		f.row += f.speed
		if f.row >= float64(s.height) {
			f.row = 0
			f.col = rng.Float64() * 100
		}
	}
}

// draw paints visible flakes onto the canvas grid.
func (s *snowfield) draw(g *grid, styles Styles) {
	for _, f := range s.flakes {
		if f.row < 0 {
			continue
		}
		g.set(percentToCell(f.col, g.width), int(f.row), f.glyph, styles.Snow)
	}
}
