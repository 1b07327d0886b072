package scene

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/five82/tinsel/internal/generator"
	"github.com/five82/tinsel/internal/state"
)

// Glyph is a placeholder visual with its nominal size.
type Glyph struct {
	Symbol string
	Size   state.Size
}

var palette = []Glyph{
	{"🎄", state.Size{Width: 200, Height: 250}},
	{"🎅", state.Size{Width: 150, Height: 180}},
	{"⛄", state.Size{Width: 140, Height: 160}},
	{"🎁", state.Size{Width: 120, Height: 120}},
	{"🦌", state.Size{Width: 160, Height: 140}},
	{"🔔", state.Size{Width: 100, Height: 100}},
	{"⭐", state.Size{Width: 110, Height: 110}},
	{"🕯️", state.Size{Width: 80, Height: 120}},
	{"🧦", state.Size{Width: 90, Height: 110}},
	{"🍬", state.Size{Width: 80, Height: 80}},
	{"🎀", state.Size{Width: 90, Height: 90}},
	{"❄️", state.Size{Width: 100, Height: 100}},
}

// Palette returns the placeholder glyphs.
func Palette() []Glyph {
	out := make([]Glyph, len(palette))
	copy(out, palette)
	return out
}

// Placement bounds, in percent of the scene.
const (
	minX, spanX = 10.0, 60.0
	minY, spanY = 30.0, 50.0
	maxStack    = 20
)

// imageSize is the rendered size for generated images.
var imageSize = state.Size{Width: 200, Height: 200}

func newID(now time.Time) string {
	return fmt.Sprintf("element-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func place(rng *rand.Rand) (state.Point, int) {
	return state.Point{
		X: minX + rng.Float64()*spanX,
		Y: minY + rng.Float64()*spanY,
	}, rng.IntN(maxStack) + 1
}

// placeholderElement builds an element from a uniformly random palette glyph.
func placeholderElement(rng *rand.Rand, now time.Time) state.Element {
	glyph := palette[rng.IntN(len(palette))]
	pos, stack := place(rng)
	return state.Element{
		ID:         newID(now),
		Visual:     glyph.Symbol,
		Position:   pos,
		Size:       glyph.Size,
		StackOrder: stack,
		CreatedAt:  now,
	}
}

func imageElement(img generator.Image, rng *rand.Rand, now time.Time) state.Element {
	pos, stack := place(rng)
	return state.Element{
		ID:         newID(now),
		Visual:     img.URL,
		Position:   pos,
		Size:       imageSize,
		StackOrder: stack,
		CreatedAt:  now,
	}
}
