package state

import (
	"strings"
	"time"
)

// Point is a position in percent of the scene width and height.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the nominal rendered size of an element.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Element is one decorative item placed in the scene.
type Element struct {
	ID         string    `json:"id"`
	Visual     string    `json:"imageUrl"`
	Position   Point     `json:"position"`
	Size       Size      `json:"size"`
	StackOrder int       `json:"zIndex"`
	CreatedAt  time.Time `json:"addedDate"`
}

// IsImage reports whether Visual references a remote image rather than a glyph.
func (e Element) IsImage() bool {
	v := strings.TrimSpace(e.Visual)
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://")
}

// Scene is the full persisted scene.
type Scene struct {
	Elements       []Element
	LastAdditionAt time.Time
}

// HasLastAddition reports whether an addition has ever been recorded.
func (s Scene) HasLastAddition() bool {
	return !s.LastAdditionAt.IsZero()
}

// Clone returns a copy that shares no backing array with s.
func (s Scene) Clone() Scene {
	return Scene{
		Elements:       cloneElements(s.Elements),
		LastAdditionAt: s.LastAdditionAt,
	}
}

func cloneElements(items []Element) []Element {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Element, len(items))
	copy(dup, items)
	return dup
}
