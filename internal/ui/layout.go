package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the countdown renders on one line.
	LayoutCompactWidth = 64

	// LayoutPanelWidth is the width of the settings panel.
	LayoutPanelWidth = 40

	// LayoutMinCanvasWidth keeps the scene visible next to the settings panel.
	LayoutMinCanvasWidth = 20
)

// Snowfall density by terminal width.
const (
	SnowSmallWidth  = 96  // below this: SnowSmallCount flakes
	SnowMediumWidth = 240 // below this: SnowMediumCount flakes

	SnowSmallCount  = 30
	SnowMediumCount = 40
	SnowLargeCount  = 50
)

// Timing constants.
const (
	// DefaultUIInterval refreshes the countdown and snapshot.
	DefaultUIInterval = time.Second

	// SnowFrameInterval advances the snowfall animation.
	SnowFrameInterval = 100 * time.Millisecond

	// ActivityLines is how many log entries the settings panel shows.
	ActivityLines = 8
)
