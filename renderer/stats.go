package renderer

import "time"

type LevelStat struct {
	// The cascade level index.
	Level int

	// Probe count and traced rays for this level.
	Probes int
	Rays   int

	// The percentage of the frame's total rays this level represents.
	RayPercent float32

	// Build time for this level.
	BuildTime time.Duration
}

type FrameStats struct {
	// Individual cascade level stats.
	Levels []LevelStat

	// Merge + resolve time for the frame.
	MergeTime time.Duration

	// Total render time for entire frame.
	RenderTime time.Duration
}
