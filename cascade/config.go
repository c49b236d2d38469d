package cascade

import (
	"fmt"
	"math"

	"github.com/Marsevil/radiance-cascades/types"
)

// Config carries the tunable parameters of the cascade hierarchy. The
// zero value is not usable; call DefaultConfig and override as needed.
type Config struct {
	// Number of cascade levels.
	LevelCount int

	// Probe grid dimensions at level 0 (the finest level).
	BaseCols int
	BaseRows int

	// Number of sampled directions per probe at level 0.
	BaseAngular int

	// Per-level divisor for the probe grid dimensions.
	SpatialFactor int

	// Per-level multiplier for the direction count. Also drives the
	// geometric growth of the ray intervals so that longer intervals are
	// always paired with denser angular sampling.
	AngularFactor int

	// Distance covered by the union of all level ray intervals.
	MaxExtent float32

	// Transmittance threshold below which a ray is fully occluded.
	TransmittanceEpsilon float32

	// March step of the interval tracer, in world units.
	TraceStepSize float32
}

// A plausible starting point for a frameW x frameH output: one level-0
// probe per output pixel, four directions, quadrupling per level.
func DefaultConfig(frameW, frameH int) Config {
	return Config{
		LevelCount:           4,
		BaseCols:             frameW,
		BaseRows:             frameH,
		BaseAngular:          4,
		SpatialFactor:        2,
		AngularFactor:        4,
		MaxExtent:            float32(math.Hypot(float64(frameW), float64(frameH))),
		TransmittanceEpsilon: 1e-4,
		TraceStepSize:        1.0,
	}
}

// ConfigError reports a cascade parameter that violates the hierarchy
// invariants. Configuration problems are fatal and surface before any
// build starts; parameters are never silently clamped.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cascade: invalid configuration: %s %s", e.Param, e.Reason)
}

// Level describes the probe layout of one cascade level: the probe grid
// dimensions, the direction count and the ray interval traced by every
// probe of the level. Levels coarsen spatially and grow angularly as the
// index increases; their intervals tile [0, MaxExtent] with no gap.
type Level struct {
	Index        int
	Cols, Rows   int
	AngularCount int
	Near, Far    float32
}

// Number of probes on this level.
func (l Level) ProbeCount() int {
	return l.Cols * l.Rows
}

// Number of traced rays on this level.
func (l Level) RayCount() int {
	return l.ProbeCount() * l.AngularCount
}

// World position of a probe, derived from its spatial index and the
// level grid resolution over the scene domain. Probes sit at the centers
// of a uniform grid.
func (l Level) ProbePosition(col, row int, domainW, domainH float32) types.Vec2 {
	return types.XY(
		(float32(col)+0.5)*domainW/float32(l.Cols),
		(float32(row)+0.5)*domainH/float32(l.Rows),
	)
}

// Unit direction of an angular sample, derived from its angular index
// and the level direction count. Directions are evenly spread over the
// full circle with a half-step offset so no level ever samples along the
// exact grid axes of another.
func (l Level) Direction(dir int) types.Vec2 {
	theta := 2 * math.Pi * (float64(dir) + 0.5) / float64(l.AngularCount)
	return types.XY(float32(math.Cos(theta)), float32(math.Sin(theta)))
}

// Validate the raw parameters. Derived per-level invariants (strict
// spatial decrease with the grid still at least one probe wide) are
// checked by Levels.
func (c Config) Validate() error {
	switch {
	case c.LevelCount < 1:
		return &ConfigError{"LevelCount", "must be at least 1"}
	case c.BaseCols < 1 || c.BaseRows < 1:
		return &ConfigError{"BaseCols/BaseRows", "must be at least 1"}
	case c.BaseAngular < 1:
		return &ConfigError{"BaseAngular", "must be at least 1"}
	case c.SpatialFactor < 2:
		return &ConfigError{"SpatialFactor", "must be at least 2"}
	case c.AngularFactor < 2:
		return &ConfigError{"AngularFactor", "must be at least 2"}
	case !(c.MaxExtent > 0):
		return &ConfigError{"MaxExtent", "must be positive"}
	case !(c.TransmittanceEpsilon > 0) || c.TransmittanceEpsilon >= 1:
		return &ConfigError{"TransmittanceEpsilon", "must be in (0,1)"}
	case !(c.TraceStepSize > 0):
		return &ConfigError{"TraceStepSize", "must be positive"}
	}
	return nil
}

// Derive the per-level probe layouts. The ray interval boundaries follow
// a geometric series with ratio AngularFactor chosen so that the union
// of all intervals is exactly [0, MaxExtent]:
//
//	far(l) = MaxExtent * (g^(l+1) - 1) / (g^LevelCount - 1)
//
// with near(l+1) = far(l); consecutive intervals neither overlap nor
// leave gaps.
func (c Config) Levels() ([]Level, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	g := float64(c.AngularFactor)
	denom := math.Pow(g, float64(c.LevelCount)) - 1

	levels := make([]Level, c.LevelCount)
	near := float32(0)
	for l := 0; l < c.LevelCount; l++ {
		spatialDiv := intPow(c.SpatialFactor, l)
		cols := c.BaseCols / spatialDiv
		rows := c.BaseRows / spatialDiv
		if cols < 1 || rows < 1 {
			return nil, &ConfigError{"LevelCount", fmt.Sprintf("level %d coarsens the %dx%d base grid away entirely", l, c.BaseCols, c.BaseRows)}
		}
		if l > 0 && (cols >= levels[l-1].Cols || rows >= levels[l-1].Rows) {
			return nil, &ConfigError{"SpatialFactor", fmt.Sprintf("level %d does not strictly coarsen the probe grid", l)}
		}

		far := c.MaxExtent
		if l < c.LevelCount-1 {
			far = c.MaxExtent * float32((math.Pow(g, float64(l+1))-1)/denom)
		}

		levels[l] = Level{
			Index:        l,
			Cols:         cols,
			Rows:         rows,
			AngularCount: c.BaseAngular * intPow(c.AngularFactor, l),
			Near:         near,
			Far:          far,
		}
		near = far
	}

	return levels, nil
}

func intPow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}
