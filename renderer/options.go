package renderer

type Options struct {
	// Frame dims.
	FrameW int
	FrameH int

	// Number of cascade levels.
	LevelCount int

	// Probe grid dims at level 0. Zero selects one probe per frame
	// pixel.
	BaseCols int
	BaseRows int

	// Directions per probe at level 0.
	BaseAngular int

	// Per-level probe grid divisor and direction multiplier.
	SpatialFactor int
	AngularFactor int

	// Distance covered by the cascade ray intervals. Zero selects the
	// scene field diagonal.
	MaxExtent float32

	// Transmittance cutoff treated as fully occluded.
	TransmittanceEpsilon float32

	// March step of the interval tracer, in world units.
	TraceStepSize float32

	// Exposure for tonemapping.
	Exposure float32

	// Worker pool size for the cascade build. Zero selects one worker
	// per logical CPU.
	NumWorkers int
}
