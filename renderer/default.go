package renderer

import (
	"math"
	"time"

	"github.com/Marsevil/radiance-cascades/cascade"
	"github.com/Marsevil/radiance-cascades/log"
	"github.com/Marsevil/radiance-cascades/scene"
	"github.com/Marsevil/radiance-cascades/tracer"
)

var logger = log.New("renderer")

// The default CPU renderer. It owns the cascade store and merger for one
// scene field and rebuilds both every frame; the field itself must stay
// untouched while a frame is in flight.
type defaultRenderer struct {
	field     *scene.Field
	scheduler cascade.BlockScheduler
	options   Options

	config    cascade.Config
	levels    []cascade.Level
	intervals tracer.Tracer
	store     *cascade.Store
	merger    *cascade.Merger

	frameBuffer []uint8
	stats       FrameStats
}

// Create a new default renderer using the specified block scheduler.
// Cascade parameters are validated here, before any build starts;
// invalid hierarchies are rejected as a *cascade.ConfigError and never
// silently clamped.
func NewDefault(field *scene.Field, scheduler cascade.BlockScheduler, opts Options) (Renderer, error) {
	if field == nil {
		return nil, ErrSceneNotDefined
	}
	if scheduler == nil {
		return nil, ErrSchedulerNotDefined
	}
	if opts.FrameW <= 0 || opts.FrameH <= 0 {
		return nil, ErrInvalidFrameDims
	}

	config := cascadeConfig(field, opts)
	levels, err := config.Levels()
	if err != nil {
		return nil, err
	}

	if opts.Exposure == 0 {
		opts.Exposure = 1
	}

	store := cascade.NewStore(levels)
	r := &defaultRenderer{
		field:     field,
		scheduler: scheduler,
		options:   opts,
		config:    config,
		levels:    levels,
		intervals: tracer.NewFieldTracer(field, config.TraceStepSize, config.TransmittanceEpsilon),
		store:     store,
		merger: cascade.NewMerger(
			store,
			float32(field.Width()), float32(field.Height()),
			config.AngularFactor,
			opts.FrameW, opts.FrameH,
		),
		frameBuffer: make([]uint8, opts.FrameW*opts.FrameH*4),
	}

	logger.Noticef("cascade hierarchy: %d levels, %d rays per frame", len(levels), totalRays(levels))
	return r, nil
}

// Translate renderer options into a cascade configuration, filling in
// the scene-derived defaults.
func cascadeConfig(field *scene.Field, opts Options) cascade.Config {
	config := cascade.DefaultConfig(opts.FrameW, opts.FrameH)
	config.MaxExtent = field.Extent()

	if opts.LevelCount != 0 {
		config.LevelCount = opts.LevelCount
	}
	if opts.BaseCols != 0 {
		config.BaseCols = opts.BaseCols
	}
	if opts.BaseRows != 0 {
		config.BaseRows = opts.BaseRows
	}
	if opts.BaseAngular != 0 {
		config.BaseAngular = opts.BaseAngular
	}
	if opts.SpatialFactor != 0 {
		config.SpatialFactor = opts.SpatialFactor
	}
	if opts.AngularFactor != 0 {
		config.AngularFactor = opts.AngularFactor
	}
	if opts.MaxExtent != 0 {
		config.MaxExtent = opts.MaxExtent
	}
	if opts.TransmittanceEpsilon != 0 {
		config.TransmittanceEpsilon = opts.TransmittanceEpsilon
	}
	if opts.TraceStepSize != 0 {
		config.TraceStepSize = opts.TraceStepSize
	}
	return config
}

func (r *defaultRenderer) Render() error {
	start := time.Now()

	// Build every level; a fresh builder per frame keeps cancellation
	// generations apart.
	builder := cascade.NewBuilder(r.field, r.intervals, r.scheduler, r.options.NumWorkers)
	levelStats, err := builder.Build(r.store)
	if err != nil {
		return err
	}

	mergeStart := time.Now()
	irradiance := r.merger.Resolve()
	mergeTime := time.Since(mergeStart)

	r.tonemap(irradiance)

	r.stats = FrameStats{
		Levels:     make([]LevelStat, len(levelStats)),
		MergeTime:  mergeTime,
		RenderTime: time.Since(start),
	}
	total := totalRays(r.levels)
	for i, ls := range levelStats {
		r.stats.Levels[i] = LevelStat{
			Level:      ls.Level,
			Probes:     ls.Probes,
			Rays:       ls.Rays,
			RayPercent: 100 * float32(ls.Rays) / float32(total),
			BuildTime:  ls.BuildTime,
		}
	}

	logger.Noticef("rendered frame in %s (merge %s)", r.stats.RenderTime, mergeTime)
	return nil
}

func (r *defaultRenderer) Close() {
	r.store = nil
	r.merger = nil
	r.frameBuffer = nil
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) Irradiance() ([]float32, int, int) {
	return r.merger.Irradiance()
}

func (r *defaultRenderer) FrameBuffer() []uint8 {
	return r.frameBuffer
}

// HDR -> LDR mapping with a simple exponential exposure curve.
func (r *defaultRenderer) tonemap(irradiance []float32) {
	exposure := float64(r.options.Exposure)
	for i := 0; i < len(irradiance)/3; i++ {
		for c := 0; c < 3; c++ {
			ldr := 1 - math.Exp(-float64(irradiance[i*3+c])*exposure)
			r.frameBuffer[i*4+c] = uint8(ldr*255 + 0.5)
		}
		r.frameBuffer[i*4+3] = 0xff
	}
}

func totalRays(levels []cascade.Level) int {
	total := 0
	for _, level := range levels {
		total += level.RayCount()
	}
	return total
}
