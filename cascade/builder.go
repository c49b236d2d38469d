package cascade

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Marsevil/radiance-cascades/log"
	"github.com/Marsevil/radiance-cascades/scene"
	"github.com/Marsevil/radiance-cascades/tracer"
)

var logger = log.New("cascade")

// Returned when Cancel aborts an in-flight build. The partially filled
// store generation carries no meaning and must be Reset before reuse.
var ErrBuildCancelled = errors.New("cascade: build cancelled")

// LevelStats captures the build cost of a single cascade level.
type LevelStats struct {
	Level     int
	Probes    int
	Rays      int
	BuildTime time.Duration
}

// Builder populates cascade levels by tracing every probe's ray interval
// through the scene field. Levels are built strictly level-local: a
// probe's trace depends only on the field and the level constants, never
// on another level, so probes parallelize freely within a level.
type Builder struct {
	field     *scene.Field
	intervals tracer.Tracer
	scheduler BlockScheduler
	workers   int

	cancelled atomic.Bool

	// Per-worker block times of the most recently built level, fed back
	// into adaptive schedulers.
	lastBlockTimes []time.Duration
}

// Create a builder tracing the given field. workers <= 0 selects one
// worker per logical CPU.
func NewBuilder(field *scene.Field, intervals tracer.Tracer, scheduler BlockScheduler, workers int) *Builder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Builder{
		field:     field,
		intervals: intervals,
		scheduler: scheduler,
		workers:   workers,
	}
}

// Abandon the in-flight build. Safe to call from any goroutine; the
// build returns ErrBuildCancelled once the current probe rows complete.
// Cancellation is permanent for this builder; a frame restarted after a
// scene change gets a fresh builder along with its fresh store
// generation.
func (b *Builder) Cancel() {
	b.cancelled.Store(true)
}

// Build every level of the store, coarsest last. Returns per-level build
// statistics in level order.
func (b *Builder) Build(store *Store) ([]LevelStats, error) {
	stats := make([]LevelStats, 0, len(store.Levels()))
	for _, level := range store.Levels() {
		if b.cancelled.Load() {
			return nil, ErrBuildCancelled
		}
		levelStats, err := b.buildLevel(store, level)
		if err != nil {
			return nil, err
		}
		stats = append(stats, levelStats)
	}
	return stats, nil
}

// Build a single level: split its probe rows into per-worker blocks and
// trace them concurrently. The function returns only after every probe
// of the level has been written, which is the full-level barrier the
// merger relies on.
func (b *Builder) buildLevel(store *Store, level Level) (LevelStats, error) {
	start := time.Now()

	assignments := b.scheduler.Schedule(b.workers, level.Rows, b.lastBlockTimes)
	blockTimes := make([]time.Duration, len(assignments))

	var wg sync.WaitGroup
	startRow := 0
	for workerIdx, blockRows := range assignments {
		wg.Add(1)
		go func(workerIdx, startRow, blockRows int) {
			defer wg.Done()
			blockStart := time.Now()
			b.buildBlock(store, level, startRow, blockRows)
			blockTimes[workerIdx] = time.Since(blockStart)
		}(workerIdx, startRow, blockRows)
		startRow += blockRows
	}
	wg.Wait()

	b.lastBlockTimes = blockTimes
	if b.cancelled.Load() {
		return LevelStats{}, ErrBuildCancelled
	}

	elapsed := time.Since(start)
	logger.Infof("built level %d (%dx%dx%d, interval [%.1f, %.1f)) in %s",
		level.Index, level.Cols, level.Rows, level.AngularCount, level.Near, level.Far, elapsed)

	return LevelStats{
		Level:     level.Index,
		Probes:    level.ProbeCount(),
		Rays:      level.RayCount(),
		BuildTime: elapsed,
	}, nil
}

// Trace one contiguous block of probe rows.
func (b *Builder) buildBlock(store *Store, level Level, startRow, blockRows int) {
	domainW := float32(b.field.Width())
	domainH := float32(b.field.Height())

	for row := startRow; row < startRow+blockRows; row++ {
		if b.cancelled.Load() {
			return
		}
		for col := 0; col < level.Cols; col++ {
			origin := level.ProbePosition(col, row, domainW, domainH)
			for dir := 0; dir < level.AngularCount; dir++ {
				res := b.intervals.Trace(origin, level.Direction(dir), level.Near, level.Far)
				store.Set(level.Index, col, row, dir, res.Radiance.Vec4(res.Transmittance))
			}
		}
	}
}
