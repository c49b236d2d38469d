package cascade

import (
	"sync/atomic"

	"github.com/Marsevil/radiance-cascades/types"
)

// Store owns the radiance interval buffers of every cascade level. Each
// level is a single flat arena indexed by (row, col, direction) so the
// parallel build step never allocates or synchronizes per probe.
//
// Every entry packs the RGB radiance gathered over the probe's ray
// interval together with the interval's exit transmittance in W.
type Store struct {
	levels []Level
	data   [][]types.Vec4

	// Bumped on Reset so an abandoned in-flight build can be detected by
	// its consumer. See the frame cancellation contract.
	generation uint64
}

// Allocate a store for the given level layout.
func NewStore(levels []Level) *Store {
	s := &Store{
		levels: levels,
		data:   make([][]types.Vec4, len(levels)),
	}
	for i, level := range levels {
		s.data[i] = make([]types.Vec4, level.RayCount())
	}
	return s
}

// The level layouts backing this store.
func (s *Store) Levels() []Level {
	return s.levels
}

// Flat arena index for a probe direction slot.
func (s *Store) index(level Level, col, row, dir int) int {
	return (row*level.Cols+col)*level.AngularCount + dir
}

// Read one probe interval entry.
func (s *Store) At(levelIndex, col, row, dir int) types.Vec4 {
	return s.data[levelIndex][s.index(s.levels[levelIndex], col, row, dir)]
}

// Write one probe interval entry.
func (s *Store) Set(levelIndex, col, row, dir int, v types.Vec4) {
	s.data[levelIndex][s.index(s.levels[levelIndex], col, row, dir)] = v
}

// Read-only reference to a level's arena, used by the merger to gather
// across levels without back-references from probes into the store.
func (s *Store) LevelData(levelIndex int) []types.Vec4 {
	return s.data[levelIndex]
}

// Generation of the current contents.
func (s *Store) Generation() uint64 {
	return atomic.LoadUint64(&s.generation)
}

// Discard all interval data and start a new generation. Used when the
// scene changed under an in-flight frame and the partially built
// cascades are abandoned wholesale.
func (s *Store) Reset() {
	for _, arena := range s.data {
		clear(arena)
	}
	atomic.AddUint64(&s.generation, 1)
}
