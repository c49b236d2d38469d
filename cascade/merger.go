package cascade

import (
	"github.com/Marsevil/radiance-cascades/types"
)

// Merger combines the cascade levels into a final per-pixel irradiance
// buffer. Merging walks the hierarchy top-down: every probe direction of
// level l picks up the radiance of the refined directions of level l+1
// (spatially interpolated at the probe position), attenuated by the
// probe's own exit transmittance. After the walk, level 0 carries the
// full-range radiance and resolving a pixel only touches level 0.
//
// The merger owns the irradiance buffer; it is overwritten on every
// Resolve and handed out read-only.
type Merger struct {
	store            *Store
	domainW, domainH float32
	angularFactor    int

	outW, outH int
	irradiance []float32
}

// Create a merger resolving into an outW x outH pixel buffer over the
// given scene domain. angularFactor must match the direction growth the
// store's levels were derived with.
func NewMerger(store *Store, domainW, domainH float32, angularFactor, outW, outH int) *Merger {
	return &Merger{
		store:         store,
		domainW:       domainW,
		domainH:       domainH,
		angularFactor: angularFactor,
		outW:          outW,
		outH:          outH,
		irradiance:    make([]float32, outW*outH*3),
	}
}

// The most recently resolved irradiance buffer, as a dense RGB array
// plus its pixel dimensions. Read-only for callers.
func (m *Merger) Irradiance() ([]float32, int, int) {
	return m.irradiance, m.outW, m.outH
}

// Merge all levels and resolve the irradiance buffer from a freshly
// built store. The merge folds upper-level radiance into the level
// arenas in place, so the store must be rebuilt before the next call.
func (m *Merger) Resolve() []float32 {
	levels := m.store.Levels()
	for l := len(levels) - 2; l >= 0; l-- {
		m.mergeLevel(levels[l], levels[l+1])
	}
	m.resolvePixels(levels[0])
	return m.irradiance
}

// Fold the (already merged) level "upper" into "level": for every probe
// direction, average the angularFactor refined upper directions sampled
// bilinearly at the probe position, then composite behind the probe's
// own interval using its exit transmittance.
func (m *Merger) mergeLevel(level, upper Level) {
	data := m.store.LevelData(level.Index)
	upperData := m.store.LevelData(upper.Index)
	invBranch := 1 / float32(m.angularFactor)

	for row := 0; row < level.Rows; row++ {
		for col := 0; col < level.Cols; col++ {
			pos := level.ProbePosition(col, row, m.domainW, m.domainH)
			x0, x1, wx := gridWeights(pos[0], upper.Cols, m.domainW)
			y0, y1, wy := gridWeights(pos[1], upper.Rows, m.domainH)

			probeBase := (row*level.Cols + col) * level.AngularCount
			for dir := 0; dir < level.AngularCount; dir++ {
				var branch types.Vec4
				for sub := 0; sub < m.angularFactor; sub++ {
					upperDir := dir*m.angularFactor + sub
					branch = add4(branch, bilinearGather(upperData, upper, x0, x1, y0, y1, wx, wy, upperDir))
				}
				branch = scale4(branch, invBranch)

				cur := data[probeBase+dir]
				data[probeBase+dir] = types.Vec4{
					cur[0] + cur[3]*branch[0],
					cur[1] + cur[3]*branch[1],
					cur[2] + cur[3]*branch[2],
					cur[3] * branch[3],
				}
			}
		}
	}
}

// Resolve every output pixel from the fully merged level 0 by bilinear
// interpolation over the four nearest probes and uniform averaging over
// the level's directions. Both weight sets form a partition of unity, so
// the resolve neither gains nor loses energy.
func (m *Merger) resolvePixels(level Level) {
	data := m.store.LevelData(level.Index)
	invDirs := 1 / float32(level.AngularCount)

	for py := 0; py < m.outH; py++ {
		for px := 0; px < m.outW; px++ {
			pos := types.XY(
				(float32(px)+0.5)*m.domainW/float32(m.outW),
				(float32(py)+0.5)*m.domainH/float32(m.outH),
			)
			x0, x1, wx := gridWeights(pos[0], level.Cols, m.domainW)
			y0, y1, wy := gridWeights(pos[1], level.Rows, m.domainH)

			var sum types.Vec4
			for dir := 0; dir < level.AngularCount; dir++ {
				sum = add4(sum, bilinearGather(data, level, x0, x1, y0, y1, wx, wy, dir))
			}

			out := (py*m.outW + px) * 3
			m.irradiance[out] = sum[0] * invDirs
			m.irradiance[out+1] = sum[1] * invDirs
			m.irradiance[out+2] = sum[2] * invDirs
		}
	}
}

// Gather one direction slot from the four probes around a position.
func bilinearGather(data []types.Vec4, level Level, x0, x1, y0, y1 int, wx, wy float32, dir int) types.Vec4 {
	n := level.AngularCount
	v00 := data[(y0*level.Cols+x0)*n+dir]
	v10 := data[(y0*level.Cols+x1)*n+dir]
	v01 := data[(y1*level.Cols+x0)*n+dir]
	v11 := data[(y1*level.Cols+x1)*n+dir]

	top := add4(scale4(v00, 1-wx), scale4(v10, wx))
	bot := add4(scale4(v01, 1-wx), scale4(v11, wx))
	return add4(scale4(top, 1-wy), scale4(bot, wy))
}

// Map a world coordinate to the two nearest probe columns (or rows) of a
// grid with the given cell count over the domain, plus the interpolation
// weight of the second one. The weight of the first is its complement,
// so the pair always forms a partition of unity. At the domain edges the
// indices clamp to the available probes, which renormalizes the weights
// over the clamped neighbor subset.
func gridWeights(coord float32, cells int, domain float32) (i0, i1 int, w1 float32) {
	g := coord*float32(cells)/domain - 0.5
	fi := floor32(g)
	i0 = int(fi)
	w1 = g - fi

	i1 = clampIndex(i0+1, cells)
	i0 = clampIndex(i0, cells)
	if w1 < 0 {
		w1 = 0
	} else if w1 > 1 {
		w1 = 1
	}
	return i0, i1, w1
}

func add4(a, b types.Vec4) types.Vec4 {
	return types.Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func scale4(v types.Vec4, s float32) types.Vec4 {
	return types.Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

func floor32(v float32) float32 {
	iv := float32(int(v))
	if v < 0 && iv != v {
		iv--
	}
	return iv
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
