package scene

import (
	"fmt"

	"github.com/Marsevil/radiance-cascades/types"
)

// Filter selects the reconstruction filter used when sampling the field
// at non-integer positions.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterBilinear
)

// Field is a rasterized 2D scene over the domain [0,W) x [0,H) at one
// cell per world unit. Each cell carries an opacity in [0,1] acting as a
// per-unit-distance absorption coefficient (>= 1 is a hard occluder) and
// a non-negative RGB emission.
//
// The field is read-only for the duration of a build+merge pass; edits
// must be synchronized between frames by the caller.
type Field struct {
	width  int
	height int
	filter Filter

	opacity  []float32
	emission []types.Vec3
}

// Create a zero-initialized (open, non-emissive) field.
func NewField(width, height int, filter Filter) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("scene: invalid field dimensions %dx%d", width, height)
	}

	return &Field{
		width:    width,
		height:   height,
		filter:   filter,
		opacity:  make([]float32, width*height),
		emission: make([]types.Vec3, width*height),
	}, nil
}

// Field width in world units.
func (f *Field) Width() int {
	return f.width
}

// Field height in world units.
func (f *Field) Height() int {
	return f.height
}

// Length of the domain diagonal. This is the natural upper bound for the
// cascade ray interval range.
func (f *Field) Extent() float32 {
	return types.XY(float32(f.width), float32(f.height)).Len()
}

// Set opacity and emission for a single cell. Out-of-domain indices are
// ignored so shape rasterizers can clip against the domain for free.
// Opacity is clamped to [0,1] and emission to non-negative values; NaN
// inputs collapse to zero.
func (f *Field) SetCell(x, y int, opacity float32, emission types.Vec3) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	idx := y*f.width + x
	f.opacity[idx] = clampUnit(opacity)
	f.emission[idx] = emission.ClampPositive()
}

// Sample the absorption coefficient at a world position. Positions
// outside the domain are open space and contribute zero.
func (f *Field) SampleOpacity(pos types.Vec2) float32 {
	if !f.contains(pos) {
		return 0
	}

	if f.filter == FilterBilinear {
		c00, c10, c01, c11, wx, wy := f.bilinearCells(pos)
		top := f.opacity[c00]*(1-wx) + f.opacity[c10]*wx
		bot := f.opacity[c01]*(1-wx) + f.opacity[c11]*wx
		return top*(1-wy) + bot*wy
	}

	x, y := int(pos[0]), int(pos[1])
	return f.opacity[y*f.width+x]
}

// Sample emitted radiance at a world position. Positions outside the
// domain are open space and contribute zero.
func (f *Field) SampleEmission(pos types.Vec2) types.Vec3 {
	if !f.contains(pos) {
		return types.Vec3{}
	}

	if f.filter == FilterBilinear {
		c00, c10, c01, c11, wx, wy := f.bilinearCells(pos)
		top := f.emission[c00].Mul(1 - wx).Add(f.emission[c10].Mul(wx))
		bot := f.emission[c01].Mul(1 - wx).Add(f.emission[c11].Mul(wx))
		return top.Mul(1 - wy).Add(bot.Mul(wy))
	}

	x, y := int(pos[0]), int(pos[1])
	return f.emission[y*f.width+x]
}

func (f *Field) contains(pos types.Vec2) bool {
	return pos[0] >= 0 && pos[1] >= 0 && pos[0] < float32(f.width) && pos[1] < float32(f.height)
}

// Locate the four cells surrounding a world position together with the
// fractional interpolation weights. Neighbor indices are clamped to the
// domain so edge samples degenerate to the nearest available cells; the
// weights always sum to one.
func (f *Field) bilinearCells(pos types.Vec2) (c00, c10, c01, c11 int, wx, wy float32) {
	// Cell centers sit at integer+0.5 coordinates.
	gx := pos[0] - 0.5
	gy := pos[1] - 0.5

	x0 := int(floor32(gx))
	y0 := int(floor32(gy))
	wx = gx - float32(x0)
	wy = gy - float32(y0)

	x1 := clampIndex(x0+1, f.width)
	y1 := clampIndex(y0+1, f.height)
	x0 = clampIndex(x0, f.width)
	y0 = clampIndex(y0, f.height)

	c00 = y0*f.width + x0
	c10 = y0*f.width + x1
	c01 = y1*f.width + x0
	c11 = y1*f.width + x1
	return c00, c10, c01, c11, wx, wy
}

// NaN-safe clamp to [0,1].
func clampUnit(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
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

func floor32(v float32) float32 {
	iv := float32(int(v))
	if v < 0 && iv != v {
		iv--
	}
	return iv
}
