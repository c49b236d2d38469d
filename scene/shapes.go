package scene

import (
	"github.com/Marsevil/radiance-cascades/types"
)

// The rasterizers below are the mutation surface used by scene loaders
// and editors. They clip against the domain and must not run while a
// cascade build is in flight.

// Rasterize a filled circle.
func (f *Field) FillCircle(center types.Vec2, radius, opacity float32, emission types.Vec3) {
	minX := int(center[0] - radius)
	maxX := int(center[0] + radius + 1)
	minY := int(center[1] - radius)
	maxY := int(center[1] + radius + 1)

	rSq := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cellCenter := types.XY(float32(x)+0.5, float32(y)+0.5)
			if cellCenter.Sub(center).Dot(cellCenter.Sub(center)) <= rSq {
				f.SetCell(x, y, opacity, emission)
			}
		}
	}
}

// Rasterize a filled axis-aligned rectangle anchored at its min corner.
func (f *Field) FillRect(min types.Vec2, w, h, opacity float32, emission types.Vec3) {
	for y := int(min[1]); y < int(min[1]+h); y++ {
		for x := int(min[0]); x < int(min[0]+w); x++ {
			f.SetCell(x, y, opacity, emission)
		}
	}
}

// Rasterize a thick line segment. Thickness is the full segment width in
// world units; a thickness below one cell still covers the cells the
// segment passes through.
func (f *Field) FillSegment(a, b types.Vec2, thickness, opacity float32, emission types.Vec3) {
	halfT := thickness * 0.5
	if halfT < 0.5 {
		halfT = 0.5
	}

	minX := int(min32(a[0], b[0]) - halfT)
	maxX := int(max32(a[0], b[0]) + halfT + 1)
	minY := int(min32(a[1], b[1]) - halfT)
	maxY := int(max32(a[1], b[1]) + halfT + 1)

	ab := b.Sub(a)
	abLenSq := ab.Dot(ab)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cellCenter := types.XY(float32(x)+0.5, float32(y)+0.5)

			// Distance from cell center to the segment.
			t := float32(0)
			if abLenSq > 0 {
				t = cellCenter.Sub(a).Dot(ab) / abLenSq
				if t < 0 {
					t = 0
				} else if t > 1 {
					t = 1
				}
			}
			closest := a.Add(ab.Mul(t))
			if cellCenter.Sub(closest).Len() <= halfT {
				f.SetCell(x, y, opacity, emission)
			}
		}
	}
}

// Place a single-cell emitter. Handy for point light tests.
func (f *Field) SetPoint(pos types.Vec2, emission types.Vec3) {
	f.SetCell(int(pos[0]), int(pos[1]), 0, emission)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
