package renderer

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marsevil/radiance-cascades/cascade"
	"github.com/Marsevil/radiance-cascades/scene"
	"github.com/Marsevil/radiance-cascades/types"
)

func TestNewDefaultValidation(t *testing.T) {
	field, err := scene.NewField(64, 64, scene.FilterBilinear)
	require.NoError(t, err)

	_, err = NewDefault(nil, cascade.NaiveScheduler(), Options{FrameW: 64, FrameH: 64})
	assert.ErrorIs(t, err, ErrSceneNotDefined)

	_, err = NewDefault(field, nil, Options{FrameW: 64, FrameH: 64})
	assert.ErrorIs(t, err, ErrSchedulerNotDefined)

	_, err = NewDefault(field, cascade.NaiveScheduler(), Options{FrameW: 0, FrameH: 64})
	assert.ErrorIs(t, err, ErrInvalidFrameDims)

	// Hierarchy invariant violations surface before any build starts.
	_, err = NewDefault(field, cascade.NaiveScheduler(), Options{
		FrameW: 64, FrameH: 64,
		LevelCount: 12, // coarsens a 64-probe grid away entirely
	})
	var confErr *cascade.ConfigError
	require.ErrorAs(t, err, &confErr)
}

// A single emitter in an otherwise open 256x256 domain: irradiance must
// fall off monotonically with distance from the source and stay radially
// symmetric within interpolation tolerance.
func TestRenderPointSourceFalloff(t *testing.T) {
	field, err := scene.NewField(256, 256, scene.FilterBilinear)
	require.NoError(t, err)
	field.FillCircle(types.XY(128, 128), 8, 0, types.XYZ(1, 1, 1))

	r, err := NewDefault(field, cascade.AdaptiveScheduler(), Options{
		FrameW: 128, FrameH: 128,
		LevelCount:  3,
		BaseCols:    64,
		BaseRows:    64,
		BaseAngular: 8,
	})
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Render())
	irradiance, outW, outH := r.Irradiance()

	luminanceAt := func(worldX, worldY float32) float64 {
		px := int(worldX * float32(outW) / 256)
		py := int(worldY * float32(outH) / 256)
		idx := (py*outW + px) * 3
		return float64(irradiance[idx] + irradiance[idx+1] + irradiance[idx+2])
	}

	radii := []float64{24, 40, 60, 80, 100}
	ringMeans := make([]float64, len(radii))
	for ri, radius := range radii {
		samples := make([]float64, 0, 8)
		mean := 0.0
		for a := 0; a < 8; a++ {
			theta := 2 * math.Pi * float64(a) / 8
			lum := luminanceAt(
				float32(128+radius*math.Cos(theta)),
				float32(128+radius*math.Sin(theta)),
			)
			samples = append(samples, lum)
			mean += lum
		}
		mean /= 8
		ringMeans[ri] = mean
		require.Greater(t, mean, 0.0, "ring %f received no light", radius)

		// Radial symmetry within interpolation tolerance.
		for a, lum := range samples {
			assert.Greater(t, lum, mean/3, "ring %f sample %d too dark", radius, a)
			assert.Less(t, lum, mean*3, "ring %f sample %d too bright", radius, a)
		}
	}

	// Monotone falloff across the rings.
	for ri := 1; ri < len(ringMeans); ri++ {
		assert.Less(t, ringMeans[ri], ringMeans[ri-1],
			"irradiance does not fall off between rings %f and %f", radii[ri-1], radii[ri])
	}

	stats := r.Stats()
	require.Len(t, stats.Levels, 3)
	assert.Positive(t, stats.RenderTime)
	var rayPercent float32
	for _, ls := range stats.Levels {
		rayPercent += ls.RayPercent
	}
	assert.InDelta(t, 100, rayPercent, 0.01)
}

// A fully opaque wall between a source and a pixel kills that pixel's
// contribution from the source direction while pixels with a clear line
// of sight are unaffected.
func TestRenderWallOcclusion(t *testing.T) {
	render := func(withWall bool) []float32 {
		field, err := scene.NewField(128, 128, scene.FilterBilinear)
		require.NoError(t, err)
		field.FillCircle(types.XY(32, 64), 6, 0, types.XYZ(1, 1, 1))
		if withWall {
			field.FillSegment(types.XY(64, 32), types.XY(64, 96), 2, 1, types.Vec3{})
		}

		r, err := NewDefault(field, cascade.NaiveScheduler(), Options{
			FrameW: 64, FrameH: 64,
			LevelCount:  3,
			BaseAngular: 8,
		})
		require.NoError(t, err)
		defer r.Close()

		require.NoError(t, r.Render())
		irradiance, _, _ := r.Irradiance()
		out := make([]float32, len(irradiance))
		copy(out, irradiance)
		return out
	}

	open := render(false)
	walled := render(true)

	luminance := func(buf []float32, worldX, worldY int) float64 {
		idx := ((worldY/2)*64 + worldX/2) * 3
		return float64(buf[idx] + buf[idx+1] + buf[idx+2])
	}

	// Behind the wall, looking at the source through it.
	openBehind := luminance(open, 96, 64)
	walledBehind := luminance(walled, 96, 64)
	require.Greater(t, openBehind, 0.0)
	assert.Less(t, walledBehind, openBehind*0.15,
		"wall leaked light: %f vs %f unoccluded", walledBehind, openBehind)

	// On the source side the wall changes nothing.
	openFront := luminance(open, 16, 64)
	walledFront := luminance(walled, 16, 64)
	require.Greater(t, openFront, 0.0)
	assert.InDelta(t, openFront, walledFront, openFront*0.01)
}

func TestWriteFrame(t *testing.T) {
	field, err := scene.NewField(32, 32, scene.FilterNearest)
	require.NoError(t, err)
	field.FillCircle(types.XY(16, 16), 4, 0, types.XYZ(2, 2, 2))

	r, err := NewDefault(field, cascade.NaiveScheduler(), Options{
		FrameW: 32, FrameH: 32,
		LevelCount: 2,
	})
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Render())

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, WriteFrame(path, r.FrameBuffer(), 32, 32))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 32, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())

	require.Error(t, WriteFrame(
		filepath.Join(t.TempDir(), "bad.png"),
		r.FrameBuffer(), 16, 16),
		"mismatched dimensions must be rejected")
}
