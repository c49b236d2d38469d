package scene

import (
	"math"
	"testing"

	"github.com/Marsevil/radiance-cascades/types"
)

func TestFieldDimensionValidation(t *testing.T) {
	type spec struct {
		w, h      int
		expectErr bool
	}
	specs := []spec{
		{16, 16, false},
		{1, 1, false},
		{0, 16, true},
		{16, -1, true},
	}

	for index, s := range specs {
		_, err := NewField(s.w, s.h, FilterNearest)
		if s.expectErr && err == nil {
			t.Fatalf("[spec %d] expected error for %dx%d field", index, s.w, s.h)
		}
		if !s.expectErr && err != nil {
			t.Fatalf("[spec %d] unexpected error: %v", index, err)
		}
	}
}

func TestFieldOutOfDomainSamplesAreOpenSpace(t *testing.T) {
	for _, filter := range []Filter{FilterNearest, FilterBilinear} {
		field, err := NewField(8, 8, filter)
		if err != nil {
			t.Fatal(err)
		}

		// Fill everything so a leaking sample would be visible.
		field.FillRect(types.XY(0, 0), 8, 8, 1.0, types.XYZ(1, 1, 1))

		outside := []types.Vec2{
			{-1, 4},
			{4, -0.001},
			{8, 4},
			{4, 8},
			{100, 100},
		}
		for _, pos := range outside {
			if op := field.SampleOpacity(pos); op != 0 {
				t.Fatalf("filter %d: expected zero opacity at %v; got %f", filter, pos, op)
			}
			if em := field.SampleEmission(pos); em != (types.Vec3{}) {
				t.Fatalf("filter %d: expected zero emission at %v; got %v", filter, pos, em)
			}
		}
	}
}

func TestFieldNearestSampling(t *testing.T) {
	field, _ := NewField(4, 4, FilterNearest)
	field.SetCell(2, 1, 0.5, types.XYZ(1, 2, 3))

	if op := field.SampleOpacity(types.XY(2.9, 1.1)); op != 0.5 {
		t.Fatalf("expected opacity 0.5; got %f", op)
	}
	if em := field.SampleEmission(types.XY(2.0, 1.9)); em != types.XYZ(1, 2, 3) {
		t.Fatalf("unexpected emission %v", em)
	}
	if op := field.SampleOpacity(types.XY(1.9, 1.1)); op != 0 {
		t.Fatalf("neighbour cell leaked opacity %f", op)
	}
}

func TestFieldBilinearSampling(t *testing.T) {
	field, _ := NewField(4, 4, FilterBilinear)
	field.SetCell(1, 1, 1.0, types.XYZ(1, 0, 0))
	field.SetCell(2, 1, 0.0, types.Vec3{})

	// Exactly on the cell center the neighbours carry zero weight.
	if op := field.SampleOpacity(types.XY(1.5, 1.5)); !approxEq(op, 1.0) {
		t.Fatalf("expected opacity 1.0 at cell center; got %f", op)
	}

	// Midway between the two cell centers along x.
	if op := field.SampleOpacity(types.XY(2.0, 1.5)); !approxEq(op, 0.5) {
		t.Fatalf("expected opacity 0.5 midway; got %f", op)
	}

	em := field.SampleEmission(types.XY(2.0, 1.5))
	if !approxEq(em[0], 0.5) || em[1] != 0 || em[2] != 0 {
		t.Fatalf("unexpected interpolated emission %v", em)
	}
}

func TestFieldNegativeEmissionIsClamped(t *testing.T) {
	field, _ := NewField(4, 4, FilterNearest)
	field.SetCell(0, 0, 0, types.XYZ(-1, 0.5, -0.25))

	em := field.SampleEmission(types.XY(0.5, 0.5))
	if em != types.XYZ(0, 0.5, 0) {
		t.Fatalf("expected clamped emission; got %v", em)
	}
}

func TestFieldOpacityIsClamped(t *testing.T) {
	field, _ := NewField(4, 4, FilterNearest)

	type spec struct {
		opacity float32
		exp     float32
	}
	specs := []spec{
		{-1, 0},
		{3, 1},
		{float32(math.NaN()), 0},
		{0.5, 0.5},
	}

	for index, s := range specs {
		field.SetCell(0, 0, s.opacity, types.Vec3{})
		if op := field.SampleOpacity(types.XY(0.5, 0.5)); op != s.exp {
			t.Fatalf("[spec %d] expected opacity %f; got %f", index, s.exp, op)
		}
	}
}

func TestFillSegmentCoversPath(t *testing.T) {
	field, _ := NewField(16, 16, FilterNearest)
	field.FillSegment(types.XY(2, 8), types.XY(13, 8), 1.0, 1.0, types.Vec3{})

	for x := 2; x <= 12; x++ {
		if op := field.SampleOpacity(types.XY(float32(x)+0.5, 8.5)); op != 1.0 {
			t.Fatalf("expected wall cell at x=%d", x)
		}
	}
	if op := field.SampleOpacity(types.XY(8.5, 2.5)); op != 0 {
		t.Fatalf("segment rasterizer painted far-away cell")
	}
}

func approxEq(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-5
}
