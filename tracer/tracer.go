package tracer

import (
	"math"

	"github.com/Marsevil/radiance-cascades/log"
	"github.com/Marsevil/radiance-cascades/scene"
	"github.com/Marsevil/radiance-cascades/types"
)

var logger = log.New("tracer")

// Result of tracing a single ray interval: the radiance gathered inside
// the interval and the residual transmittance at its far end. Downstream
// cascade levels multiply their own contribution by the exit
// transmittance, which is what makes the additive cross-level merge
// correct in the presence of occluders.
//
// Radiance components are never negative; transmittance is in [0,1].
type Result struct {
	Radiance      types.Vec3
	Transmittance float32
}

// Tracer is implemented by anything that can evaluate radiance transport
// along a ray interval. Traces are pure compute with no side effects and
// may run concurrently.
type Tracer interface {
	// Trace the ray origin + dir*t for t in [near, far).
	Trace(origin, dir types.Vec2, near, far float32) Result
}

// A fixed-step volume marcher over a scene field.
type fieldTracer struct {
	field    *scene.Field
	stepSize float32
	epsilon  float32
}

// Create a tracer marching the given field. stepSize is the march step
// in world units; epsilon is the transmittance threshold below which a
// ray is treated as fully occluded.
func NewFieldTracer(field *scene.Field, stepSize, epsilon float32) Tracer {
	return &fieldTracer{
		field:    field,
		stepSize: stepSize,
		epsilon:  epsilon,
	}
}

func (t *fieldTracer) Trace(origin, dir types.Vec2, near, far float32) Result {
	res := Result{Transmittance: 1}
	if far <= near {
		return res
	}

	for dist := near; dist < far; dist += t.stepSize {
		stepLen := t.stepSize
		if dist+stepLen > far {
			stepLen = far - dist
		}

		// Sample at the segment midpoint of this step.
		pos := origin.Add(dir.Mul(dist + stepLen*0.5))

		emission := t.field.SampleEmission(pos)
		res.Radiance = res.Radiance.Add(emission.Mul(res.Transmittance * stepLen))

		opacity := t.field.SampleOpacity(pos)
		if opacity >= 1 {
			// Hard occluder. The interval beyond it contributes nothing.
			res.Transmittance = 0
			break
		}
		if opacity > 0 {
			res.Transmittance *= pow32(1-opacity, stepLen)
		}

		// A fully occluded ray is a legitimate result, not an error.
		if res.Transmittance < t.epsilon {
			break
		}
	}

	return t.sanitize(res)
}

// Clamp results that left their valid range. A pathological step size
// can push the march into NaN territory; a lighting glitch is preferable
// to a crashed frame, so the result is repaired and the event logged.
func (t *fieldTracer) sanitize(res Result) Result {
	clamped := res
	clamped.Radiance = res.Radiance.ClampPositive()
	if !(clamped.Transmittance >= 0) {
		clamped.Transmittance = 0
	} else if clamped.Transmittance > 1 {
		clamped.Transmittance = 1
	}

	if clamped != res {
		logger.Warningf("clamped unstable trace result (radiance %v, transmittance %f)", res.Radiance, res.Transmittance)
	}
	return clamped
}

func pow32(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
