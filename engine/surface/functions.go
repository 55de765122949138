package surface

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
)

// Function is a pure surface generator mapping grid coordinates and time to a point.
type Function func(u, v, t float32) common.Point3

// Lookup returns the generator for kind. Unknown kinds resolve to Torus, the last entry
// of the catalog.
//
// Parameters:
//   - kind: the surface to look up
//
// Returns:
//   - Function: the surface generator
func Lookup(kind Kind) Function {
	switch kind {
	case Wave:
		return wave
	case MultiWave:
		return multiWave
	case Ripple:
		return ripple
	case Sphere:
		return sphere
	default:
		return torus
	}
}

// Evaluate computes the point of surface kind at grid coordinates (u, v) and time t.
//
// Parameters:
//   - kind: the surface to evaluate
//   - u: horizontal grid coordinate, nominally in [-1, 1]
//   - v: vertical grid coordinate, nominally in [-1, 1]
//   - t: time in seconds
//
// Returns:
//   - common.Point3: the surface point
func Evaluate(kind Kind, u, v, t float32) common.Point3 {
	return Lookup(kind)(u, v, t)
}

// Morph blends surface from toward surface to. progress is passed through SmoothStep01
// and the result drives an unclamped linear interpolation between the two points.
//
// Parameters:
//   - u, v: grid coordinates
//   - t: time in seconds
//   - from: the surface returned at progress 0
//   - to: the surface returned at progress 1
//   - progress: blend progress, nominally in [0, 1]
//
// Returns:
//   - common.Point3: the blended point
func Morph(u, v, t float32, from, to Kind, progress float32) common.Point3 {
	return MorphWeighted(u, v, t, from, to, SmoothStep01(progress))
}

// MorphWeighted interpolates between two surfaces using weight directly, without
// smoothing. Weights outside [0, 1] extrapolate past the endpoints.
func MorphWeighted(u, v, t float32, from, to Kind, weight float32) common.Point3 {
	return common.LerpUnclamped(Evaluate(from, u, v, t), Evaluate(to, u, v, t), weight)
}

// SmoothStep01 is the Hermite smoothstep applied to morph progress.
func SmoothStep01(x float32) float32 {
	return common.SmoothStep01(x)
}

func wave(u, v, t float32) common.Point3 {
	return common.Point3{
		X: u,
		Y: common.Sin(common.Pi * (u + v + t)),
		Z: v,
	}
}

func multiWave(u, v, t float32) common.Point3 {
	y := common.Sin(common.Pi * (u + 0.5*t))
	y += 0.5 * common.Sin(2*common.Pi*(v+t))
	y += common.Sin(common.Pi * (u + v + 0.25*t))
	return common.Point3{
		X: u,
		Y: y * (1 / 2.5),
		Z: v,
	}
}

func ripple(u, v, t float32) common.Point3 {
	d := common.Sqrt(u*u + v*v)
	return common.Point3{
		X: u,
		Y: common.Sin(common.Pi*(4*d-t)) / (1 + 10*d),
		Z: v,
	}
}

func sphere(u, v, t float32) common.Point3 {
	r := 0.9 + 0.1*common.Sin(common.Pi*(6*u+4*v+t))
	s := r * common.Cos(0.5*common.Pi*v)
	return common.Point3{
		X: s * common.Sin(common.Pi*u),
		Y: r * common.Sin(0.5*common.Pi*v),
		Z: s * common.Cos(common.Pi*u),
	}
}

func torus(u, v, t float32) common.Point3 {
	r1 := 0.7 + 0.1*common.Sin(common.Pi*(6*u+0.5*t))
	r2 := 0.15 + 0.05*common.Sin(common.Pi*(8*u+4*v+2*t))
	s := r1 + r2*common.Cos(common.Pi*v)
	return common.Point3{
		X: s * common.Sin(common.Pi*u),
		Y: r2 * common.Sin(common.Pi*v),
		Z: s * common.Cos(common.Pi*u),
	}
}
