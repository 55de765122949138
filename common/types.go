// package common contains plain value types and helpers shared by every package in the engine.
package common

// Point3 is a position or direction in 3-D space, laid out as three consecutive float32 values.
type Point3 struct {
	X, Y, Z float32
}

// Add returns p + q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p multiplied component-wise by s.
func (p Point3) Scale(s float32) Point3 {
	return Point3{p.X * s, p.Y * s, p.Z * s}
}

// Dot returns the dot product of p and q.
func (p Point3) Dot(q Point3) float32 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Cross returns the cross product p × q.
func (p Point3) Cross(q Point3) Point3 {
	return Point3{
		p.Y*q.Z - p.Z*q.Y,
		p.Z*q.X - p.X*q.Z,
		p.X*q.Y - p.Y*q.X,
	}
}

// Normalize returns p scaled to unit length. A zero vector is returned unchanged.
func (p Point3) Normalize() Point3 {
	l := Sqrt(p.Dot(p))
	if l == 0 {
		return p
	}
	return p.Scale(1 / l)
}

// LerpUnclamped interpolates from a to b by t without clamping t, so values outside
// [0, 1] extrapolate along the line through both points.
//
// Parameters:
//   - a: the point returned at t = 0
//   - b: the point returned at t = 1
//   - t: the interpolation parameter
//
// Returns:
//   - Point3: a + (b - a) * t, evaluated per component
func LerpUnclamped(a, b Point3, t float32) Point3 {
	return Point3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// Array returns the components as a fixed-size array, the layout GPU structs expect.
func (p Point3) Array() [3]float32 {
	return [3]float32{p.X, p.Y, p.Z}
}
