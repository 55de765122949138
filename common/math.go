package common

import (
	"math"
	"unsafe"
)

// Pi is math.Pi rounded to single precision, the constant every surface formula scales by.
const Pi = float32(math.Pi)

// Sin returns the single precision sine of x, computed in double precision and rounded once.
func Sin(x float32) float32 {
	return float32(math.Sin(float64(x)))
}

// Cos returns the single precision cosine of x, computed in double precision and rounded once.
func Cos(x float32) float32 {
	return float32(math.Cos(float64(x)))
}

// Sqrt returns the single precision square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Clamp01 limits x to the closed range [0, 1].
//
// Parameters:
//   - x: the value to clamp
//
// Returns:
//   - float32: 0 when x < 0, 1 when x > 1, otherwise x
func Clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// SmoothStep01 is the cubic Hermite smoothstep between the edges 0 and 1.
// The input is clamped to [0, 1] before the polynomial 3x² - 2x³ is applied, so
// inputs outside the range saturate instead of extrapolating.
//
// Parameters:
//   - x: the interpolation parameter
//
// Returns:
//   - float32: the smoothed parameter in [0, 1]
func SmoothStep01(x float32) float32 {
	x = Clamp01(x)
	return -2*x*x*x + 3*x*x
}

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// Mul4 multiplies two 4x4 column-major matrices and stores a*b in out.
// out may alias a or b.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective writes a right-handed perspective projection mapping depth into the
// WebGPU clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1 / float32(math.Tan(float64(fovY)/2))
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1
	out[14] = (near * far) / (near - far)
	out[15] = 0
}

// LookAt writes a view matrix for an eye at `eye` looking toward `center`.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - center: the point the camera looks at
//   - up: up vector, typically (0, 1, 0)
func LookAt(out []float32, eye, center, up Point3) {
	z := eye.Sub(center).Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	out[0], out[4], out[8], out[12] = x.X, x.Y, x.Z, -x.Dot(eye)
	out[1], out[5], out[9], out[13] = y.X, y.Y, y.Z, -y.Dot(eye)
	out[2], out[6], out[10], out[14] = z.X, z.Y, z.Z, -z.Dot(eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}
