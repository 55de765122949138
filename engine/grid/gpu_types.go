package grid

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-graph/common"
)

// GPUPointSource is the canonical WGSL definition of the Point struct.
// Matches GPUPoint layout exactly (16 bytes, std430 aligned).
//
//go:embed assets/point.wgsl
var GPUPointSource string

// GPUPoint is one element of the point storage buffer written by the compute pass and read
// by the instanced draw. Size: 16 bytes (vec3 padded to vec4 stride).
type GPUPoint struct {
	Position [3]float32 // offset  0: surface point (vec3<f32>)
	_pad     float32    // offset 12: padding to 16 bytes
}

// Size returns the size of the GPUPoint struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUPoint) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPoint struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (g *GPUPoint) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], 0) // _pad
	return buf
}

// PointBufferSize returns the byte size of a point buffer holding MaxResolution² points.
func PointBufferSize() uint64 {
	var p GPUPoint
	return uint64(p.Size()) * MaxResolution * MaxResolution
}

// MarshalPoints packs CPU-evaluated points into the GPU point layout.
//
// Parameters:
//   - points: the points to pack
//
// Returns:
//   - []byte: len(points) * 16 bytes ready for GPU upload
func MarshalPoints(points []common.Point3) []byte {
	buf := make([]byte, 0, len(points)*16)
	for _, p := range points {
		gp := GPUPoint{Position: p.Array()}
		buf = append(buf, gp.Marshal()...)
	}
	return buf
}
