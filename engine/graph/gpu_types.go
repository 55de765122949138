package graph

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUGraphParamsSource is the canonical WGSL definition of the GraphParams struct.
// Matches GPUGraphParams layout exactly (48 bytes, uniform aligned).
//
//go:embed assets/graph_params.wgsl
var GPUGraphParamsSource string

// GPUGraphParams is the GPU-aligned per-frame uniform shared by the point compute pass and
// the instanced draw. Matches the WGSL GraphParams struct layout exactly (see GPUGraphParamsSource).
// Size: 48 bytes.
type GPUGraphParams struct {
	Resolution uint32     // offset  0: points per grid edge
	Step       float32    // offset  4: grid cell size, 2 / resolution
	Time       float32    // offset  8: animation time in seconds
	Weight     float32    // offset 12: blend weight from FromKind toward ToKind
	FromKind   uint32     // offset 16: surface index morphed from
	ToKind     uint32     // offset 20: surface index morphed to
	_pad0      float32    // offset 24
	_pad1      float32    // offset 28: aligns Tint to 16 bytes
	Tint       [4]float32 // offset 32: palette colour (rgba)
}

// NewGPUGraphParams packs a frame into the uniform layout. A holding frame is encoded as a
// morph from the current surface to itself with weight 0.
//
// Parameters:
//   - frame: the frame returned by Animator.Advance
//   - resolution: points per grid edge
//   - step: grid cell size
//   - t: animation time in seconds
//   - tint: palette colour as rgba in [0, 1]
//
// Returns:
//   - GPUGraphParams: the packed uniform
func NewGPUGraphParams(frame Frame, resolution uint32, step, t float32, tint [4]float32) GPUGraphParams {
	p := GPUGraphParams{
		Resolution: resolution,
		Step:       step,
		Time:       t,
		FromKind:   uint32(frame.Current),
		ToKind:     uint32(frame.Current),
		Tint:       tint,
	}
	if frame.Transitioning {
		p.ToKind = uint32(frame.Target)
		p.Weight = frame.Weight
	}
	return p
}

// Size returns the size of the GPUGraphParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUGraphParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUGraphParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUGraphParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:4], g.Resolution)
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Step))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Time))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Weight))
	binary.LittleEndian.PutUint32(buf[16:20], g.FromKind)
	binary.LittleEndian.PutUint32(buf[20:24], g.ToKind)
	binary.LittleEndian.PutUint32(buf[24:28], 0) // _pad0
	binary.LittleEndian.PutUint32(buf[28:32], 0) // _pad1
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.Tint[i]))
	}
	return buf
}
