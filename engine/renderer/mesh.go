package renderer

import (
	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// cubeVertexStride is the byte size of one cube vertex: position then normal, both vec3<f32>.
const cubeVertexStride = 24

// cubeVertexLayout matches VertexInput in the render shader.
var cubeVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: cubeVertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

// cubeFace is one face of the unit cube: its outward normal and two edge directions with u × v = normal.
type cubeFace struct {
	normal, u, v common.Point3
}

var cubeFaces = [6]cubeFace{
	{normal: common.Point3{X: 1}, u: common.Point3{Y: 1}, v: common.Point3{Z: 1}},
	{normal: common.Point3{X: -1}, u: common.Point3{Z: 1}, v: common.Point3{Y: 1}},
	{normal: common.Point3{Y: 1}, u: common.Point3{Z: 1}, v: common.Point3{X: 1}},
	{normal: common.Point3{Y: -1}, u: common.Point3{X: 1}, v: common.Point3{Z: 1}},
	{normal: common.Point3{Z: 1}, u: common.Point3{X: 1}, v: common.Point3{Y: 1}},
	{normal: common.Point3{Z: -1}, u: common.Point3{Y: 1}, v: common.Point3{X: 1}},
}

// cubeMesh builds a unit cube centred on the origin with per-face normals and counter-clockwise
// outward winding. The render shader scales it by the grid step and places one per point.
//
// Returns:
//   - []float32: 24 vertices, six floats each
//   - []uint32: 36 indices
func cubeMesh() ([]float32, []uint32) {
	vertices := make([]float32, 0, 24*6)
	indices := make([]uint32, 0, 36)
	for i, f := range cubeFaces {
		centre := f.normal.Scale(0.5)
		corners := [4]common.Point3{
			centre.Sub(f.u.Scale(0.5)).Sub(f.v.Scale(0.5)),
			centre.Add(f.u.Scale(0.5)).Sub(f.v.Scale(0.5)),
			centre.Add(f.u.Scale(0.5)).Add(f.v.Scale(0.5)),
			centre.Sub(f.u.Scale(0.5)).Add(f.v.Scale(0.5)),
		}
		for _, c := range corners {
			vertices = append(vertices, c.X, c.Y, c.Z, f.normal.X, f.normal.Y, f.normal.Z)
		}
		base := uint32(i * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// dispatchSize returns the workgroup counts covering a resolution × resolution grid.
//
// Parameters:
//   - resolution: points per grid edge
//   - workgroup: the compute shader's workgroup size
//
// Returns:
//   - [3]uint32: workgroup counts in x, y and z
func dispatchSize(resolution uint32, workgroup [3]uint32) [3]uint32 {
	return [3]uint32{common.CeilDiv(resolution, workgroup[0]), common.CeilDiv(resolution, workgroup[1]), 1}
}
