package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithDepth sets the depth test and depth write state of a render pipeline. Compute pipelines
// ignore it.
//
// Parameters:
//   - test: whether fragments are depth tested
//   - write: whether fragments write depth
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth state
func WithDepth(test, write bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = test
		p.depthWriteEnabled = write
	}
}

// WithCullMode sets which cube faces are discarded. Back-face culling halves the fragment work
// of the instanced draw; CullModeNone keeps interior faces visible.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace sets the winding order treated as front facing. It must match the mesh.
//
// Parameters:
//   - frontFace: wgpu.FrontFaceCCW or wgpu.FrontFaceCW
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}
