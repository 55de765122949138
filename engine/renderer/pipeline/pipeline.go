package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType identifies whether a pipeline is a compute pipeline or a render pipeline.
type PipelineType int

const (
	// PipelineTypeCompute indicates a compute pipeline with a single compute shader entry point.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender indicates a render pipeline with vertex and fragment shader entry points.
	PipelineTypeRender
)

// ErrUnsupportedGroup is returned when a shader declares a binding outside bind group 0.
var ErrUnsupportedGroup = errors.New("only bind group 0 is supported")

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU pipeline objects and the state used to create them.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	shader shader.Shader

	// renderPipeline is the render pipeline if this is a render pipeline, nil otherwise
	renderPipeline *wgpu.RenderPipeline
	// computePipeline is the compute pipeline if this is a compute pipeline, nil otherwise
	computePipeline *wgpu.ComputePipeline

	// The following properties only apply to render pipelines.

	depthTestEnabled  bool
	depthWriteEnabled bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
}

// Pipeline defines the interface for a GPU pipeline built from a single pre-processed shader.
// A compute shader yields a compute pipeline; a render shader, carrying both the vertex and
// fragment entry points, yields a render pipeline.
type Pipeline interface {
	// Type returns the type of the pipeline
	//
	// Returns:
	//   - PipelineType: the type of the pipeline (render or compute)
	Type() PipelineType

	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the shader the pipeline is built from.
	//
	// Returns:
	//   - shader.Shader: the pipeline's shader
	Shader() shader.Shader

	// Pipeline returns the underlying pipeline object, either *wgpu.RenderPipeline or *wgpu.ComputePipeline
	// Note: The caller is responsible for type asserting the returned value as either pipeline type.
	//
	// Returns:
	//   - any: the underlying pipeline object.
	Pipeline() any

	// Visibility returns the shader stages that see the pipeline's bindings.
	//
	// Returns:
	//   - wgpu.ShaderStage: compute for compute pipelines, vertex|fragment for render pipelines
	Visibility() wgpu.ShaderStage

	// BindGroupLayoutDescriptor derives the group 0 layout from the shader's binding declarations.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: one buffer entry per declaration, in binding order
	BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// SetRenderPipeline sets the render pipeline
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline sets the compute pipeline
	//
	// Parameters:
	//   - p: the WebGPU compute pipeline to set
	SetComputePipeline(p *wgpu.ComputePipeline)

	// Release releases the GPU pipeline object, if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for the given shader. The pipeline type follows the shader type.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - s: the pre-processed shader the pipeline is built from
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance
//   - error: an error if the shader is nil or declares bindings outside group 0
func NewPipeline(pipelineKey string, s shader.Shader, opts ...PipelineBuilderOption) (Pipeline, error) {
	if s == nil {
		return nil, fmt.Errorf("pipeline %s: shader is required", pipelineKey)
	}
	for _, d := range s.Declarations() {
		if *d.Group != 0 {
			return nil, fmt.Errorf("pipeline %s: %s on line %d uses group %d: %w", pipelineKey, d.VarName(), d.Line, *d.Group, ErrUnsupportedGroup)
		}
	}

	p := &pipeline{
		pipelineKey:       pipelineKey,
		pipelineType:      PipelineTypeCompute,
		shader:            s,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	if s.ShaderType() == shader.ShaderTypeRender {
		p.pipelineType = PipelineTypeRender
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) Visibility() wgpu.ShaderStage {
	if p.pipelineType == PipelineTypeRender {
		return wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	}
	return wgpu.ShaderStageCompute
}

func (p *pipeline) BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	decls := p.shader.Declarations()
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(decls))
	for _, d := range decls {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(*d.Binding),
			Visibility: p.Visibility(),
		}
		switch d.AddressSpace() {
		case shader.AnnotationArgStorageTypeUniform:
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		case shader.AnnotationArgStorageTypeRead:
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
		case shader.AnnotationArgStorageTypeReadWrite:
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
		}
		entries = append(entries, entry)
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   p.pipelineKey + " Bind Group Layout",
		Entries: entries,
	}
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
		p.computePipeline = nil
	}
}
