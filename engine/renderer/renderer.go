package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/grid"
	"github.com/Carmen-Shannon/oxy-graph/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-graph/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-graph/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrPointDataSize is returned when CPU point data does not hold exactly resolution² points.
var ErrPointDataSize = errors.New("point data does not match the grid resolution")

// bufferTarget locates the buffer that backs a declared struct type.
type bufferTarget struct {
	provider bind_group_provider.BindGroupProvider
	binding  int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	compute       pipeline.Pipeline
	render        pipeline.Pipeline

	computeProvider bind_group_provider.BindGroupProvider
	renderProvider  bind_group_provider.BindGroupProvider
	meshProvider    bind_group_provider.BindGroupProvider
	targets         map[shader.AnnotationArg]bufferTarget

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
	doubleSided          bool
	computeShader        shader.Shader
	renderShader         shader.Shader
}

// SurfaceSource is anything that can hand out a platform surface descriptor and its pixel size.
// window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer draws the animated graph. Each frame the point buffer is either filled on the GPU by
// the compute pipeline or uploaded from CPU-evaluated points, and a unit cube is drawn once per
// point with instancing.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves the entire cache of Pipelines.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// Resize configures the underlying backend to handle a new surface size.
	// A zero width or height leaves the previous configuration in place.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the surface could not be reconfigured
	Resize(width, height int) error

	// SetPresentMode changes the present mode. It takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// Render uploads the frame uniforms, fills the point buffer and draws one frame.
	//
	// Parameters:
	//   - params: the graph uniform for this frame
	//   - cam: the camera uniform for this frame
	//   - points: packed CPU-evaluated points (see grid.MarshalPoints), or nil to evaluate on the GPU
	//
	// Returns:
	//   - error: an error if the points do not match params.Resolution or the frame could not be acquired
	Render(params graph.GPUGraphParams, cam camera.GPUCameraUniform, points []byte) error

	// Release frees every GPU resource held by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the graph renderer for a surface. Both pipelines, the shared uniform and
// point buffers, and the cube mesh are created up front.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - source: the window (or other surface source) to render into
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if any GPU resource could not be created
func NewRenderer(backendType RendererBackendType, source SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		targets:       make(map[shader.AnnotationArg]bufferTarget),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if err := r.loadShaders(); err != nil {
		return nil, err
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(source.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if err := r.backend.ConfigureSurface(source.Width(), source.Height()); err != nil {
		r.Release()
		return nil, fmt.Errorf("configure surface: %w", err)
	}
	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

// loadShaders fills in the built-in shaders for any type not supplied through options and
// runs the naga front end over both. A naga failure is only logged; the driver has the final say.
func (r *renderer) loadShaders() error {
	var err error
	if r.computeShader == nil {
		if r.computeShader, err = shader.NewShader(shader.ShaderTypeCompute); err != nil {
			return err
		}
	}
	if r.renderShader == nil {
		if r.renderShader, err = shader.NewShader(shader.ShaderTypeRender); err != nil {
			return err
		}
	}
	for _, s := range []shader.Shader{r.computeShader, r.renderShader} {
		if err := s.Validate(); err != nil {
			log.Printf("[Renderer] WGSL validation warning: %v", err)
		}
	}
	return nil
}

func (r *renderer) init() error {
	var err error
	if r.compute, err = pipeline.NewPipeline(r.computeShader.Key(), r.computeShader, pipeline.WithDepth(false, false)); err != nil {
		return err
	}
	cull := wgpu.CullModeBack
	if r.doubleSided {
		cull = wgpu.CullModeNone
	}
	r.render, err = pipeline.NewPipeline(r.renderShader.Key(), r.renderShader,
		pipeline.WithDepth(true, true),
		pipeline.WithCullMode(cull),
		pipeline.WithFrontFace(wgpu.FrontFaceCCW),
	)
	if err != nil {
		return err
	}
	if err := r.backend.RegisterComputePipeline(r.compute); err != nil {
		return fmt.Errorf("register %s: %w", r.compute.PipelineKey(), err)
	}
	if err := r.backend.RegisterRenderPipeline(r.render, []wgpu.VertexBufferLayout{cubeVertexLayout}); err != nil {
		return fmt.Errorf("register %s: %w", r.render.PipelineKey(), err)
	}
	r.pipelineCache[r.compute.PipelineKey()] = r.compute
	r.pipelineCache[r.render.PipelineKey()] = r.render

	r.computeProvider = bind_group_provider.NewBindGroupProvider(r.compute.PipelineKey())
	r.renderProvider = bind_group_provider.NewBindGroupProvider(r.render.PipelineKey())
	for _, pair := range []struct {
		p        pipeline.Pipeline
		provider bind_group_provider.BindGroupProvider
	}{
		{r.compute, r.computeProvider},
		{r.render, r.renderProvider},
	} {
		if err := r.initBindGroup(pair.p, pair.provider); err != nil {
			return fmt.Errorf("bind group for %s: %w", pair.p.PipelineKey(), err)
		}
	}

	vertices, indices := cubeMesh()
	r.meshProvider = bind_group_provider.NewBindGroupProvider("Cube")
	if err := r.backend.InitMeshBuffers(r.meshProvider, common.SliceToBytes(vertices), common.SliceToBytes(indices), len(indices)); err != nil {
		return fmt.Errorf("cube mesh: %w", err)
	}

	log.Printf("[Renderer] ready: %s + %s, workgroup %v", r.compute.PipelineKey(), r.render.PipelineKey(), r.computeShader.WorkgroupSize())
	return nil
}

// initBindGroup creates the provider's bind group. Struct types already backed by a buffer on an
// earlier provider are shared so both passes see the same parameters and points.
func (r *renderer) initBindGroup(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider) error {
	decls := p.Shader().Declarations()
	sizes := make(map[int]uint64, len(decls))
	for _, d := range decls {
		if t, ok := r.targets[d.StructType()]; ok {
			provider.ShareBuffer(*d.Binding, t.provider.Buffer(t.binding))
			continue
		}
		size, err := bufferSize(d)
		if err != nil {
			return err
		}
		sizes[*d.Binding] = size
	}

	if err := r.backend.InitBindGroup(provider, p.BindGroupLayoutDescriptor(), sizes); err != nil {
		return err
	}

	for _, d := range decls {
		if _, ok := r.targets[d.StructType()]; !ok {
			r.targets[d.StructType()] = bufferTarget{provider: provider, binding: *d.Binding}
		}
	}
	return nil
}

// bufferSize returns the allocation size for a declared binding.
func bufferSize(d shader.Annotation) (uint64, error) {
	switch d.StructType() {
	case shader.AnnotationArgGraphParams:
		var p graph.GPUGraphParams
		return uint64(p.Size()), nil
	case shader.AnnotationArgCamera:
		var c camera.GPUCameraUniform
		return uint64(c.Size()), nil
	case shader.AnnotationArgPoint:
		if d.IsArray() {
			return grid.PointBufferSize(), nil
		}
		var p grid.GPUPoint
		return uint64(p.Size()), nil
	default:
		return 0, fmt.Errorf("no buffer size for %s", d.StructType())
	}
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) Render(params graph.GPUGraphParams, cam camera.GPUCameraUniform, points []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := int(params.Resolution) * int(params.Resolution)
	if points != nil && len(points) != count*16 {
		return fmt.Errorf("%w: %d bytes for resolution %d", ErrPointDataSize, len(points), params.Resolution)
	}

	writes := []bind_group_provider.BufferWrite{
		r.write(shader.AnnotationArgGraphParams, params.Marshal()),
		r.write(shader.AnnotationArgCamera, cam.Marshal()),
	}
	if points != nil {
		writes = append(writes, r.write(shader.AnnotationArgPoint, points))
	}
	r.backend.WriteBuffers(writes)

	if points == nil {
		if err := r.backend.BeginComputeFrame(); err != nil {
			return fmt.Errorf("compute frame: %w", err)
		}
		r.backend.DispatchCompute(r.compute, r.computeProvider, dispatchSize(params.Resolution, r.computeShader.WorkgroupSize()))
		r.backend.EndComputeFrame()
	}

	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	r.backend.DrawCall(r.render, r.meshProvider, uint32(count), []bind_group_provider.BindGroupProvider{r.renderProvider})
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

// write builds a buffer write for the binding that backs a struct type. Unbound types yield a
// write that BufferWrite.Valid rejects.
func (r *renderer) write(structType shader.AnnotationArg, data []byte) bind_group_provider.BufferWrite {
	t := r.targets[structType]
	return bind_group_provider.BufferWrite{
		Provider: t.provider,
		Binding:  t.binding,
		Data:     data,
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Shared buffers live on the first provider, so it is released last.
	for _, p := range []bind_group_provider.BindGroupProvider{r.meshProvider, r.renderProvider, r.computeProvider} {
		if p != nil {
			p.Release()
		}
	}
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	if r.backend != nil {
		r.backend.Release()
		r.backend = nil
	}
}
