package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources and must be released when no longer needed.
	// They are populated by the Renderer during initialization.

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers holds the GPU buffers bound by this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// shared marks bindings whose buffer is owned by another provider.
	shared map[int]bool

	// The following fields are only set on mesh providers.

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// BindGroupProvider holds the GPU resources behind one bind group or one mesh.
// The graph renderer keeps one provider for the compute pass, one for the render pass and one
// for the instanced cube mesh. The point and parameter buffers are created once and shared
// between the compute and render providers.
//
// Usage pattern:
//  1. Renderer creates a provider with a label
//  2. Renderer shares any buffers already owned by another provider via ShareBuffer()
//  3. Renderer calls InitBindGroup(provider, descriptor) to create the remaining buffers and the bind group
//  4. Renderer writes uniforms through BufferWrite values targeting the provider
//  5. Draw and dispatch calls read BindGroup() each frame
type BindGroupProvider interface {
	// Release releases the GPU resources owned by this provider. Shared buffers are dropped
	// from the provider without being released.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group, or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created with.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout, or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at the given binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil if none is bound
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every bound buffer keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: the bound buffers
	Buffers() map[int]*wgpu.Buffer

	// Shared reports whether the buffer at the given binding is owned by another provider.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - bool: true if the buffer was added with ShareBuffer
	Shared(binding int) bool

	// VertexBuffer returns the mesh vertex buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer, or nil
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer, or nil
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices drawn per instance.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetBindGroup sets the bind group.
	//
	// Parameters:
	//   - bg: the bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the bind group layout.
	//
	// Parameters:
	//   - bgl: the bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer binds a buffer owned by this provider.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// ShareBuffer binds a buffer owned by another provider. Release will not release it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	ShareBuffer(binding int, buf *wgpu.Buffer)

	// SetVertexBuffer sets the mesh vertex buffer.
	//
	// Parameters:
	//   - buf: the vertex buffer
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetIndexBuffer sets the mesh index buffer.
	//
	// Parameters:
	//   - buf: the index buffer
	SetIndexBuffer(buf *wgpu.Buffer)

	// SetIndexCount sets the number of indices for draw calls.
	//
	// Parameters:
	//   - count: the index count
	SetIndexCount(count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: debug label used for the GPU objects created for this provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
		shared:  make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) Shared(binding int) bool {
	return p.shared[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	delete(p.shared, binding)
}

func (p *bindGroupProvider) ShareBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	p.shared[binding] = true
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil && !p.shared[i] {
			buf.Release()
		}
		delete(p.buffers, i)
		delete(p.shared, i)
	}

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
