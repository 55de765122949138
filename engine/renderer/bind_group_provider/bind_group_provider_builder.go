package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BindGroupProviderOption is a functional option for configuring a BindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer binds a buffer owned by the provider at the given binding index.
//
// Parameters:
//   - binding: the binding index
//   - buf: the buffer
//
// Returns:
//   - BindGroupProviderOption: a function that applies the buffer to the provider
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
	}
}

// WithSharedBuffer binds a buffer owned by another provider at the given binding index.
//
// Parameters:
//   - binding: the binding index
//   - buf: the buffer
//
// Returns:
//   - BindGroupProviderOption: a function that shares the buffer with the provider
func WithSharedBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
		p.shared[binding] = true
	}
}
