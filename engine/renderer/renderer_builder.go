package renderer

import (
	"github.com/Carmen-Shannon/oxy-graph/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithShader replaces the built-in shader of the same type. Compute shaders must declare the
// graph_params and point bindings; render shaders must also declare camera.
//
// Parameters:
//   - s: the shader to use, created with shader.NewShaderFromSource
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader option to a renderer
func WithShader(s shader.Shader) RendererBuilderOption {
	return func(r *renderer) {
		if s == nil {
			return
		}
		switch s.ShaderType() {
		case shader.ShaderTypeCompute:
			r.computeShader = s
		case shader.ShaderTypeRender:
			r.renderShader = s
		}
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported
// by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithClearColor sets the background colour the render pass clears to.
//
// Parameters:
//   - red, green, blue: colour channels in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour to a renderer
func WithClearColor(red, green, blue float64) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingClearColor = &wgpu.Color{R: red, G: green, B: blue, A: 1}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithDoubleSided disables back-face culling of the point cubes. Useful with a custom render
// shader that draws open or inside-out geometry.
//
// Parameters:
//   - enabled: true to draw both faces
//
// Returns:
//   - RendererBuilderOption: a function that applies the culling option to a renderer
func WithDoubleSided(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.doubleSided = enabled
	}
}
