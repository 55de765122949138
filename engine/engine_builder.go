package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/grid"
	"github.com/Carmen-Shannon/oxy-graph/engine/palette"
	"github.com/Carmen-Shannon/oxy-graph/engine/profiler"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithHost sets the window the engine runs in.
//
// Parameters:
//   - h: the host window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHost(h Host) EngineBuilderOption {
	return func(e *engine) {
		e.host = h
	}
}

// WithRenderer sets the renderer that draws each frame.
//
// Parameters:
//   - r: the frame renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r FrameRenderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithAnimator sets the surface animator.
//
// Parameters:
//   - a: the animator
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAnimator(a graph.Animator) EngineBuilderOption {
	return func(e *engine) {
		e.animator = a
	}
}

// WithCamera sets the orbit camera.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithPalette sets the surface colour palette.
//
// Parameters:
//   - p: the palette
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPalette(p *palette.Palette) EngineBuilderOption {
	return func(e *engine) {
		e.palette = p
	}
}

// WithFrameSink sets a sink that is offered every rendered frame, typically a *stream.Streamer.
//
// Parameters:
//   - s: the frame sink
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameSink(s FrameSink) EngineBuilderOption {
	return func(e *engine) {
		e.sink = s
	}
}

// WithResolution sets the number of points per grid edge for GPU evaluation.
// Ignored when WithCPUEvaluator is used, since the evaluator's grid decides.
//
// Parameters:
//   - resolution: points per edge, in [grid.MinResolution, grid.MaxResolution]
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResolution(resolution int) EngineBuilderOption {
	return func(e *engine) {
		e.resolution = resolution
	}
}

// WithCPUEvaluator evaluates the points on the CPU with the given evaluator and uploads them
// each frame instead of running the compute pass.
//
// Parameters:
//   - ev: the evaluator; its grid sets the resolution
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCPUEvaluator(ev grid.Evaluator) EngineBuilderOption {
	return func(e *engine) {
		e.evaluator = ev
	}
}

// WithProfiler sets a configured profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithProfiling enables or disables the profiler display in the window title.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Values <= 0 leave the loop uncapped.
//
// Parameters:
//   - fps: maximum render frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
