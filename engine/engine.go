package engine

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/grid"
	"github.com/Carmen-Shannon/oxy-graph/engine/palette"
	"github.com/Carmen-Shannon/oxy-graph/engine/profiler"
)

// dragSpeed converts cursor movement in pixels into orbit radians.
const dragSpeed = 0.005

// Host is the platform window the engine runs in. window.Window satisfies it.
type Host interface {
	ProcessMessages(update func() bool)
	Width() int
	Height() int
	SetResizeCallback(callback func(width, height int))
	SetScrollCallback(callback func(delta float32))
	SetKeyDownCallback(callback func(keyCode uint32))
	SetDragCallback(callback func(dx, dy float32))
	SetTitle(title string)
	Title() string
	RequestClose()
}

// FrameRenderer draws one frame of the graph. renderer.Renderer satisfies it.
type FrameRenderer interface {
	Render(params graph.GPUGraphParams, cam camera.GPUCameraUniform, points []byte) error
	Resize(width, height int) error
}

// FrameSink receives every rendered frame. *stream.Streamer satisfies it.
type FrameSink interface {
	Offer(t float32, frame graph.Frame, tint [3]uint8) bool
}

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	host     Host
	renderer FrameRenderer
	sink     FrameSink

	animator graph.Animator
	camera   camera.Camera
	palette  *palette.Palette
	grid     grid.Grid

	// evaluator is set in CPU mode; the points are evaluated here and uploaded instead of
	// being computed on the GPU.
	evaluator grid.Evaluator
	points    []common.Point3

	profiler         *profiler.Profiler
	profilingEnabled bool

	resolution int
	time       float32
	paused     bool
	running    bool
	lastFrame  time.Time
	lastError  string

	frameCallback    func(frame graph.Frame, deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the graph. It advances the animator once per frame, feeds
// the renderer and the optional frame sink, and maps window input onto the camera.
//
// Input:
//   - arrows and WASD orbit the camera, left-drag orbits, scroll zooms
//   - Tab toggles the profiler between FPS and MS, P toggles the profiler display
//   - Space pauses the animation, Escape closes the window
type Engine interface {
	// Run starts the frame loop on the calling goroutine. Blocks until the window closes.
	Run()

	// Step advances the animation by dt seconds and renders one frame.
	//
	// Parameters:
	//   - dt: elapsed time in seconds; negative values are treated as zero, NaN and Inf pass through
	//
	// Returns:
	//   - graph.Frame: the frame that was rendered
	//   - error: the renderer or evaluator error, if any
	Step(dt float32) (graph.Frame, error)

	// Time returns the accumulated animation time in seconds.
	//
	// Returns:
	//   - float32: the animation time
	Time() float32

	// Animator returns the surface animator.
	//
	// Returns:
	//   - graph.Animator: the animator
	Animator() graph.Animator

	// Camera returns the orbit camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Profiler returns the frame-rate profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler shows profiler stats in the window title.
	EnableProfiler()

	// DisableProfiler stops profiling and restores the base title.
	DisableProfiler()

	// SetPaused freezes or resumes the animation. The camera keeps responding while paused.
	//
	// Parameters:
	//   - paused: true to freeze the animation
	SetPaused(paused bool)

	// Paused reports whether the animation is frozen.
	//
	// Returns:
	//   - bool: true if paused
	Paused() bool

	// SetFrameCallback registers a function called after every rendered frame.
	//
	// Parameters:
	//   - callback: receives the frame and the delta time in seconds
	SetFrameCallback(callback func(frame graph.Frame, deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Quit asks the host to close. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine. A host and a renderer are required; every other component
// falls back to its defaults: a cycling animator, the default camera and palette, and a
// 100×100 grid.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if a required component is missing or a default cannot be built
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		mu:         &sync.Mutex{},
		resolution: 100,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.host == nil {
		return nil, errors.New("engine requires a host window")
	}
	if e.renderer == nil {
		return nil, errors.New("engine requires a renderer")
	}

	var err error
	if e.animator == nil {
		if e.animator, err = graph.NewAnimator(); err != nil {
			return nil, err
		}
	}
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.palette == nil {
		if e.palette, err = palette.New(nil); err != nil {
			return nil, err
		}
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.evaluator != nil {
		e.grid = e.evaluator.Grid()
		e.points = make([]common.Point3, e.grid.PointCount())
	} else if e.grid, err = grid.New(e.resolution); err != nil {
		return nil, fmt.Errorf("engine grid: %w", err)
	}

	e.host.SetResizeCallback(e.onResize)
	e.host.SetScrollCallback(e.camera.Zoom)
	e.host.SetKeyDownCallback(e.onKeyDown)
	e.host.SetDragCallback(func(dx, dy float32) {
		e.camera.Orbit(-dx*dragSpeed, dy*dragSpeed)
	})

	return e, nil
}

func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	e.lastFrame = time.Now()
	e.mu.Unlock()

	e.host.ProcessMessages(e.frame)
}

// frame is the host's per-iteration callback. It measures the frame time, steps the engine and
// applies the optional frame limit.
func (e *engine) frame() bool {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return false
	}
	now := time.Now()
	dt := float32(now.Sub(e.lastFrame).Seconds())
	e.lastFrame = now
	limit := e.renderFrameLimit
	e.mu.Unlock()

	if _, err := e.Step(dt); err != nil {
		e.logError(err)
	}

	if limit > 0 {
		if remaining := limit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *engine) Step(dt float32) (graph.Frame, error) {
	if dt < 0 {
		dt = 0
	}

	e.mu.Lock()
	animDt := dt
	if e.paused {
		animDt = 0
	}
	e.time += animDt
	t := e.time
	profiling := e.profilingEnabled
	callback := e.frameCallback
	e.mu.Unlock()

	frame := e.animator.Advance(animDt)
	params := graph.NewGPUGraphParams(frame, uint32(e.grid.Resolution()), e.grid.Step(), t, e.palette.Tint(frame))

	var points []byte
	if e.evaluator != nil {
		if err := e.evaluator.Evaluate(frame, t, e.points); err != nil {
			return frame, fmt.Errorf("evaluate points: %w", err)
		}
		points = grid.MarshalPoints(e.points)
	}

	cam := e.camera.Uniform(e.aspect())
	if err := e.renderer.Render(params, cam, points); err != nil {
		return frame, fmt.Errorf("render: %w", err)
	}

	if e.sink != nil {
		e.sink.Offer(t, frame, e.palette.RGB(frame))
	}

	if profiling {
		if stats, ok := e.profiler.Tick(float64(dt)); ok {
			e.host.SetTitle(fmt.Sprintf("%s | %s | %s", e.host.Title(), frame.Current, stats))
		}
	}

	if callback != nil {
		callback(frame, dt)
	}
	return frame, nil
}

// aspect returns the host's width over height, or 1 while the window has no area.
func (e *engine) aspect() float32 {
	w, h := e.host.Width(), e.host.Height()
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}

// logError logs a frame error once until a different error occurs, so a lost surface does not
// flood the log at the frame rate.
func (e *engine) logError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if msg := err.Error(); msg != e.lastError {
		e.lastError = msg
		log.Printf("[Engine] frame failed: %v", err)
	}
}

func (e *engine) onResize(width, height int) {
	if err := e.renderer.Resize(width, height); err != nil {
		log.Printf("[Engine] resize to %dx%d failed: %v", width, height, err)
	}
}

func (e *engine) onKeyDown(keyCode uint32) {
	switch keyCode {
	case common.KeyLeft, common.KeyA:
		e.camera.OrbitLeft()
	case common.KeyRight, common.KeyD:
		e.camera.OrbitRight()
	case common.KeyUp, common.KeyW:
		e.camera.OrbitUp()
	case common.KeyDown, common.KeyS:
		e.camera.OrbitDown()
	case common.KeyTab:
		e.profiler.ToggleMode()
	case common.KeyP:
		if e.profilerEnabled() {
			e.DisableProfiler()
		} else {
			e.EnableProfiler()
		}
	case common.KeySpace:
		e.SetPaused(!e.Paused())
	case common.KeyEsc:
		e.Quit()
	}
}

func (e *engine) Time() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.time
}

func (e *engine) Animator() graph.Animator {
	return e.animator
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	e.profilingEnabled = false
	e.mu.Unlock()
	e.host.SetTitle(e.host.Title())
}

func (e *engine) profilerEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profilingEnabled
}

func (e *engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = paused
}

func (e *engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *engine) SetFrameCallback(callback func(frame graph.Frame, deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Quit() {
	e.mu.Lock()
	wasRunning := e.running
	e.running = false
	e.mu.Unlock()

	if wasRunning {
		log.Printf("[Engine] shutting down at t=%.2fs", e.Time())
	}
	e.host.RequestClose()
}
