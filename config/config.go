// Package config loads the graph's YAML configuration and converts each section into the
// functional options of the component it configures.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/camera"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/grid"
	"github.com/Carmen-Shannon/oxy-graph/engine/palette"
	"github.com/Carmen-Shannon/oxy-graph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-graph/engine/stream"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
	"gopkg.in/yaml.v2"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid config")

const (
	// EvaluationGPU fills the point buffer with the compute pipeline.
	EvaluationGPU = "gpu"

	// EvaluationCPU evaluates the points with the worker pool and uploads them each frame.
	EvaluationCPU = "cpu"
)

// Config is the root of the YAML document.
type Config struct {
	Graph    GraphConfig       `yaml:"graph"`
	Window   WindowConfig      `yaml:"window"`
	Camera   CameraConfig      `yaml:"camera"`
	Profiler ProfilerConfig    `yaml:"profiler"`
	Palette  map[string]string `yaml:"palette"`
	Stream   StreamConfig      `yaml:"stream"`
}

// GraphConfig configures the grid and the surface animator.
type GraphConfig struct {
	Resolution         int     `yaml:"resolution"`
	HoldDuration       float32 `yaml:"hold_duration"`
	TransitionDuration float32 `yaml:"transition_duration"`
	Policy             string  `yaml:"policy"`
	InitialSurface     string  `yaml:"initial_surface"`
	Curve              string  `yaml:"curve"`
	Evaluation         string  `yaml:"evaluation"`
	Workers            int     `yaml:"workers"`
}

// WindowConfig configures the window and the surface presentation.
type WindowConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Title    string `yaml:"title"`
	VSync    bool   `yaml:"vsync"`
	MSAA     int    `yaml:"msaa"`
	Software bool   `yaml:"software"`
	FPSLimit int    `yaml:"fps_limit"`
}

// CameraConfig configures the orbit camera. Angles are in degrees.
type CameraConfig struct {
	Distance float32 `yaml:"distance"`
	Yaw      float32 `yaml:"yaw"`
	Pitch    float32 `yaml:"pitch"`
	Fov      float32 `yaml:"fov"`
}

// ProfilerConfig configures the frame-rate display.
type ProfilerConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Mode     string  `yaml:"mode"`
	Interval float64 `yaml:"interval"`
	Log      bool    `yaml:"log"`
}

// StreamConfig configures frame streaming. Streaming is off unless at least one sink is set.
type StreamConfig struct {
	IntervalMS       int              `yaml:"interval_ms"`
	SampleResolution int              `yaml:"sample_resolution"`
	MQTT             *MQTTConfig      `yaml:"mqtt"`
	WebSocket        *WebSocketConfig `yaml:"websocket"`
}

// MQTTConfig configures the MQTT frame sink.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
	Retained bool   `yaml:"retained"`
}

// WebSocketConfig configures the WebSocket frame hub.
type WebSocketConfig struct {
	Addr string `yaml:"addr"`
	Path string `yaml:"path"`
}

// Default returns the configuration used for every field a document leaves out.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Graph: GraphConfig{
			Resolution:         100,
			HoldDuration:       1,
			TransitionDuration: 1,
			Policy:             graph.PolicyCycle.String(),
			InitialSurface:     surface.Wave.String(),
			Curve:              "linear",
			Evaluation:         EvaluationGPU,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Oxy Graph",
			VSync:  true,
			MSAA:   4,
		},
		Camera: CameraConfig{
			Distance: 4,
			Pitch:    30,
			Fov:      60,
		},
		Profiler: ProfilerConfig{
			Mode:     "fps",
			Interval: 1,
			Log:      true,
		},
		Stream: StreamConfig{
			IntervalMS:       100,
			SampleResolution: 10,
		},
	}
}

// Load reads and validates the configuration file at path.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the configuration, defaults filled in
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Parse decodes and validates a YAML document held in memory.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the configuration, defaults filled in
//   - error: an error if the document cannot be decoded or validated
func Parse(data []byte) (Config, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a YAML document over the defaults and validates the result. An empty document
// yields the defaults.
//
// Parameters:
//   - r: the YAML source
//
// Returns:
//   - Config: the configuration
//   - error: an error if the document cannot be decoded or validated
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.SetStrict(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Stream.MQTT != nil {
		cfg.Stream.MQTT.Broker = common.Coalesce(cfg.Stream.MQTT.Broker, "tcp://localhost:1883")
		cfg.Stream.MQTT.ClientID = common.Coalesce(cfg.Stream.MQTT.ClientID, "oxy-graph")
		cfg.Stream.MQTT.Topic = common.Coalesce(cfg.Stream.MQTT.Topic, "oxy/graph")
	}
	if cfg.Stream.WebSocket != nil {
		cfg.Stream.WebSocket.Addr = common.Coalesce(cfg.Stream.WebSocket.Addr, ":8080")
		cfg.Stream.WebSocket.Path = common.Coalesce(cfg.Stream.WebSocket.Path, "/ws")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section and joins all problems into one error. Each joined error
// wraps ErrInvalidConfig.
//
// Returns:
//   - error: nil if the configuration is usable
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	check := func(field string, err error) {
		if err != nil {
			invalid("%s: %v", field, err)
		}
	}

	g := c.Graph
	if g.Resolution < grid.MinResolution || g.Resolution > grid.MaxResolution {
		invalid("graph.resolution %d outside [%d, %d]", g.Resolution, grid.MinResolution, grid.MaxResolution)
	}
	if !(g.HoldDuration > 0) {
		invalid("graph.hold_duration must be positive, got %v", g.HoldDuration)
	}
	if !(g.TransitionDuration > 0) {
		invalid("graph.transition_duration must be positive, got %v", g.TransitionDuration)
	}
	_, err := graph.ParsePolicy(g.Policy)
	check("graph.policy", err)
	_, err = surface.ParseKind(g.InitialSurface)
	check("graph.initial_surface", err)
	_, err = graph.CurveByName(g.Curve)
	check("graph.curve", err)
	switch strings.ToLower(g.Evaluation) {
	case EvaluationGPU, EvaluationCPU:
	default:
		invalid("graph.evaluation must be %q or %q, got %q", EvaluationGPU, EvaluationCPU, g.Evaluation)
	}
	if g.Workers < 0 {
		invalid("graph.workers must not be negative, got %d", g.Workers)
	}

	w := c.Window
	if w.Width <= 0 || w.Height <= 0 {
		invalid("window size %dx%d must be positive", w.Width, w.Height)
	}
	switch w.MSAA {
	case 1, 4, 8, 16:
	default:
		invalid("window.msaa must be 1, 4, 8 or 16, got %d", w.MSAA)
	}
	if w.FPSLimit < 0 {
		invalid("window.fps_limit must not be negative, got %d", w.FPSLimit)
	}

	cam := c.Camera
	if !(cam.Distance > 0) {
		invalid("camera.distance must be positive, got %v", cam.Distance)
	}
	if !(cam.Fov > 0 && cam.Fov < 180) {
		invalid("camera.fov must be in (0, 180) degrees, got %v", cam.Fov)
	}

	_, err = profiler.ParseMode(c.Profiler.Mode)
	check("profiler.mode", err)
	if !(c.Profiler.Interval >= profiler.MinInterval && c.Profiler.Interval <= profiler.MaxInterval) {
		invalid("profiler.interval %v outside [%v, %v]", c.Profiler.Interval, profiler.MinInterval, profiler.MaxInterval)
	}

	_, err = palette.New(c.Palette)
	check("palette", err)

	s := c.Stream
	if s.IntervalMS < 0 {
		invalid("stream.interval_ms must not be negative, got %d", s.IntervalMS)
	}
	if s.SampleResolution != 0 && (s.SampleResolution < grid.MinResolution || s.SampleResolution > grid.MaxResolution) {
		invalid("stream.sample_resolution %d must be 0 or within [%d, %d]", s.SampleResolution, grid.MinResolution, grid.MaxResolution)
	}
	if s.MQTT != nil && (s.MQTT.QoS < 0 || s.MQTT.QoS > 2) {
		invalid("stream.mqtt.qos must be 0, 1 or 2, got %d", s.MQTT.QoS)
	}
	if s.WebSocket != nil && !strings.HasPrefix(s.WebSocket.Path, "/") {
		invalid("stream.websocket.path must start with '/', got %q", s.WebSocket.Path)
	}

	return errors.Join(errs...)
}

// CPUEvaluation reports whether points are evaluated on the CPU.
func (c Config) CPUEvaluation() bool {
	return strings.EqualFold(c.Graph.Evaluation, EvaluationCPU)
}

// StreamingEnabled reports whether any stream sink is configured.
func (c Config) StreamingEnabled() bool {
	return c.Stream.MQTT != nil || c.Stream.WebSocket != nil
}

// AnimatorOptions converts the graph section into animator options.
//
// Returns:
//   - []graph.AnimatorBuilderOption: the options
//   - error: an error if a name does not resolve
func (c Config) AnimatorOptions() ([]graph.AnimatorBuilderOption, error) {
	policy, err := graph.ParsePolicy(c.Graph.Policy)
	if err != nil {
		return nil, err
	}
	initial, err := surface.ParseKind(c.Graph.InitialSurface)
	if err != nil {
		return nil, err
	}
	curve, err := graph.CurveByName(c.Graph.Curve)
	if err != nil {
		return nil, err
	}
	return []graph.AnimatorBuilderOption{
		graph.WithHoldDuration(c.Graph.HoldDuration),
		graph.WithTransitionDuration(c.Graph.TransitionDuration),
		graph.WithMovePolicy(policy),
		graph.WithInitialSurface(initial),
		graph.WithProgressCurve(curve),
	}, nil
}

// EvaluatorOptions converts the graph section into CPU evaluator options.
//
// Returns:
//   - []grid.EvaluatorBuilderOption: the options
func (c Config) EvaluatorOptions() []grid.EvaluatorBuilderOption {
	opts := []grid.EvaluatorBuilderOption{grid.WithResolution(c.Graph.Resolution)}
	if c.Graph.Workers > 0 {
		opts = append(opts, grid.WithWorkers(c.Graph.Workers))
	}
	return opts
}

// CameraOptions converts the camera section into camera options.
//
// Returns:
//   - []camera.CameraBuilderOption: the options
func (c Config) CameraOptions() []camera.CameraBuilderOption {
	const degrees = common.Pi / 180
	return []camera.CameraBuilderOption{
		camera.WithRadius(c.Camera.Distance),
		camera.WithAzimuth(c.Camera.Yaw * degrees),
		camera.WithElevation(c.Camera.Pitch * degrees),
		camera.WithFov(c.Camera.Fov * degrees),
	}
}

// ProfilerOptions converts the profiler section into profiler options.
//
// Returns:
//   - []profiler.ProfilerBuilderOption: the options
//   - error: an error if the mode does not resolve
func (c Config) ProfilerOptions() ([]profiler.ProfilerBuilderOption, error) {
	mode, err := profiler.ParseMode(c.Profiler.Mode)
	if err != nil {
		return nil, err
	}
	return []profiler.ProfilerBuilderOption{
		profiler.WithMode(mode),
		profiler.WithInterval(c.Profiler.Interval),
		profiler.WithLogging(c.Profiler.Log),
	}, nil
}

// NewPalette builds the palette with the configured overrides.
//
// Returns:
//   - *palette.Palette: the palette
//   - error: an error if an override is malformed
func (c Config) NewPalette() (*palette.Palette, error) {
	return palette.New(c.Palette)
}

// MQTTOptions converts the MQTT section into sink options. It returns nil when MQTT is off.
//
// Returns:
//   - []stream.MQTTSinkOption: the options, or nil
func (c Config) MQTTOptions() []stream.MQTTSinkOption {
	m := c.Stream.MQTT
	if m == nil {
		return nil
	}
	return []stream.MQTTSinkOption{
		stream.WithBroker(m.Broker),
		stream.WithClientID(m.ClientID),
		stream.WithTopic(m.Topic),
		stream.WithQoS(byte(m.QoS)),
		stream.WithRetained(m.Retained),
	}
}

// StreamerOptions converts the stream section into streamer options publishing to sinks.
//
// Parameters:
//   - sinks: the sinks to publish to
//
// Returns:
//   - []stream.StreamerBuilderOption: the options
func (c Config) StreamerOptions(sinks ...stream.Sink) []stream.StreamerBuilderOption {
	opts := []stream.StreamerBuilderOption{
		stream.WithInterval(time.Duration(c.Stream.IntervalMS) * time.Millisecond),
		stream.WithSampleResolution(c.Stream.SampleResolution),
	}
	for _, s := range sinks {
		opts = append(opts, stream.WithSink(s))
	}
	return opts
}
