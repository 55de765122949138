package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(empty): %v", err)
	}
	if cfg.Graph.Resolution != 100 || cfg.Window.Title != "Oxy Graph" || cfg.StreamingEnabled() {
		t.Errorf("empty document = %+v, want defaults", cfg)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
graph:
  resolution: 200
  hold_duration: 2.5
  policy: random
  initial_surface: torus
  curve: out_back
  evaluation: cpu
  workers: 4
window:
  vsync: false
  msaa: 1
camera:
  fov: 45
palette:
  sphere: "#ff0000"
stream:
  websocket: {}
  mqtt:
    topic: graphs/demo
    qos: 1
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Graph.Resolution != 200 || cfg.Graph.HoldDuration != 2.5 {
		t.Errorf("graph = %+v", cfg.Graph)
	}
	if cfg.Graph.TransitionDuration != 1 {
		t.Errorf("transition_duration = %v, want the default 1", cfg.Graph.TransitionDuration)
	}
	if cfg.Window.Width != 1280 || cfg.Window.VSync {
		t.Errorf("window = %+v", cfg.Window)
	}
	if !cfg.CPUEvaluation() || !cfg.StreamingEnabled() {
		t.Error("cpu evaluation and streaming should be enabled")
	}
	if ws := cfg.Stream.WebSocket; ws.Addr != ":8080" || ws.Path != "/ws" {
		t.Errorf("websocket = %+v, want :8080 /ws", ws)
	}
	if m := cfg.Stream.MQTT; m.Broker != "tcp://localhost:1883" || m.Topic != "graphs/demo" || m.QoS != 1 {
		t.Errorf("mqtt = %+v", m)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"zero hold", "graph: {hold_duration: 0}", "graph.hold_duration"},
		{"negative transition", "graph: {transition_duration: -1}", "graph.transition_duration"},
		{"small grid", "graph: {resolution: 5}", "graph.resolution"},
		{"policy", "graph: {policy: shuffle}", "graph.policy"},
		{"surface", "graph: {initial_surface: cube}", "graph.initial_surface"},
		{"curve", "graph: {curve: wobble}", "graph.curve"},
		{"evaluation", "graph: {evaluation: tpu}", "graph.evaluation"},
		{"msaa", "window: {msaa: 2}", "window.msaa"},
		{"fov", "camera: {fov: 180}", "camera.fov"},
		{"profiler mode", "profiler: {mode: hz}", "profiler.mode"},
		{"profiler interval", "profiler: {interval: 5}", "profiler.interval"},
		{"palette", "palette: {wave: nothex}", "palette"},
		{"qos", "stream: {mqtt: {qos: 3}}", "stream.mqtt.qos"},
		{"path", "stream: {websocket: {path: ws}}", "stream.websocket.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Parse(%q) error = %v, want ErrInvalidConfig", tt.doc, err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	_, err := Parse([]byte("graph: {hold_duration: 0, transition_duration: 0}"))
	if err == nil {
		t.Fatal("Parse accepted zero durations")
	}
	for _, field := range []string{"graph.hold_duration", "graph.transition_duration"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not name %s", err, field)
		}
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse([]byte("graph: {hold: 1}")); err == nil {
		t.Error("Parse accepted an unknown field")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	if err := os.WriteFile(path, []byte("graph: {policy: random}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graph.Policy != "random" {
		t.Errorf("policy = %q, want random", cfg.Graph.Policy)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestAnimatorOptions(t *testing.T) {
	cfg, err := Parse([]byte("graph: {hold_duration: 2, transition_duration: 0.5, policy: random, initial_surface: ripple}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := cfg.AnimatorOptions()
	if err != nil {
		t.Fatalf("AnimatorOptions: %v", err)
	}
	a, err := graph.NewAnimator(opts...)
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	if a.HoldDuration() != 2 || a.TransitionDuration() != 0.5 || a.Policy() != graph.PolicyRandom {
		t.Errorf("animator = hold %v, transition %v, policy %v", a.HoldDuration(), a.TransitionDuration(), a.Policy())
	}
	if a.Frame().Current != surface.Ripple {
		t.Errorf("initial surface = %v, want ripple", a.Frame().Current)
	}
}

func TestProfilerOptions(t *testing.T) {
	cfg, err := Parse([]byte("profiler: {mode: ms, interval: 0.5}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := cfg.ProfilerOptions()
	if err != nil {
		t.Fatalf("ProfilerOptions: %v", err)
	}
	p := profiler.NewProfiler(opts...)
	if p.Mode() != profiler.ModeMS || p.Interval() != 0.5 {
		t.Errorf("profiler = %v every %v, want MS every 0.5", p.Mode(), p.Interval())
	}
}

func TestStreamOptions(t *testing.T) {
	cfg := Default()
	if cfg.MQTTOptions() != nil {
		t.Error("MQTTOptions should be nil without an mqtt section")
	}
	if got := len(cfg.StreamerOptions(nil, nil)); got != 4 {
		t.Errorf("StreamerOptions with two sinks = %d options, want 4", got)
	}
	if time.Duration(cfg.Stream.IntervalMS)*time.Millisecond != 100*time.Millisecond {
		t.Errorf("default interval = %dms, want 100ms", cfg.Stream.IntervalMS)
	}
}
