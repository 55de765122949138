package stream

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/grid"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
	"github.com/gorilla/websocket"
)

// recordingSink keeps a copy of every snapshot it receives. When gate is non-nil each
// Publish waits for a value on it.
type recordingSink struct {
	mu        sync.Mutex
	snapshots []Snapshot
	closed    bool
	gate      chan struct{}
	received  chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{received: make(chan struct{}, 16)}
}

func (r *recordingSink) Publish(s Snapshot) error {
	if r.gate != nil {
		<-r.gate
	}
	s.Points = append([]common.Point3(nil), s.Points...)
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
	r.received <- struct{}{}
	return nil
}

func (r *recordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMarshalBinaryLayout(t *testing.T) {
	snap := Snapshot{
		Time:       2.5,
		Frame:      graph.Frame{Current: surface.Ripple, Target: surface.Torus, Transitioning: true, Weight: 0.75},
		Tint:       [3]uint8{0x10, 0x20, 0x30},
		Resolution: 2,
		Points: []common.Point3{
			{X: 1, Y: 2, Z: 3}, {X: -1}, {Y: -1}, {Z: 0.5},
		},
	}
	data, err := snap.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(data) != 17+4*12 {
		t.Fatalf("length = %d, want %d", len(data), 17+4*12)
	}
	if data[0] != SnapshotVersion || data[1] != 2 || data[2] != 4 || data[3] != 1 {
		t.Errorf("header = %v, want [1 2 4 1]", data[:4])
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[4:])); got != 2.5 {
		t.Errorf("time = %v", got)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[8:])); got != 0.75 {
		t.Errorf("weight = %v", got)
	}
	if data[12] != 0x10 || data[13] != 0x20 || data[14] != 0x30 {
		t.Errorf("tint = %v", data[12:15])
	}
	if binary.LittleEndian.Uint16(data[15:]) != 2 {
		t.Errorf("resolution = %d", binary.LittleEndian.Uint16(data[15:]))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[17+4:])); got != 2 {
		t.Errorf("first point y = %v, want 2", got)
	}

	var back Snapshot
	if err := back.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if back.Frame.Current != surface.Ripple || !back.Frame.Transitioning || back.Points[3] != snap.Points[3] {
		t.Errorf("decoded = %+v", back)
	}
}

func TestMarshalBinaryRejectsMismatch(t *testing.T) {
	if _, err := (Snapshot{Resolution: 3, Points: make([]common.Point3, 4)}).MarshalBinary(); err == nil {
		t.Error("point count mismatch accepted")
	}
	var s Snapshot
	if err := s.UnmarshalBinary([]byte{1, 2, 3}); err == nil {
		t.Error("truncated snapshot accepted")
	}
	bad := make([]byte, 17)
	bad[0] = 9
	if err := s.UnmarshalBinary(bad); err == nil {
		t.Error("unknown version accepted")
	}
}

func TestMarshalJSON(t *testing.T) {
	snap := Snapshot{
		Time:       1,
		Frame:      graph.Frame{Current: surface.MultiWave, Target: surface.MultiWave},
		Tint:       [3]uint8{0xff, 0x00, 0x7f},
		Resolution: 1,
		Points:     []common.Point3{{X: 0.5}},
	}
	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["current"] != "multi_wave" || got["tint"] != "#ff007f" || got["transitioning"] != false {
		t.Errorf("json = %s", b)
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	waitFor(t, "client registration", func() bool { return hub.Clients() == 1 })

	snap := Snapshot{Time: 3, Frame: graph.Frame{Current: surface.Sphere, Target: surface.Sphere}}
	if err := hub.Publish(snap); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got map[string]any
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got["current"] != "sphere" || got["time"] != 3.0 {
		t.Errorf("received %v", got)
	}

	conn.Close()
	waitFor(t, "client removal", func() bool { return hub.Clients() == 0 })

	if err := hub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := hub.Publish(snap); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after Close = %v, want ErrClosed", err)
	}
}

func TestStreamerThrottlesAndSamples(t *testing.T) {
	sink := newRecordingSink()
	s, err := NewStreamer(WithSink(sink), WithInterval(100*time.Millisecond), WithSampleResolution(10))
	if err != nil {
		t.Fatalf("NewStreamer: %v", err)
	}

	frame := graph.Frame{Current: surface.Wave, Target: surface.Wave}
	if !s.Offer(0, frame, [3]uint8{1, 2, 3}) {
		t.Fatal("first frame rejected")
	}
	<-sink.received

	if s.Offer(0.05, frame, [3]uint8{}) {
		t.Error("frame inside the interval accepted")
	}
	waitFor(t, "publish to finish", func() bool { return !s.busy.Load() })
	if !s.Offer(0.2, frame, [3]uint8{}) {
		t.Error("frame after the interval rejected")
	}
	<-sink.received

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
	if s.Offer(10, frame, [3]uint8{}) {
		t.Error("frame accepted after Close")
	}

	if len(sink.snapshots) != 2 || s.Published() != 2 {
		t.Fatalf("published %d snapshots (counter %d), want 2", len(sink.snapshots), s.Published())
	}
	first := sink.snapshots[0]
	if first.Resolution != 10 || len(first.Points) != 100 || first.Tint != [3]uint8{1, 2, 3} {
		t.Fatalf("first snapshot = res %d, %d points, tint %v", first.Resolution, len(first.Points), first.Tint)
	}
	g, _ := grid.New(10)
	if want := surface.Evaluate(surface.Wave, g.Coord(0), g.Coord(0), 0); first.Points[0] != want {
		t.Errorf("first point = %+v, want %+v", first.Points[0], want)
	}
}

func TestStreamerDropsWhileBusy(t *testing.T) {
	sink := newRecordingSink()
	sink.gate = make(chan struct{})
	s, err := NewStreamer(WithSink(sink), WithInterval(0))
	if err != nil {
		t.Fatalf("NewStreamer: %v", err)
	}

	frame := graph.Frame{Current: surface.Torus, Target: surface.Torus}
	if !s.Offer(0, frame, [3]uint8{}) {
		t.Fatal("first frame rejected")
	}
	if s.Offer(1, frame, [3]uint8{}) {
		t.Error("frame accepted while a publish was in flight")
	}
	if s.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", s.Dropped())
	}

	sink.gate <- struct{}{}
	<-sink.received
	waitFor(t, "publish to finish", func() bool { return !s.busy.Load() })

	if !s.Offer(2, frame, [3]uint8{}) {
		t.Error("frame rejected after the publish finished")
	}
	sink.gate <- struct{}{}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(sink.snapshots) != 2 || sink.snapshots[0].Points != nil {
		t.Errorf("snapshots = %d, first has %d points", len(sink.snapshots), len(sink.snapshots[0].Points))
	}
}

func TestNewStreamerRejectsBadResolution(t *testing.T) {
	if _, err := NewStreamer(WithSampleResolution(3)); err == nil {
		t.Error("resolution 3 accepted")
	}
}

func TestMQTTSinkConnectFailure(t *testing.T) {
	if _, err := NewMQTTSink(WithBroker("tcp://127.0.0.1:1"), WithTimeout(500*time.Millisecond)); err == nil {
		t.Error("connected to a closed port")
	}
	if _, err := NewMQTTSink(WithQoS(3)); err == nil {
		t.Error("qos 3 accepted")
	}
}

func TestMQTTSinkPublishEncodes(t *testing.T) {
	var payloads [][]byte
	sink := &MQTTSink{
		mu:    &sync.Mutex{},
		topic: "test",
		publish: func(p []byte) error {
			payloads = append(payloads, p)
			return nil
		},
	}
	snap := Snapshot{Frame: graph.Frame{Current: surface.Wave, Target: surface.Ripple}}
	if err := sink.Publish(snap); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(payloads) != 1 || len(payloads[0]) != 17 || payloads[0][2] != byte(surface.Ripple) {
		t.Errorf("payloads = %v", payloads)
	}
	sink.Close()
	if err := sink.Publish(snap); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after Close = %v, want ErrClosed", err)
	}
}
