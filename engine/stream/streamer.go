package stream

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/graph"
	"github.com/Carmen-Shannon/oxy-graph/engine/grid"
)

// request is a frame handed from Offer to the publishing goroutine.
type request struct {
	time  float32
	frame graph.Frame
	tint  [3]uint8
}

// Streamer throttles rendered frames, samples the surface on the CPU, and publishes the
// resulting snapshots to its sinks from a background goroutine. Offer never blocks: a frame
// arriving while the previous one is still being published is dropped.
type Streamer struct {
	sinks            []Sink
	interval         float32
	sampleResolution int
	workers          int

	evaluator grid.Evaluator
	points    []common.Point3

	mu       *sync.Mutex
	lastTime float32
	sent     bool
	closed   bool

	busy      atomic.Bool
	published atomic.Uint64
	dropped   atomic.Uint64

	mailbox chan request
	done    chan struct{}
}

// NewStreamer creates a Streamer and starts its publishing goroutine. Without options it
// publishes every 100ms to no sinks and samples no points.
//
// Parameters:
//   - options: variadic list of StreamerBuilderOption functions
//
// Returns:
//   - *Streamer: the running streamer
//   - error: an error if the sample resolution is invalid
func NewStreamer(options ...StreamerBuilderOption) (*Streamer, error) {
	s := &Streamer{
		interval: 0.1,
		workers:  2,
		mu:       &sync.Mutex{},
		mailbox:  make(chan request, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.sampleResolution > 0 {
		e, err := grid.NewEvaluator(grid.WithResolution(s.sampleResolution), grid.WithWorkers(s.workers))
		if err != nil {
			return nil, err
		}
		s.evaluator = e
		s.points = make([]common.Point3, e.Grid().PointCount())
	}

	go s.run()
	return s, nil
}

// Offer hands a rendered frame to the streamer. The frame is accepted when at least one
// interval has passed since the last accepted frame and no publish is in flight.
//
// Parameters:
//   - t: graph time in seconds
//   - frame: the animator frame
//   - tint: the palette colour of the frame
//
// Returns:
//   - bool: true if the frame was accepted for publishing
func (s *Streamer) Offer(t float32, frame graph.Frame, tint [3]uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || (s.sent && t-s.lastTime < s.interval) {
		return false
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.dropped.Add(1)
		return false
	}

	s.lastTime = t
	s.sent = true
	s.mailbox <- request{time: t, frame: frame, tint: tint}
	return true
}

// Published returns how many snapshots have been delivered to the sinks.
func (s *Streamer) Published() uint64 {
	return s.published.Load()
}

// Dropped returns how many frames were rejected because a publish was in flight.
func (s *Streamer) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops accepting frames, waits for the in-flight publish, then closes every sink
// and releases the sampler.
//
// Returns:
//   - error: the joined errors from closing the sinks
func (s *Streamer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.mailbox)
	s.mu.Unlock()

	<-s.done

	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.evaluator != nil {
		s.evaluator.Release()
	}
	return errors.Join(errs...)
}

func (s *Streamer) run() {
	defer close(s.done)
	for req := range s.mailbox {
		s.publish(req)
		s.busy.Store(false)
	}
}

func (s *Streamer) publish(req request) {
	snap := Snapshot{
		Time:  req.time,
		Frame: req.frame,
		Tint:  req.tint,
	}
	if s.evaluator != nil {
		if err := s.evaluator.Evaluate(req.frame, req.time, s.points); err != nil {
			log.Printf("[Stream] sampling failed: %v", err)
			return
		}
		snap.Resolution = s.sampleResolution
		snap.Points = s.points
	}

	for _, sink := range s.sinks {
		if err := sink.Publish(snap); err != nil {
			log.Printf("[Stream] publish failed: %v", err)
		}
	}
	s.published.Add(1)
}
