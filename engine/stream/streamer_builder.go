package stream

import "time"

// StreamerBuilderOption is a functional option for configuring a Streamer during construction.
type StreamerBuilderOption func(*Streamer)

// WithSink adds a sink that receives every published snapshot.
//
// Parameters:
//   - sink: the sink
//
// Returns:
//   - StreamerBuilderOption: a function that adds the sink to a streamer
func WithSink(sink Sink) StreamerBuilderOption {
	return func(s *Streamer) {
		s.sinks = append(s.sinks, sink)
	}
}

// WithInterval sets the minimum graph time between published snapshots.
//
// Parameters:
//   - interval: the publish interval
//
// Returns:
//   - StreamerBuilderOption: a function that applies the interval to a streamer
func WithInterval(interval time.Duration) StreamerBuilderOption {
	return func(s *Streamer) {
		s.interval = float32(interval.Seconds())
	}
}

// WithSampleResolution sets the number of CPU-sampled points per grid edge. Zero publishes
// snapshots without points; other values must be a valid grid resolution.
//
// Parameters:
//   - resolution: points per edge
//
// Returns:
//   - StreamerBuilderOption: a function that applies the resolution to a streamer
func WithSampleResolution(resolution int) StreamerBuilderOption {
	return func(s *Streamer) {
		s.sampleResolution = resolution
	}
}

// WithSampleWorkers sets the number of workers used to sample points.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - StreamerBuilderOption: a function that applies the worker count to a streamer
func WithSampleWorkers(workers int) StreamerBuilderOption {
	return func(s *Streamer) {
		s.workers = workers
	}
}
