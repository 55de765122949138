package profiler

// ProfilerBuilderOption is a functional option for configuring a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithMode sets the initial reporting mode.
//
// Parameters:
//   - mode: ModeFPS or ModeMS
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the mode to a profiler
func WithMode(mode Mode) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.mode = mode
	}
}

// WithInterval sets the sample window in seconds. It is clamped to [MinInterval, MaxInterval].
//
// Parameters:
//   - seconds: the window length
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval to a profiler
func WithInterval(seconds float64) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.interval = seconds
	}
}

// WithLogging enables or disables the log line written at the end of each window.
//
// Parameters:
//   - enabled: whether to log
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the setting to a profiler
func WithLogging(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logging = enabled
	}
}
