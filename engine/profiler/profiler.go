package profiler

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"strings"
	"sync"
)

// Mode selects how frame timings are reported.
type Mode int

const (
	// ModeFPS reports frames per second.
	ModeFPS Mode = iota

	// ModeMS reports milliseconds per frame.
	ModeMS
)

const (
	// MinInterval is the shortest sample window in seconds.
	MinInterval = 0.1

	// MaxInterval is the longest sample window in seconds.
	MaxInterval = 2.0
)

// String returns the display label of the mode.
func (m Mode) String() string {
	if m == ModeMS {
		return "MS"
	}
	return "FPS"
}

// ParseMode maps "fps" or "ms" (case-insensitive) to a Mode. An empty name is ModeFPS.
//
// Parameters:
//   - name: the mode name
//
// Returns:
//   - Mode: the parsed mode
//   - error: an error if the name is unknown
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "fps":
		return ModeFPS, nil
	case "ms":
		return ModeMS, nil
	default:
		return ModeFPS, fmt.Errorf("unknown profiler mode %q", name)
	}
}

// Stats summarises one sample window. Best and Worst are the shortest and longest frame,
// Average covers the whole window; all three are expressed in the window's Mode.
type Stats struct {
	Mode    Mode
	Best    float64
	Average float64
	Worst   float64
	Frames  int
}

// String formats the stats as "FPS: best/avg/worst".
func (s Stats) String() string {
	return fmt.Sprintf("%s: %.1f/%.1f/%.1f", s.Mode, s.Best, s.Average, s.Worst)
}

// Profiler tracks frame timing and memory statistics for performance monitoring.
// Outputs stats to the log once per sample window.
type Profiler struct {
	mu *sync.Mutex

	mode     Mode
	interval float64
	logging  bool

	frames      int
	duration    float64
	minDuration float64
	maxDuration float64
	last        Stats

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler. Without options it reports FPS once per second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:       &sync.Mutex{},
		mode:     ModeFPS,
		interval: 1,
		logging:  true,
	}
	for _, opt := range options {
		opt(p)
	}
	if !(p.interval >= MinInterval) {
		p.interval = MinInterval
	}
	p.interval = min(p.interval, MaxInterval)
	p.reset()
	return p
}

// Tick records one frame of dt seconds. When the accumulated duration reaches the sample
// interval it produces Stats, logs them with the current memory statistics, and starts a new
// window. Non-positive frame times are ignored.
//
// Parameters:
//   - dt: the unscaled frame time in seconds
//
// Returns:
//   - Stats: the completed window's stats, valid only when the bool is true
//   - bool: true if a window completed on this tick
func (p *Profiler) Tick(dt float64) (Stats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !(dt > 0) {
		return Stats{}, false
	}

	p.frames++
	p.duration += dt
	p.minDuration = min(p.minDuration, dt)
	p.maxDuration = max(p.maxDuration, dt)

	if p.duration < p.interval {
		return Stats{}, false
	}

	s := Stats{Mode: p.mode, Frames: p.frames}
	switch p.mode {
	case ModeMS:
		s.Best = 1000 * p.minDuration
		s.Average = 1000 * p.duration / float64(p.frames)
		s.Worst = 1000 * p.maxDuration
	default:
		s.Best = 1 / p.minDuration
		s.Average = float64(p.frames) / p.duration
		s.Worst = 1 / p.maxDuration
	}

	if p.logging {
		p.logMemory(s)
	}
	p.last = s
	p.reset()
	return s, true
}

// Mode returns the current reporting mode.
func (p *Profiler) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// ToggleMode switches between ModeFPS and ModeMS. The current window keeps accumulating.
//
// Returns:
//   - Mode: the new mode
func (p *Profiler) ToggleMode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == ModeFPS {
		p.mode = ModeMS
	} else {
		p.mode = ModeFPS
	}
	return p.mode
}

// Interval returns the sample window length in seconds.
func (p *Profiler) Interval() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Last returns the most recently completed window's stats.
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// reset starts a new sample window. Caller must hold the mutex.
func (p *Profiler) reset() {
	p.frames = 0
	p.duration = 0
	p.minDuration = math.MaxFloat64
	p.maxDuration = 0
}

// logMemory writes the window's stats together with heap, allocation rate and GC pause
// figures. Caller must hold the mutex.
func (p *Profiler) logMemory(s Stats) {
	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / p.duration

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	log.Printf("[Profiler] %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		s, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
