package graph

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

// sequenceSource returns a fixed sequence of draws, wrapping at the end.
type sequenceSource struct {
	values []int
	next   int
}

func (s *sequenceSource) Intn(n int) int {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1e-6
}

func mustAnimator(t *testing.T, options ...AnimatorBuilderOption) Animator {
	t.Helper()
	a, err := NewAnimator(options...)
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	return a
}

func TestNewAnimatorDefaults(t *testing.T) {
	a := mustAnimator(t)

	s := a.State()
	if s.Transitioning || s.Elapsed != 0 || s.Current != surface.Wave {
		t.Errorf("fresh state = %+v, want holding Wave with no elapsed time", s)
	}
	if a.HoldDuration() != 1 || a.TransitionDuration() != 1 {
		t.Errorf("durations = %v/%v, want 1/1", a.HoldDuration(), a.TransitionDuration())
	}
	if a.Policy() != PolicyCycle {
		t.Errorf("policy = %v, want cycle", a.Policy())
	}
}

func TestNewAnimatorRejectsInvalidConfiguration(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name    string
		options []AnimatorBuilderOption
	}{
		{"zero hold", []AnimatorBuilderOption{WithHoldDuration(0)}},
		{"negative hold", []AnimatorBuilderOption{WithHoldDuration(-1)}},
		{"nan hold", []AnimatorBuilderOption{WithHoldDuration(nan)}},
		{"zero transition", []AnimatorBuilderOption{WithTransitionDuration(0)}},
		{"negative transition", []AnimatorBuilderOption{WithTransitionDuration(-0.25)}},
		{"unknown surface", []AnimatorBuilderOption{WithInitialSurface(surface.Kind(12))}},
		{"unknown policy", []AnimatorBuilderOption{WithMovePolicy(MovePolicy(7))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAnimator(tt.options...)
			if err == nil {
				t.Fatalf("NewAnimator succeeded with %s: %+v", tt.name, a)
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("error %v does not wrap ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestAdvanceHoldThenTransitionCarriesRemainder(t *testing.T) {
	a := mustAnimator(t,
		WithHoldDuration(1.0),
		WithTransitionDuration(0.5),
		WithInitialSurface(surface.Wave),
	)

	f := a.Advance(1.2)
	s := a.State()
	if !s.Transitioning {
		t.Fatalf("after advance(1.2) state = %+v, want transitioning", s)
	}
	if !approx(s.Elapsed, 0.2) {
		t.Errorf("after advance(1.2) elapsed = %v, want 0.2", s.Elapsed)
	}
	if s.Current != surface.Wave || s.Target != surface.MultiWave {
		t.Errorf("after advance(1.2) endpoints = %s -> %s, want wave -> multi_wave", s.Current, s.Target)
	}
	if !f.Transitioning || f.Current != surface.Wave || f.Target != surface.MultiWave {
		t.Errorf("frame = %+v, want transition wave -> multi_wave", f)
	}
	if !approx(f.Progress, 0.4) {
		t.Errorf("frame progress = %v, want 0.4", f.Progress)
	}
	if !approx(f.Weight, surface.SmoothStep01(f.Progress)) {
		t.Errorf("frame weight = %v, want smoothstep of progress %v", f.Weight, surface.SmoothStep01(f.Progress))
	}

	f = a.Advance(0.5)
	s = a.State()
	if s.Transitioning {
		t.Fatalf("after advance(0.5) state = %+v, want holding", s)
	}
	if !approx(s.Elapsed, 0.2) {
		t.Errorf("after advance(0.5) elapsed = %v, want 0.2", s.Elapsed)
	}
	if s.Current != surface.MultiWave {
		t.Errorf("after advance(0.5) current = %s, want multi_wave", s.Current)
	}
	if f.Transitioning || f.Current != surface.MultiWave || f.Target != surface.MultiWave || f.Progress != 0 || f.Weight != 0 {
		t.Errorf("holding frame = %+v, want multi_wave with no blend", f)
	}
}

func TestAdvanceBelowThresholdKeepsHolding(t *testing.T) {
	a := mustAnimator(t, WithHoldDuration(1.0), WithTransitionDuration(0.5))

	a.Advance(0.6)
	if s := a.State(); s.Transitioning || !approx(s.Elapsed, 0.6) {
		t.Fatalf("after advance(0.6) state = %+v, want holding with 0.6 elapsed", s)
	}
	a.Advance(0.6)
	if s := a.State(); !s.Transitioning || !approx(s.Elapsed, 0.2) {
		t.Fatalf("after second advance(0.6) state = %+v, want transitioning with 0.2 elapsed", s)
	}
}

func TestAdvanceFlipsAtMostOncePerCall(t *testing.T) {
	a := mustAnimator(t, WithHoldDuration(1.0), WithTransitionDuration(0.5))

	prev := a.State()
	for i := 0; i < 6; i++ {
		a.Advance(10)
		cur := a.State()
		if cur.Transitioning == prev.Transitioning {
			t.Fatalf("call %d: advance(10) did not flip state (%+v -> %+v)", i, prev, cur)
		}
		if !prev.Transitioning && cur.Current != prev.Current {
			t.Fatalf("call %d: hold -> transition changed current surface %s -> %s", i, prev.Current, cur.Current)
		}
		if prev.Transitioning && cur.Current != prev.Target {
			t.Fatalf("call %d: transition -> hold landed on %s, want %s", i, cur.Current, prev.Target)
		}
		prev = cur
	}

	// 6 flips are 3 completed transitions under the cycle policy
	if got := a.State().Current; got != surface.Sphere {
		t.Errorf("current after three transitions = %s, want sphere", got)
	}
}

func TestAdvanceLargeDeltaReportsRawProgress(t *testing.T) {
	a := mustAnimator(t, WithHoldDuration(1.0), WithTransitionDuration(0.5))

	f := a.Advance(10)
	if !f.Transitioning {
		t.Fatalf("frame = %+v, want transitioning", f)
	}
	if !approx(f.Progress, 18) {
		t.Errorf("progress = %v, want 18", f.Progress)
	}
	if f.Weight != 1 {
		t.Errorf("weight = %v, want smoothstep to saturate at 1", f.Weight)
	}
}

func TestAdvanceZeroDeltaIsStable(t *testing.T) {
	a := mustAnimator(t)
	for i := 0; i < 100; i++ {
		a.Advance(0)
	}
	if s := a.State(); s.Transitioning || s.Elapsed != 0 || s.Current != surface.Wave {
		t.Errorf("state after zero deltas = %+v", s)
	}
}

func TestFrameDoesNotAdvance(t *testing.T) {
	a := mustAnimator(t, WithHoldDuration(0.5))
	a.Advance(0.75)

	before := a.State()
	f1 := a.Frame()
	f2 := a.Frame()
	if f1 != f2 || a.State() != before {
		t.Errorf("Frame mutated state: %+v then %+v, state %+v -> %+v", f1, f2, before, a.State())
	}
}

func TestCycleVisitsEverySurfaceOnce(t *testing.T) {
	for _, start := range surface.Kinds {
		seen := map[surface.Kind]int{}
		k := start
		for i := 0; i < surface.Count; i++ {
			k = PickNext(PolicyCycle, k, nil)
			seen[k]++
		}
		if k != start {
			t.Errorf("cycle from %s ended on %s after %d steps", start, k, surface.Count)
		}
		for _, kind := range surface.Kinds {
			if seen[kind] != 1 {
				t.Errorf("cycle from %s visited %s %d times", start, kind, seen[kind])
			}
		}
	}

	if got := PickNext(PolicyCycle, surface.Torus, nil); got != surface.Wave {
		t.Errorf("cycle after torus = %s, want wave", got)
	}
}

func TestRandomSubstitutesZeroOnCollision(t *testing.T) {
	// draws map to indices 1..4 in order
	src := &sequenceSource{values: []int{0, 1, 2, 3}}

	got := make([]surface.Kind, 0, 4)
	for i := 0; i < 4; i++ {
		got = append(got, PickNext(PolicyRandom, surface.Ripple, src))
	}

	want := []surface.Kind{surface.MultiWave, surface.Wave, surface.Sphere, surface.Torus}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw %d from ripple = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRandomNeverDrawsZeroFromZero(t *testing.T) {
	src := &sequenceSource{values: []int{0, 1, 2, 3}}
	for i := 0; i < 40; i++ {
		if k := PickNext(PolicyRandom, surface.Wave, src); k == surface.Wave {
			t.Fatalf("random pick from wave returned wave")
		}
	}
}

func TestRandomBiasTowardFirstSurface(t *testing.T) {
	src := rand.New(rand.NewSource(7))
	const draws = 20000

	counts := map[surface.Kind]int{}
	for i := 0; i < draws; i++ {
		k := PickNext(PolicyRandom, surface.Sphere, src)
		if k == surface.Sphere {
			t.Fatalf("random pick returned the current surface")
		}
		counts[k]++
	}

	// a collision with the current surface falls through to index 0, so index 0 takes
	// 1/(count-1) of the draws instead of a uniform 1/count
	freq := float64(counts[surface.Wave]) / draws
	if freq <= 1.0/surface.Count {
		t.Errorf("index 0 frequency = %.3f, want more than uniform %.3f", freq, 1.0/surface.Count)
	}
	if math.Abs(freq-1.0/(surface.Count-1)) > 0.02 {
		t.Errorf("index 0 frequency = %.3f, want about %.3f", freq, 1.0/(surface.Count-1))
	}
}

func TestRandomPolicyThroughAnimator(t *testing.T) {
	src := &sequenceSource{values: []int{2}}
	a := mustAnimator(t,
		WithMovePolicy(PolicyRandom),
		WithRandomSource(src),
		WithInitialSurface(surface.Ripple),
		WithHoldDuration(1),
		WithTransitionDuration(1),
	)

	// draw 2 maps to index 3 (sphere)
	f := a.Advance(1)
	if f.Target != surface.Sphere {
		t.Fatalf("target = %s, want sphere", f.Target)
	}
	a.Advance(1)
	// from sphere the same draw collides and falls back to wave
	f = a.Advance(1)
	if f.Target != surface.Wave {
		t.Errorf("target after collision = %s, want wave", f.Target)
	}
}

func TestProgressCurveShapesWeight(t *testing.T) {
	curve, err := CurveByName("out_back")
	if err != nil {
		t.Fatalf("CurveByName: %v", err)
	}
	a := mustAnimator(t, WithProgressCurve(curve))

	a.Advance(1)
	f := a.Advance(0.55)
	if !f.Transitioning {
		t.Fatalf("frame = %+v, want transitioning", f)
	}
	if f.Weight <= 1 {
		t.Errorf("out_back weight at progress %v = %v, want overshoot past 1", f.Progress, f.Weight)
	}

	p := f.Evaluate(0.3, 0.3, 0)
	want := surface.MorphWeighted(0.3, 0.3, 0, f.Current, f.Target, f.Weight)
	if p != want {
		t.Errorf("Frame.Evaluate = %+v, want %+v", p, want)
	}
}

func TestFrameEvaluateHolding(t *testing.T) {
	f := Frame{Current: surface.Torus, Target: surface.Torus}
	if got, want := f.Evaluate(0.1, -0.2, 3), surface.Evaluate(surface.Torus, 0.1, -0.2, 3); got != want {
		t.Errorf("holding Evaluate = %+v, want %+v", got, want)
	}
}

func TestCurveByName(t *testing.T) {
	for _, name := range CurveNames() {
		c, err := CurveByName(name)
		if err != nil {
			t.Errorf("CurveByName(%q): %v", name, err)
			continue
		}
		// elastic curves settle within a small ripple of their endpoints
		if got := c(0); math.Abs(got) > 0.01 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := c(1); math.Abs(got-1) > 0.01 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
	if c, err := CurveByName(""); err != nil || c(0.3) != 0.3 {
		t.Errorf("empty curve name did not select linear")
	}
	if _, err := CurveByName("wobble"); err == nil {
		t.Error("CurveByName accepted an unknown curve")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MovePolicy
		wantErr bool
	}{
		{"cycle", PolicyCycle, false},
		{"Random", PolicyRandom, false},
		{"", PolicyCycle, false},
		{"shuffle", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || (!tt.wantErr && got != tt.want) {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestGPUGraphParamsLayout(t *testing.T) {
	frame := Frame{Current: surface.Ripple, Target: surface.Torus, Transitioning: true, Progress: 0.5, Weight: 0.5}
	p := NewGPUGraphParams(frame, 100, 0.02, 3.5, [4]float32{0.1, 0.2, 0.3, 1})

	if p.Size() != 48 {
		t.Fatalf("Size() = %d, want 48", p.Size())
	}
	buf := p.Marshal()
	if len(buf) != 48 {
		t.Fatalf("Marshal length = %d, want 48", len(buf))
	}

	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	if binary.LittleEndian.Uint32(buf[0:]) != 100 {
		t.Errorf("resolution = %d", binary.LittleEndian.Uint32(buf[0:]))
	}
	if f32(4) != 0.02 || f32(8) != 3.5 || f32(12) != 0.5 {
		t.Errorf("step/time/weight = %v/%v/%v", f32(4), f32(8), f32(12))
	}
	if binary.LittleEndian.Uint32(buf[16:]) != uint32(surface.Ripple) || binary.LittleEndian.Uint32(buf[20:]) != uint32(surface.Torus) {
		t.Errorf("kinds = %d -> %d", binary.LittleEndian.Uint32(buf[16:]), binary.LittleEndian.Uint32(buf[20:]))
	}
	if f32(32) != 0.1 || f32(44) != 1 {
		t.Errorf("tint = %v..%v", f32(32), f32(44))
	}

	held := NewGPUGraphParams(Frame{Current: surface.Sphere, Target: surface.Sphere}, 10, 0.2, 0, [4]float32{})
	if held.FromKind != held.ToKind || held.Weight != 0 {
		t.Errorf("holding params = %+v, want from == to and zero weight", held)
	}
}
