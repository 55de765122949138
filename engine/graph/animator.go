// Package graph drives the surface graph over time. Its Animator alternates between holding
// one surface and transitioning to the next, and reports the pair of surfaces and the blend
// progress the renderer needs each frame.
package graph

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/common"
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

// ErrInvalidConfiguration is returned by NewAnimator when a duration is not strictly positive
// or the initial surface is outside the catalog.
var ErrInvalidConfiguration = errors.New("invalid animator configuration")

// State is a snapshot of the animator's timing state.
type State struct {
	// Current is the surface being held, or the surface being morphed away from.
	Current surface.Kind

	// Target is the surface being morphed toward. Only meaningful while Transitioning.
	Target surface.Kind

	// Elapsed is the time in seconds spent in the current phase, including any remainder
	// carried over from the previous phase.
	Elapsed float32

	// Transitioning is true during the morph phase and false during the hold phase.
	Transitioning bool
}

// Frame describes which surfaces to evaluate for one rendered frame.
type Frame struct {
	// Current is the surface on display, or the morph start when Transitioning.
	Current surface.Kind

	// Target is the morph destination. Equal to Current while holding.
	Target surface.Kind

	// Transitioning reports whether the frame is a blend of Current and Target.
	Transitioning bool

	// Progress is elapsed / transitionDuration while transitioning and 0 while holding.
	// It is the raw progress, before smoothing.
	Progress float32

	// Weight is the interpolation factor: the progress curve applied to
	// SmoothStep01(Progress). With the default linear curve it equals SmoothStep01(Progress).
	Weight float32
}

// Evaluate returns the point for grid coordinates (u, v) at time t for this frame.
//
// Parameters:
//   - u, v: grid coordinates in [-1, 1]
//   - t: time in seconds
//
// Returns:
//   - common.Point3: the held surface point, or the morphed point while transitioning
func (f Frame) Evaluate(u, v, t float32) common.Point3 {
	if !f.Transitioning {
		return surface.Evaluate(f.Current, u, v, t)
	}
	return surface.MorphWeighted(u, v, t, f.Current, f.Target, f.Weight)
}

// animator is the implementation of the Animator interface.
type animator struct {
	holdDuration       float32
	transitionDuration float32
	policy             MovePolicy
	source             IntSource
	curve              Curve
	state              State
}

// Animator owns the hold/transition state machine that selects which surfaces the graph shows.
//
// Each Advance call accumulates the frame's delta time and performs at most one phase
// change, carrying any leftover time into the new phase. A delta spanning several periods
// therefore flips once per call rather than catching up. The Animator is not safe for
// concurrent use; it is advanced from the frame loop only.
type Animator interface {
	// Advance moves the state machine forward by dt seconds and returns the frame to render.
	//
	// Parameters:
	//   - dt: the frame delta time in seconds, expected to be non-negative
	//
	// Returns:
	//   - Frame: the surfaces and blend factor for this frame
	Advance(dt float32) Frame

	// Frame returns the frame for the current state without advancing time.
	//
	// Returns:
	//   - Frame: the surfaces and blend factor for the current state
	Frame() Frame

	// State returns a copy of the internal timing state.
	//
	// Returns:
	//   - State: the current state snapshot
	State() State

	// HoldDuration returns the configured length of the hold phase in seconds.
	HoldDuration() float32

	// TransitionDuration returns the configured length of the transition phase in seconds.
	TransitionDuration() float32

	// Policy returns the policy used to choose the next surface.
	Policy() MovePolicy
}

var _ Animator = &animator{}

// NewAnimator creates a new Animator holding its initial surface with no elapsed time.
// Without options the animator starts on Wave, holds and transitions for one second each,
// cycles through the catalog and applies no extra progress curve.
//
// Parameters:
//   - options: variadic list of AnimatorBuilderOption functions to configure the animator
//
// Returns:
//   - Animator: the configured animator
//   - error: an error wrapping ErrInvalidConfiguration when a duration is not positive
func NewAnimator(options ...AnimatorBuilderOption) (Animator, error) {
	a := &animator{
		holdDuration:       1,
		transitionDuration: 1,
		policy:             PolicyCycle,
		curve:              LinearCurve,
		state: State{
			Current: surface.Wave,
			Target:  surface.Wave,
		},
	}

	for _, opt := range options {
		opt(a)
	}

	// NaN fails both comparisons, so it is rejected along with non-positive values
	if !(a.holdDuration > 0) {
		return nil, fmt.Errorf("%w: hold duration must be positive, got %v", ErrInvalidConfiguration, a.holdDuration)
	}
	if !(a.transitionDuration > 0) {
		return nil, fmt.Errorf("%w: transition duration must be positive, got %v", ErrInvalidConfiguration, a.transitionDuration)
	}
	if !a.state.Current.Valid() {
		return nil, fmt.Errorf("%w: unknown initial surface %d", ErrInvalidConfiguration, uint32(a.state.Current))
	}
	if a.policy != PolicyCycle && a.policy != PolicyRandom {
		return nil, fmt.Errorf("%w: unknown move policy %d", ErrInvalidConfiguration, int(a.policy))
	}
	if a.source == nil {
		a.source = newDefaultSource()
	}
	if a.curve == nil {
		a.curve = LinearCurve
	}
	a.state.Target = a.state.Current

	return a, nil
}

func (a *animator) Advance(dt float32) Frame {
	s := &a.state
	s.Elapsed += dt

	if s.Transitioning {
		if s.Elapsed >= a.transitionDuration {
			s.Elapsed -= a.transitionDuration
			s.Current = s.Target
			s.Transitioning = false
		}
	} else if s.Elapsed >= a.holdDuration {
		s.Elapsed -= a.holdDuration
		s.Target = PickNext(a.policy, s.Current, a.source)
		s.Transitioning = true
	}

	return a.Frame()
}

func (a *animator) Frame() Frame {
	s := a.state
	if !s.Transitioning {
		return Frame{
			Current: s.Current,
			Target:  s.Current,
		}
	}

	progress := s.Elapsed / a.transitionDuration
	return Frame{
		Current:       s.Current,
		Target:        s.Target,
		Transitioning: true,
		Progress:      progress,
		Weight:        float32(a.curve(float64(surface.SmoothStep01(progress)))),
	}
}

func (a *animator) State() State {
	return a.state
}

func (a *animator) HoldDuration() float32 {
	return a.holdDuration
}

func (a *animator) TransitionDuration() float32 {
	return a.transitionDuration
}

func (a *animator) Policy() MovePolicy {
	return a.policy
}
