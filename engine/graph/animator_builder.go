package graph

import (
	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*animator)

// WithHoldDuration is an option builder that sets how long each surface is held before a
// transition starts. Values that are not strictly positive make NewAnimator fail.
//
// Parameters:
//   - seconds: the hold phase length in seconds
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the hold duration to an animator
func WithHoldDuration(seconds float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.holdDuration = seconds
	}
}

// WithTransitionDuration is an option builder that sets how long a morph between two
// surfaces lasts. Values that are not strictly positive make NewAnimator fail.
//
// Parameters:
//   - seconds: the transition phase length in seconds
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the transition duration to an animator
func WithTransitionDuration(seconds float32) AnimatorBuilderOption {
	return func(a *animator) {
		a.transitionDuration = seconds
	}
}

// WithMovePolicy is an option builder that selects how the next surface is chosen.
//
// Parameters:
//   - policy: PolicyCycle or PolicyRandom
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the policy to an animator
func WithMovePolicy(policy MovePolicy) AnimatorBuilderOption {
	return func(a *animator) {
		a.policy = policy
	}
}

// WithInitialSurface is an option builder that sets the surface held when the animator starts.
//
// Parameters:
//   - kind: the starting surface
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the initial surface to an animator
func WithInitialSurface(kind surface.Kind) AnimatorBuilderOption {
	return func(a *animator) {
		a.state.Current = kind
	}
}

// WithRandomSource is an option builder that replaces the random source used by PolicyRandom.
// Tests pass a deterministic source here.
//
// Parameters:
//   - source: the uniform integer generator
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the random source to an animator
func WithRandomSource(source IntSource) AnimatorBuilderOption {
	return func(a *animator) {
		a.source = source
	}
}

// WithProgressCurve is an option builder that shapes the blend weight after smoothing.
// Curves that leave [0, 1] make the morph overshoot its endpoints.
//
// Parameters:
//   - curve: an easing function over [0, 1], e.g. one returned by CurveByName
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the curve to an animator
func WithProgressCurve(curve Curve) AnimatorBuilderOption {
	return func(a *animator) {
		a.curve = curve
	}
}
