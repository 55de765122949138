package graph

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-graph/engine/surface"
)

// MovePolicy selects how the animator picks the surface that follows the current one.
type MovePolicy int

const (
	// PolicyCycle steps through the catalog in order and wraps from the last surface to the first.
	PolicyCycle MovePolicy = iota

	// PolicyRandom draws a surface index from [1, count-1]. A draw equal to the current
	// surface is replaced by index 0, so index 0 comes up more often than the others.
	PolicyRandom
)

// String returns the configuration name of the policy.
func (p MovePolicy) String() string {
	switch p {
	case PolicyCycle:
		return "cycle"
	case PolicyRandom:
		return "random"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy resolves a policy name as written in configuration files.
//
// Parameters:
//   - name: "cycle" or "random", case insensitive
//
// Returns:
//   - MovePolicy: the named policy
//   - error: an error if the name is not recognised
func ParsePolicy(name string) (MovePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cycle", "":
		return PolicyCycle, nil
	case "random":
		return PolicyRandom, nil
	default:
		return 0, fmt.Errorf("unknown move policy %q", name)
	}
}

// IntSource is a uniform integer generator. *rand.Rand satisfies it.
type IntSource interface {
	// Intn returns a uniformly distributed integer in [0, n). n is always positive.
	Intn(n int) int
}

func newDefaultSource() IntSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// PickNext chooses the surface that follows current under the given policy.
//
// Parameters:
//   - policy: the selection policy
//   - current: the surface being left
//   - source: the random source, only consulted by PolicyRandom
//
// Returns:
//   - surface.Kind: the next surface
func PickNext(policy MovePolicy, current surface.Kind, source IntSource) surface.Kind {
	if policy == PolicyRandom {
		choice := 1 + source.Intn(surface.Count-1)
		if choice == current.Index() {
			choice = 0
		}
		return surface.Kinds[choice]
	}
	return surface.Kinds[(current.Index()+1)%surface.Count]
}
