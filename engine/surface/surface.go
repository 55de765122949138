// Package surface holds the fixed catalog of parametric surfaces the graph animates
// between, and the morph operator that blends two of them.
//
// Every surface maps grid coordinates u, v in [-1, 1] and a time t in seconds to a point in
// 3-D space. The formulas are closed-form with no singularities, so every finite input
// produces a finite point. The WGSL library embedded in this package evaluates the same
// formulas on the GPU.
package surface

import (
	"fmt"
	"strings"
)

// Kind identifies one of the surfaces in the catalog. The numeric value of each kind is
// its catalog index, which the shader uses to select a surface.
type Kind uint32

const (
	Wave Kind = iota
	MultiWave
	Ripple
	Sphere
	Torus
)

// Count is the number of surfaces in the catalog.
const Count = 5

// Kinds lists every surface in catalog order.
var Kinds = [Count]Kind{Wave, MultiWave, Ripple, Sphere, Torus}

var kindNames = map[Kind]string{
	Wave:      "wave",
	MultiWave: "multi_wave",
	Ripple:    "ripple",
	Sphere:    "sphere",
	Torus:     "torus",
}

// String returns the configuration name of the kind, e.g. "multi_wave".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// Index returns the catalog position of the kind.
func (k Kind) Index() int {
	return int(k)
}

// Valid reports whether k names a surface in the catalog.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// FromIndex returns the kind at catalog position i.
//
// Parameters:
//   - i: catalog index in [0, Count)
//
// Returns:
//   - Kind: the surface at that position
//   - error: an error if i is outside the catalog
func FromIndex(i int) (Kind, error) {
	if i < 0 || i >= Count {
		return 0, fmt.Errorf("surface index %d out of range [0, %d)", i, Count)
	}
	return Kinds[i], nil
}

// ParseKind resolves a surface name as written in configuration files. Matching is case
// insensitive and accepts "multiwave" as well as "multi_wave".
//
// Parameters:
//   - name: the surface name
//
// Returns:
//   - Kind: the named surface
//   - error: an error if no surface has that name
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds {
		if kindNames[k] == n || strings.ReplaceAll(kindNames[k], "_", "") == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown surface %q", name)
}
