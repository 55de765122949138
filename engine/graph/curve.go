package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// Curve reshapes the smoothed blend weight. It receives a value in [0, 1] and may return
// values outside that range to overshoot.
type Curve func(t float64) float64

// LinearCurve leaves the smoothed weight unchanged.
var LinearCurve Curve = ease.Linear

var curves = map[string]Curve{
	"linear":       ease.Linear,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_out_cubic": ease.InOutCubic,
	"in_out_sine":  ease.InOutSine,
	"out_back":     ease.OutBack,
	"out_elastic":  ease.OutElastic,
	"out_bounce":   ease.OutBounce,
}

// CurveByName returns the named progress curve. An empty name selects the linear curve.
//
// Parameters:
//   - name: one of the names returned by CurveNames
//
// Returns:
//   - Curve: the easing function
//   - error: an error if the name is unknown
func CurveByName(name string) (Curve, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return LinearCurve, nil
	}
	c, ok := curves[n]
	if !ok {
		return nil, fmt.Errorf("unknown progress curve %q (known: %s)", name, strings.Join(CurveNames(), ", "))
	}
	return c, nil
}

// CurveNames lists the names accepted by CurveByName in sorted order.
func CurveNames() []string {
	names := make([]string, 0, len(curves))
	for n := range curves {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
