// Package grid describes the square point grid the surfaces are sampled on: its resolution,
// cell size, dispatch size and draw bounds. It also evaluates a surface frame over the grid
// on the CPU, for consumers that need point positions without a GPU round trip.
package grid

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-graph/common"
)

const (
	// MinResolution is the smallest supported number of points per grid edge.
	MinResolution = 10

	// MaxResolution is the largest supported number of points per grid edge. GPU point buffers
	// are sized for MaxResolution² points so that resolution changes never reallocate.
	MaxResolution = 1000

	// WorkgroupSize is the edge length of the square compute workgroup.
	WorkgroupSize = 8
)

// ErrInvalidResolution is returned when a resolution falls outside [MinResolution, MaxResolution].
var ErrInvalidResolution = errors.New("invalid grid resolution")

// Grid is a square grid of resolution × resolution points spanning [-1, 1]² in (u, v).
// Points sit at cell centres, so no point lies exactly on the border.
type Grid struct {
	resolution int
}

// New creates a Grid with the given number of points per edge.
//
// Parameters:
//   - resolution: points per edge, in [MinResolution, MaxResolution]
//
// Returns:
//   - Grid: the grid
//   - error: an error wrapping ErrInvalidResolution when resolution is out of range
func New(resolution int) (Grid, error) {
	if resolution < MinResolution || resolution > MaxResolution {
		return Grid{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidResolution, resolution, MinResolution, MaxResolution)
	}
	return Grid{resolution: resolution}, nil
}

// Resolution returns the number of points per grid edge.
func (g Grid) Resolution() int {
	return g.resolution
}

// Step returns the cell size, 2 / resolution. The renderer also scales each instanced cube by it.
func (g Grid) Step() float32 {
	return 2 / float32(g.resolution)
}

// PointCount returns resolution², the number of points and of drawn instances.
func (g Grid) PointCount() int {
	return g.resolution * g.resolution
}

// Coord maps a column or row index to its grid coordinate, (i + 0.5) * step - 1.
func (g Grid) Coord(i int) float32 {
	return (float32(i)+0.5)*g.Step() - 1
}

// Index returns the point buffer index of column x, row y.
func (g Grid) Index(x, y int) int {
	return x + y*g.resolution
}

// WorkgroupCount returns the number of compute workgroups per axis, ceil(resolution / WorkgroupSize).
func (g Grid) WorkgroupCount() uint32 {
	return common.CeilDiv(uint32(g.resolution), WorkgroupSize)
}

// Bounds returns the edge length of the cube enclosing every drawn instance, 2 + 2 / resolution.
// Each point is drawn as a cube of edge Step, which overhangs the [-1, 1] span by half a step.
func (g Grid) Bounds() float32 {
	return 2 + 2/float32(g.resolution)
}
