package grid

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-graph/common"
)

// Field is anything that produces a point for grid coordinates and a time. graph.Frame
// satisfies it.
type Field interface {
	Evaluate(u, v, t float32) common.Point3
}

// evaluator is the implementation of the Evaluator interface.
type evaluator struct {
	mu      *sync.Mutex
	grid    Grid
	workers int
	pool    worker.DynamicWorkerPool
}

// Evaluator samples a Field at every point of a Grid, splitting rows across a worker pool.
type Evaluator interface {
	// Grid returns the grid the evaluator samples.
	//
	// Returns:
	//   - Grid: the sampled grid
	Grid() Grid

	// Evaluate writes field(u, v, t) for every grid point into dst, at the index given by
	// Grid.Index. It blocks until every row is written.
	//
	// Parameters:
	//   - field: the surface to sample
	//   - t: time in seconds
	//   - dst: destination slice, at least Grid().PointCount() long
	//
	// Returns:
	//   - error: an error if dst is too short
	Evaluate(field Field, t float32, dst []common.Point3) error

	// Release stops the worker pool. The evaluator must not be used afterwards.
	Release()
}

var _ Evaluator = &evaluator{}

// NewEvaluator creates a new Evaluator. Without options it samples a MinResolution grid
// with one worker per CPU core minus one.
//
// Parameters:
//   - options: variadic list of EvaluatorBuilderOption functions to configure the evaluator
//
// Returns:
//   - Evaluator: the configured evaluator
//   - error: an error if the configured resolution is invalid
func NewEvaluator(options ...EvaluatorBuilderOption) (Evaluator, error) {
	e := &evaluator{
		mu:      &sync.Mutex{},
		grid:    Grid{resolution: MinResolution},
		workers: max(runtime.NumCPU()-1, 1),
	}

	for _, opt := range options {
		opt(e)
	}

	g, err := New(e.grid.resolution)
	if err != nil {
		return nil, err
	}
	e.grid = g
	e.pool = worker.NewDynamicWorkerPool(e.workers, 256, 1*time.Second)
	return e, nil
}

func (e *evaluator) Grid() Grid {
	return e.grid
}

func (e *evaluator) Evaluate(field Field, t float32, dst []common.Point3) error {
	n := e.grid.PointCount()
	if len(dst) < n {
		return fmt.Errorf("destination holds %d points, grid needs %d", len(dst), n)
	}

	// one Evaluate at a time; rows of concurrent calls would interleave in the queue
	e.mu.Lock()
	defer e.mu.Unlock()

	res := e.grid.Resolution()
	var wg sync.WaitGroup
	for y := range res {
		wg.Add(1)
		row := y
		e.pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				v := e.grid.Coord(row)
				base := row * res
				for x := range res {
					dst[base+x] = field.Evaluate(e.grid.Coord(x), v, t)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return nil
}

func (e *evaluator) Release() {
	e.pool.Stop()
}
