package grid

// EvaluatorBuilderOption is a functional option for configuring an Evaluator during construction.
type EvaluatorBuilderOption func(*evaluator)

// WithResolution is an option builder that sets the number of points per grid edge.
// NewEvaluator fails if the value is outside [MinResolution, MaxResolution].
//
// Parameters:
//   - resolution: points per grid edge
//
// Returns:
//   - EvaluatorBuilderOption: a function that applies the resolution to an evaluator
func WithResolution(resolution int) EvaluatorBuilderOption {
	return func(e *evaluator) {
		e.grid.resolution = resolution
	}
}

// WithWorkers is an option builder that sets the size of the row worker pool.
// Values below one are raised to one.
//
// Parameters:
//   - workers: the number of worker goroutines
//
// Returns:
//   - EvaluatorBuilderOption: a function that applies the worker count to an evaluator
func WithWorkers(workers int) EvaluatorBuilderOption {
	return func(e *evaluator) {
		e.workers = max(workers, 1)
	}
}
