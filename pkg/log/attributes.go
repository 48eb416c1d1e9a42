// Package log defines standard attribute keys for embedding calls.
//
// Keys follow a hierarchical naming convention ("manifold.method",
// "data.samples") so log lines can be filtered by concern.

package log

// Call context
const (
	// MethodKey identifies the embedding method, e.g. "isomap".
	MethodKey = "manifold.method"

	// CategoryKey is the input category required by the method:
	// "kernel", "distance" or "features".
	CategoryKey = "manifold.category"

	// StateKey records the dispatcher state a log line was emitted from.
	StateKey = "manifold.state"

	// ComponentKey identifies which component is logging, e.g. "engine".
	ComponentKey = "component"

	// ParamsKey holds the flattened parameter bag handed to the engine.
	ParamsKey = "manifold.params"
)

// Data shape
const (
	// SamplesKey is the number of samples covered by the data source.
	SamplesKey = "data.samples"

	// FeaturesKey is the dimensionality of a feature source.
	FeaturesKey = "data.features"

	// TargetDimensionKey is the requested number of output columns.
	TargetDimensionKey = "manifold.target_dimension"

	// LandmarksKey is the number of landmark samples used by landmark variants.
	LandmarksKey = "manifold.landmarks"

	// NeighborsKey is the neighborhood size used to build a graph.
	NeighborsKey = "manifold.neighbors"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the current iteration of an iterative method.
	IterationKey = "training.iteration"
)

// Errors
const (
	// ErrorTypeKey categorizes the failure, e.g. "ConfigurationError".
	ErrorTypeKey = "error.type"

	// ErrAttrKey carries the error value itself.
	ErrAttrKey = "error"

	// StacktraceKey contains the stack captured by cockroachdb/errors.
	StacktraceKey = "error.stacktrace"
)

// Dispatcher states.
const (
	StateIdle          = "idle"
	StateValidating    = "validating"
	StateDispatching   = "dispatching"
	StateComputing     = "computing"
	StateMaterializing = "materializing"
	StateDone          = "done"
	StateError         = "error"
)
