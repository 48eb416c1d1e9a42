package manifold

import (
	"time"

	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Embedder validates requests, dispatches them to an Engine and
// materializes the result. It keeps no state between calls, so one Embedder
// may serve concurrent calls as long as their data sources are not mutated.
type Embedder struct {
	engine Engine
	mapper *ParameterMapper
	logger log.Logger
}

// EmbedderOption configures an Embedder.
type EmbedderOption func(*Embedder)

// WithLogger sets the logger used for state transitions and outcomes.
func WithLogger(l log.Logger) EmbedderOption {
	return func(e *Embedder) {
		e.logger = l
	}
}

// NewEmbedder returns an Embedder dispatching to engine.
func NewEmbedder(engine Engine, opts ...EmbedderOption) *Embedder {
	e := &Embedder{
		engine: engine,
		mapper: NewParameterMapper(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLoggerWithName("manifold")
	}
	return e
}

// Embed computes the embedding described by req. The returned matrix has
// one row per sample, in input order, and TargetDimension columns; it is
// owned by the caller.
//
// Configuration problems are reported before the engine is called. Engine
// failures are returned without retry.
func (e *Embedder) Embed(req Request) (*mat.Dense, error) {
	start := time.Now()
	logger := e.logger
	if req != nil {
		logger = logger.With(log.MethodKey, req.Params().Method.String())
	}

	logger.Debug("validating request", log.StateKey, log.StateValidating)
	v, err := Validate(req)
	if err != nil {
		logger.Warn("request rejected", log.StateKey, log.StateError, log.ErrAttrKey, err)
		return nil, err
	}
	logger = logger.With(
		log.CategoryKey, v.Category().String(),
		log.SamplesKey, v.Samples(),
		log.TargetDimensionKey, int(v.params.TargetDimension),
	)

	logger.Debug("dispatching", log.StateKey, log.StateDispatching)
	bag, err := e.mapper.BagFor(v.params)
	if err != nil {
		return nil, err
	}
	access := v.request.access()

	logger.Debug("computing", log.StateKey, log.StateComputing, log.ParamsKey, bag.Map())
	res, err := e.engine.Compute(v.Method(), bag, access)
	access.release()
	if err != nil {
		err = classifyEngineError(v.Method(), err)
		logger.Error("engine call failed", err, log.StateKey, log.StateError)
		return nil, err
	}

	logger.Debug("materializing", log.StateKey, log.StateMaterializing)
	out := Materialize(res, v.Samples(), int(v.params.TargetDimension))
	if err := errors.CheckMatrix(v.Method().String(), out); err != nil {
		err = errors.NewNumericalError(v.Method().String(), "non-finite embedding", err)
		logger.Error("engine returned non-finite values", err, log.StateKey, log.StateError)
		return nil, err
	}

	logger.Info("embedding computed",
		log.StateKey, log.StateDone,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// classifyEngineError returns typed errors unchanged and wraps anything else
// as a NumericalError naming the method.
func classifyEngineError(m Method, err error) error {
	if errors.IsNumerical(err) || errors.IsConfiguration(err) || errors.IsUnsupportedMethod(err) {
		return err
	}
	return errors.NewNumericalError(m.String(), "engine failure", err)
}

// Embed is the single-call entry point: it resolves ps into a request and
// embeds it with engine.
func Embed(engine Engine, ps ParameterSet) (*mat.Dense, error) {
	req, err := ps.Request()
	if err != nil {
		return nil, err
	}
	return NewEmbedder(engine).Embed(req)
}
