// Package engine is a reference implementation of manifold.Engine on top of
// gonum. It favours clarity and determinism over speed: every method works
// on dense n x n matrices, so it is meant for data sets of a few thousand
// samples at most.
//
// Hessian locally linear embedding and manifold sculpting are not
// available; requests for them fail with a NumericalError wrapping
// errors.ErrNotImplemented.
package engine

import (
	"math/rand"
	"time"

	"github.com/GSawko/shogun/manifold"
	"github.com/GSawko/shogun/pkg/errors"
	"github.com/GSawko/shogun/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// DefaultSeed seeds the stochastic methods when no seed is configured.
const DefaultSeed int64 = 42

type solver func(j *job) (*mat.Dense, error)

var solvers = map[manifold.Method]solver{
	manifold.KernelLocallyLinearEmbedding:            locallyLinear,
	manifold.LocallyLinearEmbedding:                  locallyLinear,
	manifold.NeighborhoodPreservingEmbedding:         neighborhoodPreserving,
	manifold.LocalTangentSpaceAlignment:              tangentSpaceAlignment,
	manifold.LinearLocalTangentSpaceAlignment:        linearTangentSpaceAlignment,
	manifold.DiffusionMap:                            diffusionMap,
	manifold.LaplacianEigenmaps:                      laplacianEigenmaps,
	manifold.LocalityPreservingProjections:           localityPreserving,
	manifold.MultidimensionalScaling:                 multidimensionalScaling,
	manifold.LandmarkMultidimensionalScaling:         landmarkMultidimensionalScaling,
	manifold.Isomap:                                  isomap,
	manifold.LandmarkIsomap:                          landmarkIsomap,
	manifold.StochasticProximityEmbedding:            stochasticProximity,
	manifold.FactorAnalysis:                          factorAnalysis,
	manifold.TDistributedStochasticNeighborEmbedding: tsne,
}

// Reference computes embeddings in-process.
type Reference struct {
	logger log.Logger
	seed   int64
}

// Option configures a Reference engine.
type Option func(*Reference)

// WithLogger sets the logger used for per-method progress.
func WithLogger(l log.Logger) Option {
	return func(r *Reference) { r.logger = l }
}

// WithSeed sets the seed of the stochastic methods (SPE, factor analysis,
// t-SNE). Equal seeds give bit-identical output for equal input.
func WithSeed(seed int64) Option {
	return func(r *Reference) { r.seed = seed }
}

// New returns a reference engine.
func New(opts ...Option) *Reference {
	r := &Reference{seed: DefaultSeed}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.GetLoggerWithName("engine")
	}
	return r
}

// Supports reports whether the engine implements m.
func (r *Reference) Supports(m manifold.Method) bool {
	_, ok := solvers[m]
	return ok
}

// Compute implements manifold.Engine.
func (r *Reference) Compute(method manifold.Method, bag manifold.Bag, access *manifold.Access) (*manifold.Result, error) {
	name := method.String()
	solve, ok := solvers[method]
	if !ok {
		return nil, errors.NewNumericalError(name, "method not available in the reference engine", errors.ErrNotImplemented)
	}

	j := &job{
		name:   name,
		method: method,
		bag:    bag,
		access: access,
		dim:    bag.Int(manifold.ParamTargetDimension, 2),
		logger: r.logger.With(log.MethodKey, name, log.SamplesKey, access.Len()),
		rng:    rand.New(rand.NewSource(r.seed)),
	}

	start := time.Now()
	var out *mat.Dense
	err := errors.SafeExecute(name, func() error {
		var err error
		out, err = solve(j)
		return err
	})
	if err != nil {
		var pe *errors.PanicError
		if errors.As(err, &pe) {
			return nil, errors.NewNumericalError(name, "linear algebra failure", err)
		}
		return nil, err
	}

	j.logger.Debug("solver finished", log.DurationMsKey, time.Since(start).Milliseconds())
	return manifold.NewResult(out), nil
}

// job is the state of one Compute call.
type job struct {
	name   string
	method manifold.Method
	bag    manifold.Bag
	access *manifold.Access
	dim    int
	logger log.Logger
	rng    *rand.Rand
}

func (j *job) fail(cause string, err error) error {
	return errors.NewNumericalError(j.name, cause, err)
}

func (j *job) n() int { return j.access.Len() }

func (j *job) neighbors() int { return j.bag.Int(manifold.ParamNeighbors, 10) }

func (j *job) eigenshift() float64 { return j.bag.Float(manifold.ParamEigenshift, 0) }

func (j *job) width() float64 { return j.bag.Float(manifold.ParamGaussianKernelWidth, 1) }
