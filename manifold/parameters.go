package manifold

import "fmt"

// Parameters holds the method selector and every hyperparameter. Only the
// fields listed in the method's Requirement reach the engine.
type Parameters struct {
	Method Method `mapstructure:"-"`

	// NNeighbors is the neighborhood size of graph-based methods.
	NNeighbors uint `mapstructure:"n_neighbors"`
	// NTimesteps is the number of diffusion steps of diffusion maps.
	NTimesteps uint `mapstructure:"n_timesteps"`
	// TargetDimension is the number of output columns.
	TargetDimension uint `mapstructure:"target_dimension"`
	// SPENumUpdates is the update count of stochastic proximity embedding.
	SPENumUpdates uint `mapstructure:"spe_num_updates"`
	// Eigenshift is added to the diagonal before eigendecomposition.
	Eigenshift float64 `mapstructure:"eigenshift"`
	// LandmarkRatio is the fraction of samples used as landmarks.
	LandmarkRatio float64 `mapstructure:"landmark_ratio"`
	// GaussianKernelWidth is the heat kernel bandwidth.
	GaussianKernelWidth float64 `mapstructure:"gaussian_kernel_width"`
	// SPETolerance is the convergence tolerance of stochastic proximity embedding.
	SPETolerance float64 `mapstructure:"spe_tolerance"`
	// SPEGlobalStrategy is forwarded to the engine as is.
	SPEGlobalStrategy bool `mapstructure:"spe_global_strategy"`
	// MaxIteration caps iterative methods.
	MaxIteration uint `mapstructure:"max_iteration"`
	// FAEpsilon is the factor analysis convergence threshold.
	FAEpsilon float64 `mapstructure:"fa_epsilon"`
	// SNETheta is the Barnes-Hut accuracy of t-SNE.
	SNETheta float64 `mapstructure:"sne_theta"`
	// SNEPerplexity is the t-SNE neighborhood scale.
	SNEPerplexity float64 `mapstructure:"sne_perplexity"`
	// SquishingRate is the manifold sculpting contraction factor.
	SquishingRate float64 `mapstructure:"squishing_rate"`
}

// DefaultParameters returns the default configuration: kernel LLE, ten
// neighbors, two output dimensions.
func DefaultParameters() Parameters {
	return Parameters{
		Method:              KernelLocallyLinearEmbedding,
		NNeighbors:          10,
		NTimesteps:          3,
		TargetDimension:     2,
		SPENumUpdates:       100,
		Eigenshift:          1e-9,
		LandmarkRatio:       0.5,
		GaussianKernelWidth: 1.0,
		SPETolerance:        1e-5,
		SPEGlobalStrategy:   false,
		MaxIteration:        100,
		FAEpsilon:           1e-5,
		SNETheta:            0.5,
		SNEPerplexity:       30.0,
		SquishingRate:       0.99,
	}
}

// Option configures Parameters.
type Option func(*Parameters)

// NewParameters returns the defaults for method with opts applied in order.
func NewParameters(method Method, opts ...Option) Parameters {
	p := DefaultParameters()
	p.Method = method
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithNeighbors sets the neighborhood size.
func WithNeighbors(k uint) Option {
	return func(p *Parameters) {
		p.NNeighbors = k
	}
}

// WithTimesteps sets the number of diffusion steps.
func WithTimesteps(t uint) Option {
	return func(p *Parameters) {
		p.NTimesteps = t
	}
}

// WithTargetDimension sets the output dimensionality.
func WithTargetDimension(d uint) Option {
	return func(p *Parameters) {
		p.TargetDimension = d
	}
}

// WithEigenshift sets the diagonal regularization.
func WithEigenshift(shift float64) Option {
	return func(p *Parameters) {
		p.Eigenshift = shift
	}
}

// WithLandmarkRatio sets the landmark fraction of landmark variants.
func WithLandmarkRatio(ratio float64) Option {
	return func(p *Parameters) {
		p.LandmarkRatio = ratio
	}
}

// WithGaussianKernelWidth sets the heat kernel bandwidth.
func WithGaussianKernelWidth(width float64) Option {
	return func(p *Parameters) {
		p.GaussianKernelWidth = width
	}
}

// WithSPE configures stochastic proximity embedding.
func WithSPE(numUpdates uint, tolerance float64, global bool) Option {
	return func(p *Parameters) {
		p.SPENumUpdates = numUpdates
		p.SPETolerance = tolerance
		p.SPEGlobalStrategy = global
	}
}

// WithMaxIteration sets the iteration cap.
func WithMaxIteration(n uint) Option {
	return func(p *Parameters) {
		p.MaxIteration = n
	}
}

// WithFAEpsilon sets the factor analysis convergence threshold.
func WithFAEpsilon(eps float64) Option {
	return func(p *Parameters) {
		p.FAEpsilon = eps
	}
}

// WithSNE configures t-SNE.
func WithSNE(perplexity, theta float64) Option {
	return func(p *Parameters) {
		p.SNEPerplexity = perplexity
		p.SNETheta = theta
	}
}

// WithSquishingRate sets the manifold sculpting contraction factor.
func WithSquishingRate(rate float64) Option {
	return func(p *Parameters) {
		p.SquishingRate = rate
	}
}

// String returns a short description listing the method and the
// hyperparameters it reads.
func (p Parameters) String() string {
	bag, err := NewParameterMapper().BagFor(p)
	if err != nil {
		return fmt.Sprintf("Parameters(method=%s)", p.Method)
	}
	return fmt.Sprintf("Parameters(method=%s, %s)", p.Method, bag)
}
