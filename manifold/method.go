package manifold

import (
	"sort"
	"strings"

	"github.com/GSawko/shogun/pkg/errors"
)

// Method selects the embedding algorithm.
type Method int

const (
	KernelLocallyLinearEmbedding Method = iota
	LocallyLinearEmbedding
	NeighborhoodPreservingEmbedding
	LocalTangentSpaceAlignment
	LinearLocalTangentSpaceAlignment
	HessianLocallyLinearEmbedding
	DiffusionMap
	LaplacianEigenmaps
	LocalityPreservingProjections
	MultidimensionalScaling
	LandmarkMultidimensionalScaling
	Isomap
	LandmarkIsomap
	StochasticProximityEmbedding
	FactorAnalysis
	TDistributedStochasticNeighborEmbedding
	ManifoldSculpting

	numMethods
)

var methodNames = [numMethods]string{
	KernelLocallyLinearEmbedding:            "kernel-locally-linear-embedding",
	LocallyLinearEmbedding:                  "locally-linear-embedding",
	NeighborhoodPreservingEmbedding:         "neighborhood-preserving-embedding",
	LocalTangentSpaceAlignment:              "local-tangent-space-alignment",
	LinearLocalTangentSpaceAlignment:        "linear-local-tangent-space-alignment",
	HessianLocallyLinearEmbedding:           "hessian-locally-linear-embedding",
	DiffusionMap:                            "diffusion-map",
	LaplacianEigenmaps:                      "laplacian-eigenmaps",
	LocalityPreservingProjections:           "locality-preserving-projections",
	MultidimensionalScaling:                 "multidimensional-scaling",
	LandmarkMultidimensionalScaling:         "landmark-multidimensional-scaling",
	Isomap:                                  "isomap",
	LandmarkIsomap:                          "landmark-isomap",
	StochasticProximityEmbedding:            "stochastic-proximity-embedding",
	FactorAnalysis:                          "factor-analysis",
	TDistributedStochasticNeighborEmbedding: "t-distributed-stochastic-neighbor-embedding",
	ManifoldSculpting:                       "manifold-sculpting",
}

var methodAliases = map[string]Method{
	"klle":    KernelLocallyLinearEmbedding,
	"lle":     LocallyLinearEmbedding,
	"npe":     NeighborhoodPreservingEmbedding,
	"ltsa":    LocalTangentSpaceAlignment,
	"lltsa":   LinearLocalTangentSpaceAlignment,
	"hlle":    HessianLocallyLinearEmbedding,
	"dm":      DiffusionMap,
	"le":      LaplacianEigenmaps,
	"lpp":     LocalityPreservingProjections,
	"mds":     MultidimensionalScaling,
	"lmds":    LandmarkMultidimensionalScaling,
	"lisomap": LandmarkIsomap,
	"spe":     StochasticProximityEmbedding,
	"fa":      FactorAnalysis,
	"tsne":    TDistributedStochasticNeighborEmbedding,
	"t-sne":   TDistributedStochasticNeighborEmbedding,
	"ms":      ManifoldSculpting,
}

// String returns the kebab-case name of the method.
func (m Method) String() string {
	if m < 0 || m >= numMethods {
		return "unknown"
	}
	return methodNames[m]
}

// Valid reports whether m is present in the requirement table.
func (m Method) Valid() bool {
	return m >= 0 && m < numMethods
}

// Methods returns every known method in declaration order.
func Methods() []Method {
	out := make([]Method, numMethods)
	for i := range out {
		out[i] = Method(i)
	}
	return out
}

// ParseMethod resolves a method from its name or a short alias such as
// "lle" or "tsne". Matching ignores case, and '_' or ' ' stand for '-'.
func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	for i, n := range methodNames {
		if n == key {
			return Method(i), nil
		}
	}
	if m, ok := methodAliases[key]; ok {
		return m, nil
	}
	return 0, errors.NewUnknownMethodNameError(name)
}

// Category is the kind of data source a method consumes.
type Category int

const (
	CategoryKernel Category = iota
	CategoryDistance
	CategoryFeatures
)

// String returns the field name used in configuration errors.
func (c Category) String() string {
	switch c {
	case CategoryKernel:
		return "kernel"
	case CategoryDistance:
		return "distance"
	case CategoryFeatures:
		return "features"
	default:
		return "unknown"
	}
}

// Hyperparameter keys of the flattened parameter bag.
const (
	ParamNeighbors           = "n_neighbors"
	ParamTimesteps           = "n_timesteps"
	ParamTargetDimension     = "target_dimension"
	ParamSPENumUpdates       = "spe_num_updates"
	ParamEigenshift          = "eigenshift"
	ParamLandmarkRatio       = "landmark_ratio"
	ParamGaussianKernelWidth = "gaussian_kernel_width"
	ParamSPETolerance        = "spe_tolerance"
	ParamSPEGlobalStrategy   = "spe_global_strategy"
	ParamMaxIteration        = "max_iteration"
	ParamFAEpsilon           = "fa_epsilon"
	ParamSNETheta            = "sne_theta"
	ParamSNEPerplexity       = "sne_perplexity"
	ParamSquishingRate       = "squishing_rate"
)

// Requirement describes what a method needs from a request.
type Requirement struct {
	// Category is the data source that must be supplied.
	Category Category
	// Params lists the hyperparameters the method reads.
	Params []string
	// NeighborGraph is set for methods that build a k-nearest-neighbor graph,
	// which bounds n_neighbors by the sample count.
	NeighborGraph bool
	// Landmark is set for landmark variants, which read landmark_ratio.
	Landmark bool
	// Linear is set for methods whose embedding is a linear map of the
	// feature vectors, which bounds target_dimension by their dimension.
	Linear bool
}

// Uses reports whether the method reads the given hyperparameter.
func (r Requirement) Uses(param string) bool {
	for _, p := range r.Params {
		if p == param {
			return true
		}
	}
	return false
}

var (
	localParams     = []string{ParamNeighbors, ParamTargetDimension, ParamEigenshift}
	laplacianParams = []string{ParamNeighbors, ParamGaussianKernelWidth, ParamTargetDimension, ParamEigenshift}
)

var requirements = [numMethods]Requirement{
	KernelLocallyLinearEmbedding:     {Category: CategoryKernel, Params: localParams, NeighborGraph: true},
	LocallyLinearEmbedding:           {Category: CategoryFeatures, Params: localParams, NeighborGraph: true},
	NeighborhoodPreservingEmbedding:  {Category: CategoryFeatures, Params: localParams, NeighborGraph: true, Linear: true},
	LocalTangentSpaceAlignment:       {Category: CategoryFeatures, Params: localParams, NeighborGraph: true},
	LinearLocalTangentSpaceAlignment: {Category: CategoryFeatures, Params: localParams, NeighborGraph: true, Linear: true},
	HessianLocallyLinearEmbedding:    {Category: CategoryFeatures, Params: localParams, NeighborGraph: true},
	DiffusionMap: {
		Category: CategoryKernel,
		Params:   []string{ParamTimesteps, ParamGaussianKernelWidth, ParamTargetDimension},
	},
	LaplacianEigenmaps:            {Category: CategoryFeatures, Params: laplacianParams, NeighborGraph: true},
	LocalityPreservingProjections: {Category: CategoryFeatures, Params: laplacianParams, NeighborGraph: true, Linear: true},
	MultidimensionalScaling: {
		Category: CategoryFeatures,
		Params:   []string{ParamTargetDimension, ParamEigenshift},
	},
	LandmarkMultidimensionalScaling: {
		Category: CategoryFeatures,
		Params:   []string{ParamTargetDimension, ParamLandmarkRatio, ParamEigenshift},
		Landmark: true,
	},
	Isomap: {Category: CategoryFeatures, Params: localParams, NeighborGraph: true},
	LandmarkIsomap: {
		Category:      CategoryFeatures,
		Params:        []string{ParamNeighbors, ParamTargetDimension, ParamLandmarkRatio, ParamEigenshift},
		NeighborGraph: true,
		Landmark:      true,
	},
	StochasticProximityEmbedding: {
		Category: CategoryFeatures,
		Params: []string{ParamTargetDimension, ParamSPENumUpdates, ParamSPETolerance,
			ParamSPEGlobalStrategy, ParamNeighbors, ParamMaxIteration},
	},
	FactorAnalysis: {
		Category: CategoryFeatures,
		Params:   []string{ParamTargetDimension, ParamMaxIteration, ParamFAEpsilon},
		Linear:   true,
	},
	TDistributedStochasticNeighborEmbedding: {
		Category: CategoryFeatures,
		Params:   []string{ParamTargetDimension, ParamSNETheta, ParamSNEPerplexity},
	},
	ManifoldSculpting: {
		Category:      CategoryFeatures,
		Params:        []string{ParamNeighbors, ParamTargetDimension, ParamSquishingRate, ParamMaxIteration},
		NeighborGraph: true,
	},
}

// Lookup returns the requirement of m. A tag outside the table yields an
// UnsupportedMethodError.
func Lookup(m Method) (Requirement, error) {
	if !m.Valid() {
		return Requirement{}, errors.NewUnsupportedMethodError(int(m))
	}
	r := requirements[m]
	params := make([]string, len(r.Params))
	copy(params, r.Params)
	r.Params = params
	return r, nil
}

// MethodsFor returns the methods requiring the given category, sorted by name.
func MethodsFor(c Category) []Method {
	var out []Method
	for i, r := range requirements {
		if r.Category == c {
			out = append(out, Method(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].String() < out[b].String() })
	return out
}
