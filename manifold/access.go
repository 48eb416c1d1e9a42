package manifold

import (
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
)

// Access is the data capability handed to an engine for one call. Besides
// the source supplied by the caller it offers the capabilities derivable from
// it: feature sources also yield a linear kernel and Euclidean distances, and
// kernel sources yield the kernel-induced distance. Capabilities that cannot
// be derived are nil.
//
// An Access is invalidated when the engine returns. Capabilities an engine
// kept past that point report no entities and NaN values.
type Access struct {
	category Category
	n        int
	kernel   KernelProvider
	distance DistanceProvider
	features FeatureProvider
	lease    *lease
}

func newKernelAccess(k KernelProvider) *Access {
	l := &lease{}
	return &Access{
		category: CategoryKernel,
		n:        k.NumEntities(),
		kernel:   leasedKernel{k, l},
		distance: leasedDistance{kernelDistance{k}, l},
		lease:    l,
	}
}

func newDistanceAccess(d DistanceProvider) *Access {
	l := &lease{}
	return &Access{
		category: CategoryDistance,
		n:        d.NumEntities(),
		distance: leasedDistance{d, l},
		lease:    l,
	}
}

func newFeatureAccess(f FeatureProvider) *Access {
	l := &lease{}
	return &Access{
		category: CategoryFeatures,
		n:        f.NumVectors(),
		kernel:   leasedKernel{linearKernel{f}, l},
		distance: leasedDistance{euclideanDistance{f}, l},
		features: leasedFeatures{f, l},
		lease:    l,
	}
}

// NewAccess builds an Access for engines driven outside an Embedder, such
// as in engine tests. Exactly the provider matching c is used.
func NewAccess(c Category, k KernelProvider, d DistanceProvider, f FeatureProvider) *Access {
	switch c {
	case CategoryKernel:
		return newKernelAccess(k)
	case CategoryDistance:
		return newDistanceAccess(d)
	default:
		return newFeatureAccess(f)
	}
}

// Category is the kind of source supplied by the caller.
func (a *Access) Category() Category { return a.category }

// Len is the number of samples.
func (a *Access) Len() int { return a.n }

// Kernel returns a kernel capability, or nil.
func (a *Access) Kernel() KernelProvider { return a.kernel }

// Distance returns a distance capability, or nil.
func (a *Access) Distance() DistanceProvider { return a.distance }

// Features returns the feature capability, or nil.
func (a *Access) Features() FeatureProvider { return a.features }

func (a *Access) release() {
	if a.lease != nil {
		a.lease.released.Store(true)
	}
	a.kernel = nil
	a.distance = nil
	a.features = nil
}

// lease is shared by every capability of one Access and revoked on release.
type lease struct {
	released atomic.Bool
}

func (l *lease) live() bool { return !l.released.Load() }

type leasedKernel struct {
	k KernelProvider
	l *lease
}

func (k leasedKernel) NumEntities() int {
	if !k.l.live() {
		return 0
	}
	return k.k.NumEntities()
}

func (k leasedKernel) Kernel(i, j int) float64 {
	if !k.l.live() {
		return math.NaN()
	}
	return k.k.Kernel(i, j)
}

type leasedDistance struct {
	d DistanceProvider
	l *lease
}

func (d leasedDistance) NumEntities() int {
	if !d.l.live() {
		return 0
	}
	return d.d.NumEntities()
}

func (d leasedDistance) Distance(i, j int) float64 {
	if !d.l.live() {
		return math.NaN()
	}
	return d.d.Distance(i, j)
}

type leasedFeatures struct {
	f FeatureProvider
	l *lease
}

func (f leasedFeatures) NumVectors() int {
	if !f.l.live() {
		return 0
	}
	return f.f.NumVectors()
}

func (f leasedFeatures) Dimension() int {
	if !f.l.live() {
		return 0
	}
	return f.f.Dimension()
}

// Vector returns dst[:0] once the lease is released.
func (f leasedFeatures) Vector(i int, dst []float64) []float64 {
	if !f.l.live() {
		return dst[:0]
	}
	return f.f.Vector(i, dst)
}

// linearKernel is the dot product of feature vectors.
type linearKernel struct {
	f FeatureProvider
}

func (k linearKernel) NumEntities() int { return k.f.NumVectors() }

func (k linearKernel) Kernel(i, j int) float64 {
	d := k.f.Dimension()
	xi := k.f.Vector(i, make([]float64, d))
	xj := k.f.Vector(j, make([]float64, d))
	return floats.Dot(xi, xj)
}

// euclideanDistance is the L2 distance between feature vectors.
type euclideanDistance struct {
	f FeatureProvider
}

func (e euclideanDistance) NumEntities() int { return e.f.NumVectors() }

func (e euclideanDistance) Distance(i, j int) float64 {
	if i == j {
		return 0
	}
	d := e.f.Dimension()
	xi := e.f.Vector(i, make([]float64, d))
	xj := e.f.Vector(j, make([]float64, d))
	return floats.Distance(xi, xj, 2)
}

// kernelDistance is the distance induced by a kernel in its feature space,
// sqrt(k(i,i) + k(j,j) - 2k(i,j)).
type kernelDistance struct {
	k KernelProvider
}

func (kd kernelDistance) NumEntities() int { return kd.k.NumEntities() }

func (kd kernelDistance) Distance(i, j int) float64 {
	if i == j {
		return 0
	}
	sq := kd.k.Kernel(i, i) + kd.k.Kernel(j, j) - 2*kd.k.Kernel(i, j)
	if sq <= 0 {
		return 0
	}
	return math.Sqrt(sq)
}
