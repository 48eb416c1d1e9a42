package manifold

// KernelProvider exposes pairwise kernel values between entities.
type KernelProvider interface {
	// NumEntities returns the number of entities covered by the kernel.
	NumEntities() int
	// Kernel returns k(i, j).
	Kernel(i, j int) float64
}

// DistanceProvider exposes pairwise distances between entities.
type DistanceProvider interface {
	// NumEntities returns the number of entities covered by the distance.
	NumEntities() int
	// Distance returns d(i, j).
	Distance(i, j int) float64
}

// FeatureProvider exposes dense feature vectors.
type FeatureProvider interface {
	// NumVectors returns the number of vectors.
	NumVectors() int
	// Dimension returns the length of each vector.
	Dimension() int
	// Vector copies the coordinates of vector i into dst, allocating when
	// dst is too short, and returns the filled slice.
	Vector(i int, dst []float64) []float64
}
