// Package model holds the contracts shared by feature preprocessing steps
// that run ahead of an embedding.
package model

import "gonum.org/v1/gonum/mat"

// Transformer rescales a feature matrix before it is handed to an embedding
// method. Rows are samples and columns are features.
type Transformer interface {
	// Fit computes the per-feature statistics of X.
	Fit(X mat.Matrix) error

	// Transform applies the fitted statistics to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform は Fit と Transform を続けて実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}
