package model

// FitState はTransformerの学習状態を表す
type FitState int

const (
	// NotFitted は統計量が未計算の状態
	NotFitted FitState = iota
	// Fitted は統計量が計算済みの状態
	Fitted
)

// BaseTransformer holds the fit state shared by the feature transformers.
// Embed it and call SetFitted at the end of Fit.
type BaseTransformer struct {
	state FitState
}

// IsFitted reports whether Fit has completed.
func (b *BaseTransformer) IsFitted() bool {
	return b.state == Fitted
}

// SetFitted marks the transformer as fitted.
func (b *BaseTransformer) SetFitted() {
	b.state = Fitted
}

// Reset returns the transformer to the unfitted state.
func (b *BaseTransformer) Reset() {
	b.state = NotFitted
}
