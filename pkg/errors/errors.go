// Package errors はプロジェクト全体のエラーハンドリングを提供します。
// 埋め込み計算の呼び出しで発生する失敗を、設定ミス・未対応の手法・数値計算の失敗・
// 内部不変条件の違反に分類し、構造化されたエラー情報として返します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("manifold-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが設定されている場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ConvergenceWarning は反復計算が許容誤差内に収束しなかった場合の警告です。
// 結果は返されますが、品質が低い可能性があります。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iteration or the tolerance.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// ===========================================================================
//
//	埋め込み呼び出しのエラー分類
//
// ===========================================================================

// ConfigurationError is returned before any engine call when the request is
// malformed: the data source required by the method is missing, or a
// hyperparameter is out of bounds relative to the sample count.
type ConfigurationError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *ConfigurationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("manifold: configuration error for '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("manifold: configuration error for '%s': %s (got: %v)", e.Field, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("field", e.Field).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError は新しいConfigurationErrorを作成し、スタックトレースを付与します。
func NewConfigurationError(field, reason string, value interface{}) error {
	return errors.WithStack(&ConfigurationError{Field: field, Reason: reason, Value: value})
}

// NewMissingInputError reports that the data source of the given category
// ("kernel", "distance" or "features") was not supplied.
func NewMissingInputError(category string) error {
	return errors.WithStack(&ConfigurationError{
		Field:  category,
		Reason: fmt.Sprintf("missing %s", category),
	})
}

// UnsupportedMethodError means the method tag is not in the requirement
// table, usually a caller built against a different library version.
type UnsupportedMethodError struct {
	Method int
	Name   string
}

func (e *UnsupportedMethodError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("manifold: unsupported method %q", e.Name)
	}
	return fmt.Sprintf("manifold: unsupported method tag %d", e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *UnsupportedMethodError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("method", e.Method).
		Str("name", e.Name).
		Str("type", "UnsupportedMethodError")
}

// NewUnsupportedMethodError は新しいUnsupportedMethodErrorを作成します。
func NewUnsupportedMethodError(tag int) error {
	return errors.WithStack(&UnsupportedMethodError{Method: tag})
}

// NewUnknownMethodNameError reports a method name that does not parse.
func NewUnknownMethodNameError(name string) error {
	return errors.WithStack(&UnsupportedMethodError{Method: -1, Name: name})
}

// NumericalError is a failure inside the embedding engine: non-convergence,
// a singular or disconnected neighborhood graph, an ill-conditioned
// eigenproblem. It is propagated to the caller unchanged and never retried.
type NumericalError struct {
	Method string
	Cause  string
	Err    error
}

func (e *NumericalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifold: %s: numerical failure: %s: %v", e.Method, e.Cause, e.Err)
	}
	return fmt.Sprintf("manifold: %s: numerical failure: %s", e.Method, e.Cause)
}

func (e *NumericalError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("method", e.Method).
		Str("cause", e.Cause).
		Str("type", "NumericalError")
	if e.Err != nil {
		event.Str("error", e.Err.Error())
	}
}

// NewNumericalError は新しいNumericalErrorを作成し、スタックトレースを付与します。
func NewNumericalError(method, cause string, err error) error {
	return errors.WithStack(&NumericalError{Method: method, Cause: cause, Err: err})
}

// InternalInvariantViolation signals engine/adapter desynchronisation, such
// as an output buffer whose shape differs from the request. It is raised with
// panic, never returned.
type InternalInvariantViolation struct {
	Op       string
	Expected []int
	Got      []int
}

func (e *InternalInvariantViolation) Error() string {
	return fmt.Sprintf("manifold: internal invariant violated in %s: expected shape %v, got %v", e.Op, e.Expected, e.Got)
}

// NewInternalInvariantViolation は新しいInternalInvariantViolationを作成します。
func NewInternalInvariantViolation(op string, expected, got []int) *InternalInvariantViolation {
	return &InternalInvariantViolation{Op: op, Expected: expected, Got: got}
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("manifold: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValueError は引数の値が不適切な場合のエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("manifold: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// IsConfiguration reports whether err is (or wraps) a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsNumerical reports whether err is (or wraps) a NumericalError.
func IsNumerical(err error) bool {
	var target *NumericalError
	return errors.As(err, &target)
}

// IsUnsupportedMethod reports whether err is (or wraps) an UnsupportedMethodError.
func IsUnsupportedMethod(err error) bool {
	var target *UnsupportedMethodError
	return errors.As(err, &target)
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// NaN、Infなどを検出します。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("manifold: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	return errors.WithStack(&NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	})
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrNotImplemented は機能が未実装の場合のエラーです。
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")

	// ErrDisconnectedGraph is returned when a neighborhood graph has more
	// than one connected component.
	ErrDisconnectedGraph = New("disconnected neighborhood graph")

	// ErrNoConvergence is returned when an eigensolver or iterative method
	// fails to converge.
	ErrNoConvergence = New("no convergence")

	// ErrNotFitted はTransformを学習前に呼び出した場合のエラーです。
	ErrNotFitted = New("transformer is not fitted")
)
