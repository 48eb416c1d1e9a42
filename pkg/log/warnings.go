package log

import (
	merrors "github.com/GSawko/shogun/pkg/errors"
)

// Route library warnings (e.g. ConvergenceWarning) through the structured logger.
func init() {
	merrors.SetZerologWarnFunc(func(w error) {
		GetLoggerWithName("warnings").Warn(w.Error(), ErrAttrKey, w)
	})
}
