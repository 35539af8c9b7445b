package linearmodel

import (
	"errors"
)

var (
	ErrTargetLenMismatch  = errors.New("target length does not match target rows")
	ErrNoTargetMatrix     = errors.New("no target matrix")
	ErrNoDesignMatrix     = errors.New("no design matrix for inference")
	ErrNoCoefficients     = errors.New("model has no coefficients")
	ErrFeatureLenMismatch = errors.New("number of features does not match number of model coefficients")
	ErrNonFinite          = errors.New("non-finite model output")
)
