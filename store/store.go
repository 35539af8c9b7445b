// Package store loads the raw daily observations and prepares the cleaned
// dataset every forecast starts from.
package store

import (
	"context"
	"errors"

	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

var (
	ErrMissingColumn       = errors.New("required column missing")
	ErrMissingLagTable     = errors.New("lag table not found")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrInteriorGap         = errors.New("missing value inside the observed range")
	ErrNoDateColumn        = errors.New("no date column")
	ErrInvalidCell         = errors.New("invalid cell")
)

// Source loads the raw covariate and target table
type Source interface {
	Load(ctx context.Context) (*timedataset.Table, error)
}

// LagSource loads the recent history of one exogenous variable used to seed
// its autoregressive predictor
type LagSource interface {
	LoadLags(ctx context.Context, name string) (*timedataset.Series, error)
}
