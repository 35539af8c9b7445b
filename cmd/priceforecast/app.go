package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	forecaster "github.com/tkeereweer/electricity-price-predictor"
	"github.com/tkeereweer/electricity-price-predictor/config"
	"github.com/tkeereweer/electricity-price-predictor/predictor"
	"github.com/tkeereweer/electricity-price-predictor/store"
)

// app holds everything a command needs, built once from the configuration
type app struct {
	cfg    *config.Config
	opt    *forecaster.Options
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	handler, err := cfg.Handler(logOut)
	if err != nil {
		return nil, err
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	opt, err := cfg.Options().Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid forecast options, %w", err)
	}
	return &app{
		cfg:    cfg,
		opt:    opt,
		logger: logger,
	}, nil
}

func (a *app) sources(ctx context.Context) (store.Source, store.LagSource, error) {
	switch a.cfg.Data.Source {
	case config.SourcePostgres:
		if a.pool == nil {
			pool, err := pgxpool.New(ctx, a.cfg.Postgres.DSN)
			if err != nil {
				return nil, nil, fmt.Errorf("unable to connect to postgres, %w", err)
			}
			a.pool = pool
		}
		return store.NewPostgresSource(a.pool, a.cfg.Postgres.Table),
			store.NewPostgresLagSource(a.pool, a.cfg.Postgres.LagTable),
			nil
	}

	src := store.NewCSVSource(a.cfg.Data.CSVPath)
	src.DateColumn = a.cfg.Data.DateColumn
	lags := store.NewCSVLagSource(a.cfg.Data.LagDir)
	lags.DateColumn = a.cfg.Data.DateColumn
	return src, lags, nil
}

func (a *app) forecaster(ctx context.Context) (*forecaster.Forecaster, error) {
	src, lags, err := a.sources(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := predictor.LoadRegistry(a.cfg.Models.Dir, a.opt.Features.Target, a.opt.Exogenous)
	if err != nil {
		return nil, err
	}
	a.logger.Info("predictors loaded",
		"dir", a.cfg.Models.Dir,
		"target", reg.Target().Name,
		"exogenous", reg.ExogenousNames(),
	)
	return forecaster.New(a.opt, src, lags, reg, a.logger)
}

func (a *app) artifacts() ([]predictor.Artifact, error) {
	return predictor.Artifacts(a.cfg.Models.Dir, a.opt.Features.Target, a.opt.Exogenous)
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
