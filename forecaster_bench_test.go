package forecaster

import (
	"context"
	"testing"

	"github.com/pkg/profile"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

var benchPrediction *Prediction

func BenchmarkPredict(b *testing.B) {
	f := testForecaster(b)
	ctx := context.Background()
	end := timedataset.AddDays(latest, 30)

	var err error
	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		benchPrediction, err = f.Predict(ctx, end)
		if err != nil {
			panic(err)
		}
	}
}

func BenchmarkPredictParallelExtrapolation(b *testing.B) {
	opt := NewDefaultOptions()
	opt.Extrapolation.Parallelization = len(opt.Exogenous)
	f, err := New(
		opt,
		memorySource{tbl: rawTable(b, 400)},
		lagTables(60),
		testRegistry(b, opt.Exogenous...),
		nil,
	)
	if err != nil {
		panic(err)
	}
	ctx := context.Background()
	end := timedataset.AddDays(latest, 30)

	b.ResetTimer()
	for b.Loop() {
		benchPrediction, err = f.Predict(ctx, end)
		if err != nil {
			panic(err)
		}
	}
}
