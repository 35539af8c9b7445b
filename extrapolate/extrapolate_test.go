package extrapolate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

type mockPredictor struct {
	mock.Mock
}

func (m *mockPredictor) Predict(x []float64) (float64, error) {
	args := m.Called(x)
	return args.Get(0).(float64), args.Error(1)
}

// nextPredictor predicts the most recent value plus a step
type nextPredictor struct {
	step float64
}

func (n nextPredictor) Predict(x []float64) (float64, error) {
	return x[0] + n.step, nil
}

var lagEnd = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

// lagSeries returns n values 1..n ending on lagEnd
func lagSeries(n int) *timedataset.Series {
	return timedataset.NewSeries(timedataset.AddDays(lagEnd, -(n-1)), timedataset.GenerateTrendY(n, 1).Add(timedataset.GenerateConstY(n, 1)))
}

func TestVariableFeatureOrder(t *testing.T) {
	p := new(mockPredictor)
	first := []float64{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	second := []float64{100, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	p.On("Predict", first).Return(100.0, nil).Once()
	p.On("Predict", second).Return(101.0, nil).Once()

	lags := lagSeries(15)
	res, err := Variable(context.Background(), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Job{
		Name:      "Gas_Price",
		Predictor: p,
		Lags:      lags,
	}, 15)
	require.Nil(t, err)
	p.AssertExpectations(t)

	assert.Equal(t, 2, res.Predicted)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), res.Series.End())
	val, ok := res.Series.At(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 100.0, val)

	// the seed series is not extended
	assert.Equal(t, lagEnd, lags.End())
}

func TestVariable(t *testing.T) {
	testData := map[string]struct {
		job       Job
		end       time.Time
		predicted int
		err       error
	}{
		"end before lag end": {
			job:       Job{Name: "x", Predictor: nextPredictor{1}, Lags: lagSeries(20)},
			end:       time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			predicted: 0,
		},
		"one year": {
			job:       Job{Name: "x", Predictor: nextPredictor{1}, Lags: lagSeries(15)},
			end:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			predicted: 365,
		},
		"insufficient lags": {
			job: Job{Name: "x", Predictor: nextPredictor{1}, Lags: lagSeries(14)},
			end: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			err: ErrInsufficientLags,
		},
		"no lags": {
			job: Job{Name: "x", Predictor: nextPredictor{1}},
			end: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			err: ErrNoLags,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := Variable(context.Background(), td.end, td.job, 15)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.predicted, res.Predicted)
		})
	}
}

func workingTable(t *testing.T) *timedataset.Table {
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	n := 30 // through 2024-12-30
	tbl := timedataset.NewTable(start, n)
	require.Nil(t, tbl.SetColumn("Gas_Price", timedataset.GenerateConstY(n, 99).Values()))
	require.Nil(t, tbl.SetColumn("Electricity_Price", timedataset.GenerateConstY(n, 80).Values()))
	return tbl
}

func TestExtend(t *testing.T) {
	tbl := workingTable(t)
	end := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	results, err := Extend(context.Background(), end, tbl, []Job{
		{Name: "Gas_Price", Predictor: nextPredictor{1}, Lags: lagSeries(20)},
		{Name: "Temperature", Predictor: nextPredictor{0.5}, Lags: lagSeries(15)},
	}, nil)
	require.Nil(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, end, tbl.End())

	// observed working cells win over lag values
	assert.Equal(t, timedataset.Some(99), tbl.At("Gas_Price", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)))
	// observed lag value past the table end is copied
	assert.Equal(t, timedataset.Some(20), tbl.At("Gas_Price", lagEnd))
	assert.Equal(t, timedataset.Some(21), tbl.At("Gas_Price", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, timedataset.Some(22), tbl.At("Gas_Price", end))
	assert.Equal(t, 1, results[0].Copied)
	assert.Equal(t, 2, results[0].Predicted)
	assert.Equal(t, 3, results[0].Written)

	// a new column is created with earlier days missing
	assert.Equal(t, timedataset.None(), tbl.At("Temperature", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, timedataset.Some(15.5), tbl.At("Temperature", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, timedataset.Some(16), tbl.At("Temperature", end))

	// the target is left alone
	assert.Equal(t, timedataset.None(), tbl.At("Electricity_Price", end))
}

func TestExtendSeedsFromTable(t *testing.T) {
	tbl := workingTable(t)
	n := tbl.Len()
	require.Nil(t, tbl.SetColumn("Gas_Price", timedataset.GenerateTrendY(n, 2).Add(timedataset.GenerateConstY(n, 50)).Values()))
	tableEnd := tbl.End()
	lastObserved := tbl.At("Gas_Price", tableEnd)
	require.True(t, lastObserved.Valid())

	// lag history stops three days before the table does
	lags := timedataset.NewSeries(timedataset.AddDays(tableEnd, -17), timedataset.GenerateConstY(15, 1))
	require.Equal(t, timedataset.AddDays(tableEnd, -3), lags.End())

	end := timedataset.AddDays(tableEnd, 2)
	results, err := Extend(context.Background(), end, tbl, []Job{
		{Name: "Gas_Price", Predictor: nextPredictor{0}, Lags: lags},
	}, nil)
	require.Nil(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, 3, results[0].Seeded)
	assert.Equal(t, 2, results[0].Predicted)
	assert.Equal(t, 2, results[0].Written)
	assert.Equal(t, lastObserved, tbl.At("Gas_Price", timedataset.AddDays(tableEnd, 1)))
	assert.Equal(t, lastObserved, tbl.At("Gas_Price", end))

	// the job's lag series is untouched
	assert.Equal(t, 15, lags.Len())
}

func TestExtendParallelMatchesSequential(t *testing.T) {
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	jobs := func() []Job {
		return []Job{
			{Name: "Gas_Price", Predictor: nextPredictor{1}, Lags: lagSeries(20)},
			{Name: "Temperature", Predictor: nextPredictor{0.5}, Lags: lagSeries(15)},
			{Name: "CO2_Value", Predictor: nextPredictor{-1}, Lags: lagSeries(30)},
			{Name: "interconn_fra", Predictor: nextPredictor{2}, Lags: lagSeries(16)},
		}
	}

	sequential := workingTable(t)
	_, err := Extend(context.Background(), end, sequential, jobs(), &Options{NumLags: 15, Parallelization: 1})
	require.Nil(t, err)

	parallel := workingTable(t)
	_, err = Extend(context.Background(), end, parallel, jobs(), &Options{NumLags: 15, Parallelization: 4})
	require.Nil(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestExtendErrors(t *testing.T) {
	predErr := errors.New("model exploded")
	failing := new(mockPredictor)
	failing.On("Predict", mock.Anything).Return(0.0, predErr)

	tbl := workingTable(t)
	before := tbl.Copy()
	end := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, parallelization := range []int{1, 2} {
		results, err := Extend(context.Background(), end, tbl, []Job{
			{Name: "Temperature", Predictor: nextPredictor{1}, Lags: lagSeries(15)},
			{Name: "Gas_Price", Predictor: failing, Lags: lagSeries(15)},
		}, &Options{NumLags: 15, Parallelization: parallelization})
		assert.ErrorIs(t, err, predErr)
		assert.Nil(t, results)
		assert.Equal(t, before, tbl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extend(ctx, end, tbl, []Job{
		{Name: "Temperature", Predictor: nextPredictor{1}, Lags: lagSeries(15)},
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Extend(context.Background(), end, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoTable)
}
