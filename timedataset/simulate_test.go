package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDays(t *testing.T) {
	end := time.Date(1970, 1, 7, 12, 0, 0, 0, time.UTC)

	numPnts := 7
	res := GenerateDays(numPnts, end)
	assert.Len(t, res, numPnts)

	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), res[0])
	assert.Equal(t, time.Date(1970, 1, 7, 0, 0, 0, 0, time.UTC), res[numPnts-1])
}

func TestSignal(t *testing.T) {
	numPnts := 7
	s := GenerateConstY(numPnts, 1)

	res := s.Add(GenerateConstY(numPnts, 2))
	require.Equal(t, Signal([]float64{3, 3, 3, 3, 3, 3, 3}), res)

	// 1970-01-01 was a Thursday
	tSeries := GenerateDays(numPnts, time.Date(1970, 1, 7, 0, 0, 0, 0, time.UTC))
	s.SetConst(tSeries, 2.0,
		time.Date(1970, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 5, 0, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, Signal([]float64{3, 3, 2, 2, 3, 3, 3}), s)

	s.MaskWithWeekend(tSeries)
	assert.Equal(t, Signal([]float64{0, 0, 2, 2, 0, 0, 0}), s)

	assert.Equal(t, Signal([]float64{0, 1, 2}), GenerateTrendY(3, 1))
}
