package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateDays returns n consecutive calendar days ending on end
func GenerateDays(n int, end time.Time) TimeSlice {
	end = TruncateDay(end)
	return DateRange(AddDays(end, -(n - 1)), end)
}

// Signal is a synthetic daily signal used to simulate observations
type Signal []float64

func (s Signal) Add(src Signal) Signal {
	floats.Add(s, src)
	return s
}

func (s Signal) Scale(c float64) Signal {
	floats.Scale(c, s)
	return s
}

func (s Signal) SetConst(t []time.Time, val float64, start, end time.Time) Signal {
	n := len(s)
	for i := 0; i < n; i++ {
		if (t[i].After(start) || t[i].Equal(start)) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

func (s Signal) MaskWithWeekend(t []time.Time) Signal {
	n := len(s)
	for i := 0; i < n; i++ {
		switch t[i].Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			s[i] = 0.0
		}
	}
	return s
}

// Values converts the signal into present cells
func (s Signal) Values() []Value {
	return Values(s)
}

func GenerateConstY(n int, val float64) Signal {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Signal(y)
}

// GenerateWaveY generates a sine wave with a period expressed in days
func GenerateWaveY(t []time.Time, amp, periodDays, order, dayOffset float64) Signal {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		day := float64(t[i].Unix())/86400.0 + dayOffset
		val := amp * math.Sin(2.0*math.Pi*order/periodDays*day)
		y = append(y, val)
	}
	return Signal(y)
}

// GenerateTrendY generates a straight line starting at 0 and rising by slope per day
func GenerateTrendY(n int, slope float64) Signal {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, slope*float64(i))
	}
	return Signal(y)
}

func GenerateNoise(n int, noiseScale float64) Signal {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rand.NormFloat64()*noiseScale)
	}
	return Signal(y)
}
