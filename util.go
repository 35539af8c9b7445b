package forecaster

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

// emptyPoint is rendered by echarts as a gap in the line
const emptyPoint = "-"

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. Every
// y series must have the same length as t. NaN values are drawn as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	line = line.SetXAxis(axis(t))
	for i, series := range seriesName {
		line = line.AddSeries(series, lineData(y[i], 0, 0))
	}
	return line
}

// LinePrediction plots the observed history followed by the forecast and its
// interval on a shared date axis
func LinePrediction(p *Prediction) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Electricity Price Forecast",
				Subtitle: fmt.Sprintf("latest observation %s", timedataset.FormatDate(p.Latest)),
			},
		),
	)

	nHist := len(p.History.T)
	nFcst := p.Forecast.Len()
	t := make([]time.Time, 0, nHist+nFcst)
	t = append(t, p.History.T...)
	t = append(t, p.Forecast.T...)

	line.SetXAxis(axis(t)).
		AddSeries("Observed", lineData(p.History.Y, 0, nFcst)).
		AddSeries("Forecast", lineData(p.Forecast.Forecast, nHist, 0)).
		AddSeries("Upper", lineData(p.Forecast.Upper, nHist, 0)).
		AddSeries("Lower", lineData(p.Forecast.Lower, nHist, 0))
	return line
}

// LineBacktest plots the history before the cutoff, the forecast made from it
// and what was observed over the same days
func LineBacktest(b *Backtest) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Backtest",
				Subtitle: fmt.Sprintf(
					"cutoff %s, mape %.4f, r2 %.4f",
					timedataset.FormatDate(b.Cutoff), b.Scores.MAPE, b.Scores.R2,
				),
			},
		),
	)

	nHist := len(b.History.T)
	nFcst := b.Forecast.Len()
	t := make([]time.Time, 0, nHist+nFcst)
	t = append(t, b.History.T...)
	t = append(t, b.Forecast.T...)

	line.SetXAxis(axis(t)).
		AddSeries("Observed", lineData(b.History.Y, 0, nFcst)).
		AddSeries("Actual", lineData(b.Actual, nHist, 0)).
		AddSeries("Forecast", lineData(b.Forecast.Forecast, nHist, 0)).
		AddSeries("Upper", lineData(b.Forecast.Upper, nHist, 0)).
		AddSeries("Lower", lineData(b.Forecast.Lower, nHist, 0))
	return line
}

// PlotPrediction renders the prediction chart as an html page
func PlotPrediction(w io.Writer, p *Prediction) error {
	page := components.NewPage()
	page.AddCharts(LinePrediction(p))
	return page.Render(w)
}

// PlotBacktest renders the backtest chart as an html page
func PlotBacktest(w io.Writer, b *Backtest) error {
	residuals := make([]float64, b.Forecast.Len())
	for i := range residuals {
		residuals[i] = b.Actual[i] - b.Forecast.Forecast[i]
	}

	page := components.NewPage()
	page.AddCharts(
		LineBacktest(b),
		LineTSeries("Backtest Residuals", []string{"Residual"}, b.Forecast.T, [][]float64{residuals}),
	)
	return page.Render(w)
}

func axis(t []time.Time) []string {
	res := make([]string, len(t))
	for i, d := range t {
		res[i] = timedataset.FormatDate(d)
	}
	return res
}

// lineData pads y with before leading and after trailing empty points
func lineData(y []float64, before, after int) []opts.LineData {
	data := make([]opts.LineData, 0, before+len(y)+after)
	for i := 0; i < before; i++ {
		data = append(data, opts.LineData{Value: emptyPoint})
	}
	for _, v := range y {
		if math.IsNaN(v) {
			data = append(data, opts.LineData{Value: emptyPoint})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	for i := 0; i < after; i++ {
		data = append(data, opts.LineData{Value: emptyPoint})
	}
	return data
}
