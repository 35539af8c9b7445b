package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the HTTP surface
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Horizon  prometheus.Histogram
	Failures *prometheus.CounterVec
}

// NewMetrics creates and registers every collector on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceforecast_requests_total",
				Help: "Number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		Latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "priceforecast_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Horizon: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "priceforecast_forecast_horizon_days",
			Help:    "Number of days forecast per prediction",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceforecast_failures_total",
				Help: "Number of failed forecasts by route",
			},
			[]string{"route"},
		),
	}
}
