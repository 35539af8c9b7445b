// Package api exposes the forecaster over HTTP with the routes the price
// dashboard consumes.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	forecaster "github.com/tkeereweer/electricity-price-predictor"
	"github.com/tkeereweer/electricity-price-predictor/predictor"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

var (
	ErrNoService     = errors.New("no forecast service")
	ErrInvalidOrigin = errors.New("invalid allowed origin")
)

// Service is the part of the forecaster served over HTTP
type Service interface {
	History(ctx context.Context) (*forecaster.History, error)
	Predict(ctx context.Context, end time.Time) (*forecaster.Prediction, error)
}

type Options struct {
	// Precision is the number of decimals prices are rounded to. Negative
	// values return prices unrounded.
	Precision int32 `json:"precision" mapstructure:"precision"`

	// AllowOrigins lists the CORS origins, "*" allows any
	AllowOrigins []string `json:"allow_origins" mapstructure:"allow_origins"`

	// RateLimit caps forecasts per second across clients, 0 disables it
	RateLimit float64 `json:"rate_limit" mapstructure:"rate_limit"`
	Burst     int     `json:"burst" mapstructure:"burst"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Precision:    -1,
		AllowOrigins: []string{"*"},
	}
}

func (o *Options) Validate() *Options {
	if o == nil {
		return NewDefaultOptions()
	}
	if len(o.AllowOrigins) == 0 {
		o.AllowOrigins = []string{"*"}
	}
	if o.RateLimit < 0 {
		o.RateLimit = 0
	}
	if o.Burst < 1 {
		o.Burst = max(1, int(o.RateLimit*2))
	}
	return o
}

// RequestIDHeader carries the id a request is logged under
const RequestIDHeader = "X-Request-ID"

type server struct {
	svc     Service
	opt     *Options
	metrics *Metrics
	logger  *slog.Logger
	limiter *rate.Limiter
}

// NewRouter builds the gin engine serving the forecast routes and the metrics
// gathered on reg
func NewRouter(svc Service, opt *Options, reg *prometheus.Registry, logger *slog.Logger) (*gin.Engine, error) {
	if svc == nil {
		return nil, ErrNoService
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{
		svc:     svc,
		opt:     opt.Validate(),
		metrics: NewMetrics(reg),
		logger:  logger,
	}
	if s.opt.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.opt.RateLimit), s.opt.Burst)
	}

	corsCfg := s.corsConfig()
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("%v, %w", err, ErrInvalidOrigin)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), cors.New(corsCfg), s.instrument())
	r.POST("/predict", s.limit(), s.predict)
	r.GET("/get-graph", s.graph)
	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return r, nil
}

func (s *server) predict(c *gin.Context) {
	raw, ok := c.GetPostForm("end_date")
	if !ok || strings.TrimSpace(raw) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing end_date"})
		return
	}
	end, err := timedataset.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid end_date",
			"details": err.Error(),
		})
		return
	}

	p, err := s.svc.Predict(c.Request.Context(), end)
	if err != nil {
		s.fail(c, "unable to predict", err)
		return
	}
	s.metrics.Horizon.Observe(float64(p.Forecast.Len()))

	pred := make(map[string]predictor.Estimate, p.Forecast.Len())
	for i, d := range p.Forecast.T {
		est := p.Forecast.Estimate(i)
		if !finite(est.Point) || !finite(est.Lower) || !finite(est.Upper) {
			continue
		}
		pred[timedataset.FormatDate(d)] = predictor.Estimate{
			Point: s.round(est.Point),
			Lower: s.round(est.Lower),
			Upper: s.round(est.Upper),
		}
	}
	c.JSON(http.StatusOK, []gin.H{
		{"hist": s.histMap(p.History)},
		{"pred": pred},
	})
}

func (s *server) graph(c *gin.Context) {
	hist, err := s.svc.History(c.Request.Context())
	if err != nil {
		s.fail(c, "unable to load history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hist": s.histMap(hist)})
}

func (s *server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) fail(c *gin.Context, msg string, err error) {
	s.metrics.Failures.WithLabelValues(c.FullPath()).Inc()
	s.logger.Error(msg,
		"path", c.FullPath(),
		"request_id", c.GetString("request_id"),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func (s *server) histMap(h *forecaster.History) map[string]float64 {
	res := make(map[string]float64, len(h.T))
	for i, d := range h.T {
		if !finite(h.Y[i]) {
			continue
		}
		res[timedataset.FormatDate(d)] = s.round(h.Y[i])
	}
	return res
}

func (s *server) round(v float64) float64 {
	if s.opt.Precision < 0 {
		return v
	}
	return decimal.NewFromFloat(v).Round(s.opt.Precision).InexactFloat64()
}

// finite reports whether v can be encoded as a JSON number
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (s *server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(s.opt.AllowOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.opt.AllowOrigins
	}
	return cfg
}

func (s *server) limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			c.Header("Retry-After", "10")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		s.metrics.Latency.WithLabelValues(route).Observe(time.Since(began).Seconds())
	}
}
