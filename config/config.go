// Package config loads the service configuration from a YAML file, the
// environment and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	forecaster "github.com/tkeereweer/electricity-price-predictor"
	"github.com/tkeereweer/electricity-price-predictor/api"
)

// EnvPrefix prefixes every environment override, PFC_SERVER_PORT sets
// server.port
const EnvPrefix = "PFC"

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

var (
	ErrUnknownSource    = errors.New("unknown data source")
	ErrUnknownLogFormat = errors.New("unknown log format")
	ErrNoDSN            = errors.New("postgres source without dsn")
)

type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Server   Server   `mapstructure:"server"`
	Response Response `mapstructure:"response"`
	Data     Data     `mapstructure:"data"`
	Models   Models   `mapstructure:"models"`
	Postgres Postgres `mapstructure:"postgres"`
	Forecast Forecast `mapstructure:"forecast"`
}

type Server struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	RateLimit    float64  `mapstructure:"rate_limit"`
	Burst        int      `mapstructure:"burst"`
}

type Response struct {
	Precision int32 `mapstructure:"precision"`
}

type Data struct {
	// Source is csv or postgres
	Source     string `mapstructure:"source"`
	CSVPath    string `mapstructure:"csv_path"`
	LagDir     string `mapstructure:"lag_dir"`
	DateColumn string `mapstructure:"date_column"`
}

type Models struct {
	Dir string `mapstructure:"dir"`
}

type Postgres struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	LagTable string `mapstructure:"lag_table"`
}

type Forecast struct {
	HistoryDays     int      `mapstructure:"history_days"`
	NumLags         int      `mapstructure:"num_lags"`
	Parallelization int      `mapstructure:"parallelization"`
	Exogenous       []string `mapstructure:"exogenous"`
	Holidays        string   `mapstructure:"holidays"`
	Partial         bool     `mapstructure:"partial"`
}

func setDefaults(v *viper.Viper) {
	opt := forecaster.NewDefaultOptions()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.burst", 0)

	v.SetDefault("response.precision", -1)

	v.SetDefault("data.source", SourceCSV)
	v.SetDefault("data.csv_path", "data/Data_Combined_2023-2024_daily.csv")
	v.SetDefault("data.lag_dir", "data")
	v.SetDefault("data.date_column", "Date")

	v.SetDefault("models.dir", "models")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.table", "observations")
	v.SetDefault("postgres.lag_table", "variable_lags")

	v.SetDefault("forecast.history_days", opt.HistoryDays)
	v.SetDefault("forecast.num_lags", opt.Extrapolation.NumLags)
	v.SetDefault("forecast.parallelization", opt.Extrapolation.Parallelization)
	v.SetDefault("forecast.exogenous", opt.Exogenous)
	v.SetDefault("forecast.holidays", "")
	v.SetDefault("forecast.partial", false)
}

// Load reads the configuration. An empty path looks for config.yaml in the
// working directory, and a missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("postgres.dsn", EnvPrefix+"_POSTGRES_DSN", "DATABASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV:
	case SourcePostgres:
		if c.Postgres.DSN == "" {
			return ErrNoDSN
		}
	default:
		return fmt.Errorf("%q, %w", c.Data.Source, ErrUnknownSource)
	}
	if _, err := c.Handler(nil); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Level parses the log level, defaulting to info
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Handler builds the slog handler for the configured format and level. A nil
// writer is only useful to validate the format.
func (c *Config) Handler(w io.Writer) (slog.Handler, error) {
	hopt := &slog.HandlerOptions{Level: c.Level()}
	switch strings.ToLower(c.LogFormat) {
	case "json", "":
		return slog.NewJSONHandler(w, hopt), nil
	case "text":
		return slog.NewTextHandler(w, hopt), nil
	}
	return nil, fmt.Errorf("%q, %w", c.LogFormat, ErrUnknownLogFormat)
}

// Options maps the forecast section onto the forecaster options
func (c *Config) Options() *forecaster.Options {
	opt := forecaster.NewDefaultOptions()
	opt.HistoryDays = c.Forecast.HistoryDays
	opt.Extrapolation.NumLags = c.Forecast.NumLags
	opt.Extrapolation.Parallelization = c.Forecast.Parallelization
	if len(c.Forecast.Exogenous) > 0 {
		opt.Exogenous = c.Forecast.Exogenous
	}
	opt.Features.Holidays = c.Forecast.Holidays
	opt.Features.Partial = c.Forecast.Partial
	return opt
}

// APIOptions maps the server and response sections onto the api options
func (c *Config) APIOptions() *api.Options {
	return &api.Options{
		Precision:    c.Response.Precision,
		AllowOrigins: c.Server.AllowOrigins,
		RateLimit:    c.Server.RateLimit,
		Burst:        c.Server.Burst,
	}
}
