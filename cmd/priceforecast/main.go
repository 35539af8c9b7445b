package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	forecaster "github.com/tkeereweer/electricity-price-predictor"
	"github.com/tkeereweer/electricity-price-predictor/api"
	"github.com/tkeereweer/electricity-price-predictor/config"
	"github.com/tkeereweer/electricity-price-predictor/forecast"
	"github.com/tkeereweer/electricity-price-predictor/timedataset"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		envFile    string
		a          *app
	)

	rootCmd := &cobra.Command{
		Use:           "priceforecast",
		Short:         "Recursive daily electricity price forecaster",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("unable to load %s, %w", envFile, err)
			}
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			a, err = newApp(cfg, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	get := func() *app { return a }
	rootCmd.AddCommand(
		serveCmd(get),
		predictCmd(get),
		histCmd(get),
		plotCmd(get),
		backtestCmd(get),
		modelsCmd(get),
	)
	return rootCmd
}

func serveCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f, err := a.forecaster(ctx)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			router, err := api.NewRouter(f, a.cfg.APIOptions(), reg, a.logger)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.cfg.Addr(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func predictCmd(get func() *app) *cobra.Command {
	var end string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast the price up to an end date and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			endDate, err := timedataset.ParseDate(end)
			if err != nil {
				return fmt.Errorf("invalid end date, %w", err)
			}
			f, err := get().forecaster(cmd.Context())
			if err != nil {
				return err
			}
			p, err := f.Predict(cmd.Context(), endDate)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p.Forecast)
		},
	}
	cmd.Flags().StringVarP(&end, "end", "e", "", "last day to forecast, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func histCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hist",
		Short: "Print the trailing target history as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := get().forecaster(cmd.Context())
			if err != nil {
				return err
			}
			hist, err := f.History(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), hist)
		},
	}
}

func plotCmd(get func() *app) *cobra.Command {
	var end, out string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the history and forecast as an html chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			endDate, err := timedataset.ParseDate(end)
			if err != nil {
				return fmt.Errorf("invalid end date, %w", err)
			}
			f, err := get().forecaster(cmd.Context())
			if err != nil {
				return err
			}
			p, err := f.Predict(cmd.Context(), endDate)
			if err != nil {
				return err
			}
			return writeFile(out, func(w io.Writer) error {
				return forecaster.PlotPrediction(w, p)
			})
		},
	}
	cmd.Flags().StringVarP(&end, "end", "e", "", "last day to forecast, YYYY-MM-DD")
	cmd.Flags().StringVarP(&out, "out", "o", "forecast.html", "output html file")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

type backtestSummary struct {
	*forecast.Scores
	OneStepR2 *float64 `json:"one_step_r_squared,omitempty"`
}

func backtestCmd(get func() *app) *cobra.Command {
	var cutoff, out string
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Forecast from a past cutoff and score it against the observations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoffDate, err := timedataset.ParseDate(cutoff)
			if err != nil {
				return fmt.Errorf("invalid cutoff, %w", err)
			}
			f, err := get().forecaster(cmd.Context())
			if err != nil {
				return err
			}
			b, err := f.Backtest(cmd.Context(), cutoffDate)
			if err != nil {
				return err
			}
			if out != "" {
				err := writeFile(out, func(w io.Writer) error {
					return forecaster.PlotBacktest(w, b)
				})
				if err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), backtestSummary{
				Scores:    b.Scores,
				OneStepR2: b.OneStepR2,
			})
		},
	}
	cmd.Flags().StringVar(&cutoff, "cutoff", "", "last observed day kept, YYYY-MM-DD")
	cmd.Flags().StringVarP(&out, "out", "o", "", "optional output html file")
	_ = cmd.MarkFlagRequired("cutoff")
	return cmd
}

func modelsCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Print the loaded predictor artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			artifacts, err := get().artifacts()
			if err != nil {
				return err
			}
			for _, a := range artifacts {
				if err := a.TablePrint(cmd.OutOrStdout(), "", "  "); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode output, %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeFile(path string, render func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create %s, %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
