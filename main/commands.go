package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"racebot/config"
	"racebot/ergast"
	"racebot/httpclient"
	"racebot/metrics"
	"racebot/telemetry"
	"racebot/versions"
)

// app carries what every subcommand needs once the root pre-run has loaded
// the configuration.
type app struct {
	v        *viper.Viper
	envFile  string
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	tracer   *sdktrace.TracerProvider
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:          "racebot",
		Short:        "Formula 1 data gateway, HTTP API and chat bots",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Context(), cmd.ErrOrStderr())
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "data.env", "Optional .env file loaded before the environment is read")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("base-url", ergast.DefaultBaseURL, "Ergast API base URL")
	flags.Int("retries", httpclient.DefaultRetries, "Attempts per upstream fetch")
	flags.Duration("timeout", httpclient.DefaultTimeout, "Timeout of one upstream attempt")
	flags.Duration("backoff", httpclient.DefaultBackoff, "Base delay between upstream attempts")

	for key, flag := range map[string]string{
		config.KeyLogLevel: "log-level",
		config.KeyBaseURL:  "base-url",
		config.KeyRetries:  "retries",
		config.KeyTimeout:  "timeout",
		config.KeyBackoff:  "backoff",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}

	rootCmd.AddCommand(
		newServeCmd(a),
		newBotCmd(a),
		newQueryCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) load(ctx context.Context, logOut io.Writer) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = setupLogger(logOut, cfg.SlogLevel())
	slog.SetDefault(a.logger)

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a.tracer, err = telemetry.NewTracerProvider(ctx,
		telemetry.WithServiceVersion(versions.GetVersionInfo().Version),
		telemetry.WithEndpoint(cfg.Tracing.Endpoint, cfg.Tracing.Insecure),
		telemetry.WithSampling(cfg.Tracing.Sampling),
	)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	return nil
}

// close flushes pending spans. It is deferred by every command that ran
// load.
func (a *app) close() {
	if a.tracer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("Failed to flush spans", slog.Any("error", err))
	}
}

// gateway builds the Ergast handlers with the configured policy and fetch
// metrics registered on the app registry.
func (a *app) gateway() (*ergast.ErgastAPI, error) {
	fetchMetrics, err := metrics.NewFetchMetrics(a.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	client := httpclient.NewClient(
		httpclient.WithLogger(a.logger),
		httpclient.WithObserver(fetchMetrics),
		httpclient.WithTracer(a.tracer.Tracer("racebot/httpclient")),
	)
	return ergast.NewErgastAPI(
		ergast.WithBaseURL(a.cfg.Ergast.BaseURL),
		ergast.WithPolicy(a.cfg.Ergast.Policy()),
		ergast.WithFetcher(client),
		ergast.WithLogger(a.logger),
		ergast.WithTracer(a.tracer.Tracer("racebot/ergast")),
	)
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Version output needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}

			switch format {
			case "json":
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("error formatting version info as JSON: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
			case "yaml":
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(info)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "racebot %s (commit %s, built %s, %s, %s)\n",
					info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			}
			return nil
		},
	}
	cmd.Flags().String("format", "", "Output format (json, yaml)")
	return cmd
}
