package main

import (
	"context"
	"github.com/minor-industries/livechart"
	"github.com/minor-industries/livechart/demo"
	"github.com/minor-industries/livechart/internal/config"
	"github.com/minor-industries/livechart/internal/logging"
	"github.com/minor-industries/livechart/simulator"
	"github.com/minor-industries/livechart/telemetry"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:          "livechart",
		Short:        "live telemetry charts in the browser",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.ReadFile(v, configFile)
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().Bool("debug", false, "debug logging")
	mustBind(v, config.KeyDebug, cmd.PersistentFlags().Lookup("debug"))

	cmd.AddCommand(
		newServeCommand(v),
		newSimulateCommand(v),
	)

	return cmd
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the dashboard and stream telemetry into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, cfg, log, newRegistry()); err != nil {
				log.Error("serve", zap.Error(err))
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("server", config.DefaultServer, "telemetry websocket url")
	flags.String("listen", config.DefaultListen, "dashboard listen address")
	flags.Bool("reconnect", false, "redial the telemetry server when the socket closes")
	flags.Int64("read-limit", config.DefaultReadLimit, "largest telemetry message accepted, in bytes")
	flags.Bool("demo", false, "show generated sine waves instead of live telemetry")
	mustBind(v, config.KeyServer, flags.Lookup("server"))
	mustBind(v, config.KeyListen, flags.Lookup("listen"))
	mustBind(v, config.KeyReconnect, flags.Lookup("reconnect"))
	mustBind(v, config.KeyReadLimit, flags.Lookup("read-limit"))
	mustBind(v, config.KeyDemo, flags.Lookup("demo"))

	return cmd
}

func newSimulateCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "serve simulated analog input telemetry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(v)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sim := simulator.New(simulator.Config{
				Interval: cfg.Simulate.Interval,
			}, log.Named("simulator"))

			return sim.Run(ctx, cfg.Simulate.Listen)
		},
	}

	flags := cmd.Flags()
	flags.String("listen", config.DefaultSimulateListen, "simulator listen address")
	flags.Duration("interval", config.DefaultSimulateInterval, "time between batches")
	mustBind(v, config.KeySimulateListen, flags.Lookup("listen"))
	mustBind(v, config.KeySimulateInterval, flags.Lookup("interval"))

	return cmd
}

// newRegistry holds the process metrics and everything the viewer registers.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, reg *prometheus.Registry) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)

	viewer, err := livechart.New(ctx, livechart.Options{
		Channels:   cfg.Channels,
		Logger:     log.Named("server"),
		Registerer: reg,
		Gatherer:   reg,
	})
	if err != nil {
		return errors.Wrap(err, "new viewer")
	}

	if cfg.Demo {
		if err := demo.Load(viewer.Dashboard()); err != nil {
			return errors.Wrap(err, "load demo")
		}
	} else {
		client := telemetry.NewClient(
			telemetry.Config{
				URL:       cfg.Server,
				Reconnect: cfg.Reconnect,
				ReadLimit: cfg.ReadLimit,
			},
			viewer.HandleBatch,
			log.Named("telemetry"),
			viewer.TelemetryMetrics(),
		)
		go func() {
			errCh <- errors.Wrap(client.Run(ctx), "telemetry")
		}()
	}

	go func() {
		errCh <- errors.Wrap(viewer.RunServer(ctx, cfg.Listen), "run server")
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
}

func load(v *viper.Viper) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
