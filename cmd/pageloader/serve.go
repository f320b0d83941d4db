package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/pageloader/internal/api/middleware"
	"github.com/GriffinCanCode/pageloader/internal/app"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [manifest]",
	Short: "Serve the loaded page with its report",
	Long: `Serve loads the page once, then serves it over HTTP.

Routes:
  GET  /         rendered page
  GET  /report   load report as JSON
  GET  /query    XPath query over the page (?xpath=//script)
  POST /reload   load the batch again (rate limited)
  GET  /metrics  Prometheus metrics
  GET  /health   liveness

The manifest is re-read on every reload.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (PAGELOADER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Loader.Manifest = args[0]
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	a, err := app.New(cfg, logger, metrics)
	if err != nil {
		return err
	}
	load := func(ctx context.Context) (*app.Result, error) {
		m, err := a.Manifest()
		if err != nil {
			return nil, err
		}
		return a.Load(ctx, m)
	}

	srv := server.New(server.Config{
		Addr:        cfg.Server.Addr,
		Development: cfg.Logging.Development,
		Reload: middleware.RateLimitConfig{
			PerSecond: cfg.Server.ReloadRate,
			Burst:     cfg.Server.ReloadBurst,
		},
		CORSOrigins: cfg.Server.CORSOrigins,
		Registry:    reg,
		Metrics:     metrics,
	}, load, logger)

	return srv.Run(ctx)
}
