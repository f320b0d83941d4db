package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/pageloader/internal/app"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/monitoring"
)

var (
	loadOutput string
	loadStrict bool
)

var loadCmd = &cobra.Command{
	Use:   "load [manifest]",
	Short: "Load a resource batch and write the rendered page",
	Long: `Load runs one batch against a fresh document and writes the rendered HTML.

The manifest may be YAML, TOML or JSON. Without one, the built-in batch is used.

Examples:
  pageloader load                        # built-in batch from the current directory
  pageloader load page.yaml -o out.html
  pageloader load --base-url https://cdn.example.com/site/ page.toml
  pageloader load --strict page.json     # exit non-zero if any resource fails`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadOutput, "output", "o", "", "Write HTML to this file, - for stdout (PAGELOADER_OUTPUT)")
	loadCmd.Flags().BoolVar(&loadStrict, "strict", false, "Exit with an error if any resource failed")
}

var errResourcesFailed = errors.New("one or more resources failed to load")

func runLoad(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.Loader.Manifest = args[0]
	}
	if cmd.Flags().Changed("output") {
		cfg.Loader.Output = loadOutput
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	if cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(cfg.Metrics.Addr, reg)
		defer shutdown()
	}

	a, err := app.New(cfg, logger, metrics)
	if err != nil {
		return err
	}
	m, err := a.Manifest()
	if err != nil {
		return err
	}

	result, err := a.Load(ctx, m)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd, cfg.Loader.Output, result.HTML); err != nil {
		return err
	}

	failed := result.Report.Failed()
	for _, o := range failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s (%s): %v\n", o.Name, o.Path, o.Err)
	}
	if loadStrict && len(failed) > 0 {
		return errResourcesFailed
	}
	return nil
}

func writeOutput(cmd *cobra.Command, path, html string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), html)
		return err
	}
	if err := os.WriteFile(path, []byte(html+"\n"), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("page written", zap.String("path", path))
	return nil
}

// serveMetrics exposes reg for the duration of the command
func serveMetrics(addr string, reg *prometheus.Registry) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           monitoring.Handler(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics endpoint failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	logger.Info("metrics endpoint listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
