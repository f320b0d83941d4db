package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/pageloader/internal/config"
	"github.com/GriffinCanCode/pageloader/internal/infrastructure/logging"
)

var (
	cfg    *config.Config
	logger *logging.Logger

	flagRoot     string
	flagBaseURL  string
	flagLogLevel string
	flagDev      bool
	flagSanitize bool
)

var rootCmd = &cobra.Command{
	Use:   "pageloader",
	Short: "Sequenced resource loader for headless pages",
	Long: `pageloader fetches a page's declared resources in order, decompresses
them in per-scheme workers, and injects them into a live HTML document.

A failing resource is logged and skipped; the rest of the batch still loads.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagRoot, "root", "", "Asset root directory (PAGELOADER_ROOT)")
	flags.StringVar(&flagBaseURL, "base-url", "", "Fetch every resource relative to this URL (PAGELOADER_BASE_URL)")
	flags.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (LOG_LEVEL)")
	flags.BoolVar(&flagDev, "dev", false, "Human-readable development logging (LOG_DEV)")
	flags.BoolVar(&flagSanitize, "sanitize", false, "Sanitize injected markup (PAGELOADER_SANITIZE_MARKUP)")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		loaded.Loader.Root = flagRoot
	}
	if flags.Changed("base-url") {
		loaded.Loader.BaseURL = flagBaseURL
	}
	if flags.Changed("log-level") {
		loaded.Logging.Level = flagLogLevel
	}
	if flags.Changed("dev") {
		loaded.Logging.Development = flagDev
	}
	if flags.Changed("sanitize") {
		loaded.Document.SanitizeMarkup = flagSanitize
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(logging.Config{
		Level:       loaded.Logging.Level,
		Development: loaded.Logging.Development,
	})
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", loaded.Logging.Level, err)
	}

	cfg = loaded
	logger = l
	return nil
}
