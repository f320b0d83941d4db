// Package config provides 12-factor configuration for the page loader.
//
// Configuration is loaded from environment variables with defaults; CLI flags
// override individual values.
//
// Configuration Sections:
//   - Loader: manifest, asset root or base URL, output file
//   - Workers: decompression worker startup timeout
//   - Fetch: transport timeout and user agent
//   - Document: script timeout and markup sanitizing
//   - Logging: log level and output format
//   - Metrics: optional Prometheus listen address
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("loading %s from %s\n", cfg.Loader.Manifest, cfg.Loader.Root)
//
// Environment Variables:
//   - PAGELOADER_MANIFEST, PAGELOADER_ROOT, PAGELOADER_BASE_URL, PAGELOADER_OUTPUT
//   - PAGELOADER_WORKER_STARTUP_TIMEOUT, PAGELOADER_FETCH_TIMEOUT, PAGELOADER_USER_AGENT
//   - PAGELOADER_SCRIPT_TIMEOUT, PAGELOADER_SANITIZE_MARKUP
//   - LOG_LEVEL, LOG_DEV, METRICS_ADDR
package config
