// Package logging provides structured logging using uber/zap.
//
// Two output modes:
//   - Production: JSON lines for machine parsing
//   - Development: colored console output
//
// Components receive a *Logger and derive a named child with Named, so log
// lines carry "loader", "workers", "fetch" or "document" as the logger name.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("loaded", zap.String("resource", "index.js"))
//	logger.Error("failed to load", zap.String("resource", name), zap.Error(err))
package logging
