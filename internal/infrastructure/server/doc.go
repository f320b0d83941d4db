// Package server runs the preview HTTP server: gin routing, middleware, and
// graceful shutdown on context cancellation.
package server
