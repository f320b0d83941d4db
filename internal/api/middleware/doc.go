// Package middleware provides the preview server's gin middleware.
//
//   - CORS: cross-origin access to the report endpoints
//   - RateLimit: per-client token bucket, used to throttle reloads
//   - RequestID: X-Request-ID propagation and request logging
//
// Example Usage:
//
//	router.Use(middleware.RequestID(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.POST("/reload", middleware.RateLimit(middleware.RateLimitConfig{PerSecond: 1, Burst: 3}), h.ReloadPage)
package middleware
