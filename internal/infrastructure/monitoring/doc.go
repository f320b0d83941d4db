/*
Package monitoring provides Prometheus metrics for the page loader.

# Metrics

  - pageloader_resources_total{type,status}: resources processed per batch
  - pageloader_resource_errors_total{kind}: per-resource failures by error kind
  - pageloader_decompress_duration_seconds{scheme}: worker round-trip time
  - pageloader_worker_spawns_total{scheme,status}: worker startups
  - pageloader_workers_live: live decompression workers
  - pageloader_batch_duration_seconds: full batch time including teardown
  - pageloader_http_requests_total{method,route,status}: preview server requests
  - pageloader_http_request_duration_seconds{method,route}: preview server latency

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	http.Handle("/metrics", monitoring.Handler(reg))

A nil *Metrics is valid and records nothing.
*/
package monitoring
