// Package http serves the preview surface: the last rendered page, its load
// report, and a reload trigger.
package http
