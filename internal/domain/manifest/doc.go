// Package manifest loads the declaration of a load batch from YAML, TOML or
// JSON and turns it into an ordered resource.Batch.
package manifest
