// Package resource defines the page resource model shared by the loader.
//
// A Descriptor is one loadable artifact: a script, a stylesheet or a markup
// fragment, stored at a path and optionally compressed with one of the
// supported schemes. A Batch is the ordered list of descriptors processed by
// one loader run.
//
// Type and Scheme are closed enumerations. Every dispatch over them in this
// module is an exhaustive switch; unrecognized wire names are rejected when
// parsed, with UnknownResourceTypeError or UnknownCompressionSchemeError.
//
// Errors:
//   - FetchError: transport or path resolution failure
//   - WorkerStartupError: a decompression worker never became ready
//   - WorkerTransportError: worker communication broke before a reply
//   - DecompressionError: the worker rejected the input
//   - UnknownResourceTypeError / UnknownCompressionSchemeError: bad declaration
package resource
