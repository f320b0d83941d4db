/*
Package loader sequences a load batch.

A Sequencer walks the batch in declaration order. Each resource is fetched,
decompressed by the scheme's worker when it is compressed, and injected before
the next resource starts. A failing resource is logged and skipped. When the
loop ends, the worker pool is shut down and the completion listeners fire.

Page wraps a Sequencer with the page-level steps: favicon, batch, deferred
module scripts, then a one-shot completion signal.
*/
package loader
