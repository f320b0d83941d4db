/*
Package workers runs decompression in isolated worker processes.

# Overview

A worker Process is a goroutine-hosted execution context that owns its
decoder. The orchestrating side talks to it only through messages: a request
carries a transferred byte buffer, a reply carries either the decompressed
buffer or an error string.

# Lifecycle

	Starting -> Ready -> (Busy -> Ready)* -> Terminated

A Program is loaded in the Starting state: its Support steps run first, in
order, installing capabilities into the worker's Env (the decoder library),
then its Entry builds the message handler. The process signals readiness
exactly once. Terminate never drains; a request in flight fails with
ErrTerminated.

A handler that returns an error produces an error reply and the process
returns to Ready. A handler that panics crashes the process; the caller sees a
transport failure.

# Pool

Pool keeps at most one live Process per compression scheme for one load
batch. Workers are spawned on first use and terminated together by
ShutdownAll.

	pool := workers.NewPool(workers.Options{StartupTimeout: 5 * time.Second})
	defer pool.ShutdownAll()

	text, err := pool.Decompress(ctx, resource.SchemeBrotli, "three.min.js.br", raw)
*/
package workers
