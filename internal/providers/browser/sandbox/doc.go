/*
Package sandbox executes the scripts injected into a document.

# Overview

A Runtime wraps one goja VM that lives as long as its document. Scripts run
in injection order against the same global scope, so a library script
injected first is visible to the scripts after it. Each execution has:

  - A timeout enforced through VM interrupts
  - Console capture (log, info, warn, error, debug)
  - Host globals removed (require, process, module, exports)
  - A document binding backed by the host DOM

Module scripts run through ExecuteModule: strict mode, wrapped in their own
function scope so their top-level declarations do not leak into globals.

# Usage Example

	rt, err := sandbox.New(sandbox.DefaultConfig())
	rt.Bind(dom)

	result, err := rt.Execute(ctx, "index.js", script)
	if err != nil {
		logger.Error("script failed", zap.Error(err))
	}
*/
package sandbox
