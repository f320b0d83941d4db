// Command pageloader loads a page's resource batch into a headless document.
//
// Usage:
//
//	pageloader load [manifest]          # render the page to stdout or --output
//	pageloader serve [manifest]         # preview server with /report and /reload
//	pageloader compress --scheme brotli <file>
//	pageloader init [file]              # write the built-in manifest
//	pageloader version
//
// Settings come from PAGELOADER_* environment variables; flags override them.
package main
