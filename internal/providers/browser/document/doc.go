// Package document is the live page resources are injected into.
//
// A Document is an HTML tree (golang.org/x/net/html) queried with goquery.
// Inject places a resolved resource into it by type:
//
//   - script: a <script> element; classic scripts run at once in the
//     document's script runtime, module scripts are deferred until RunDeferred
//   - stylesheet: a <style> element whose rules are recorded as active
//   - markup: a <div> holding the parsed fragment; scripts inside it are inert
//
// SetFavicon installs the page icon link in <head>.
package document
