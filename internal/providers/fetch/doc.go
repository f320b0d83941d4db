// Package fetch resolves resource paths to bytes or text.
//
// Fetchers:
//   - FileFetcher: paths relative to an asset root on disk
//   - HTTPFetcher: resty client against a base URL, no retries
//   - Router: absolute http(s) paths go to HTTP, everything else to the fallback
//
// Every failure is a *resource.FetchError carrying the requested path.
// FetchText decodes to UTF-8, honoring a byte order mark, a declared charset,
// or the charset detected by chardet.
package fetch
