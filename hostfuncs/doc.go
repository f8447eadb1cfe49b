// Package hostfuncs provides pure Go implementations of the host capabilities
// behind the bridge imports: fetch, decompression, file and blob handle
// tables, object URLs and the markup sanitizer.
// These implementations have NO WASM runtime dependencies.
package hostfuncs
