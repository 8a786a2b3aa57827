// Package watch defines the thin contract by which an external
// filesystem indexer pushes codebase file metadata into the memory
// store. It does not index a codebase itself — it only watches a
// project tree for changes and hands paths to a Sink, which the
// `codebase` tool's implementation uses to keep FileIndex rows current.
package watch
