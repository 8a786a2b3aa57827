// Package logging provides file-based logging with rotation, written to
// ~/.devmind/logs/server.log. In MCP server mode, logs go exclusively to
// file since stdout is reserved for the JSON-RPC transport.
package logging
