// Package logging configures structured slog logging for sitesearch.
// Logs go to stderr by default. With a log file configured (or --debug),
// JSON lines are also written to a size-rotated file under
// ~/.sitesearch/logs/ that `sitesearch logs` can tail and follow.
//
// The MCP server logs to the file only, since its stdout carries the protocol.
package logging
