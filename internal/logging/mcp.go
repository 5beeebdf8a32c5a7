package logging

import (
	"log/slog"
)

// SetupMCPMode initializes logging for the stdio MCP server.
// stdout carries JSON-RPC exclusively, so logs go to the file only;
// an empty path falls back to DefaultLogPath.
func SetupMCPMode(level, path string) (func(), error) {
	if path == "" {
		path = DefaultLogPath()
	}
	cfg := Config{
		Level:         level,
		FilePath:      path,
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)

	slog.Debug("mcp_logging_initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))

	return cleanup, nil
}
