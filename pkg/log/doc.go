// Package log provides structured event logging for the pixeld
// coordination server.
//
// This package defines the Logger interface and Event type for capturing
// coordination events (registrations, keepalives, process lifecycle,
// dropped packages, subscription changes). It is separate from operational
// logging (log/slog) - event capture provides a complete machine-readable
// trace for offline debugging of a running server.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	eventLogger := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a binary file
//	eventLogger, _ := log.NewFileLogger("/var/log/pixeld/events.plog")
//
//	// Both: use MultiLogger
//	eventLogger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding with a .plog extension. The pixel-log CLI
// tool provides viewing, filtering, and stats over a captured file.
package log
