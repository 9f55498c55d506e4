// Package logger provides a structured logging facility based on Zap.
//
// Console output is meant for interactive use of the scanner; JSON output
// suits scheduled runs whose output is collected. Either can be mirrored to
// a rotated file through lumberjack.
//
// # Scan Awareness
//
// The WithScan helper attaches the source name and scan ID to a logger so
// that every entry emitted while reconciling a source can be correlated with
// the scan record stored on the server.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console or json
//   - File: optional rotated JSON log file
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Scan started")
//
//	l := logger.WithScan(log, source.Name, scan.ID)
//	l.Error("Upload failed", zap.Error(err))
package logger
