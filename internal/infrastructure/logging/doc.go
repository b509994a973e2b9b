// Package logging provides structured logging for Agro Sirius Core.
//
// It wraps log/slog so that every entry carries the service name and build
// version. JSON output is the default; text output is available for local
// development.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("plot defined", "block", "Lote 1", "sector", "Sector A")
package logging
