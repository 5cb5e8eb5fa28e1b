// Package logging provides structured logging for Tartan Home Core.
//
// This package wraps Go's standard log/slog package so every subsystem
// logs with the same shape: JSON in production, text in development,
// and the default fields service and version on every entry.
//
// Configuration comes from the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	houseLog := logger.With("component", "house")
//	houseLog.Info("house opened", "house", "alpha")
//
// Never log passcodes, password hashes or tokens.
package logging
