// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON lines for machine parsing
//   - Development: colored console output
//
// Logs go to stderr by default. The CLI writes resolved file lists to
// stdout, and keeping the streams apart lets them be piped into jq.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	log := logger.Component("resolver")
//	log.Info("resolver returned no files", zap.String("target", target))
package logging
