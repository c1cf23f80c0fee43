// Package logger provides structured logging for the harness using zerolog.
//
// It supports console and JSON output, level configuration, and component
// scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("executor")
//	log.Info("task finished", logger.Fields(logger.FieldTask, name, logger.FieldStatus, "succeeded"))
package logger
