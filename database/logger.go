package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/harvester/logger"
)

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Silent
	}
}

// storeLogger sends GORM output for one store to the harvester logger.
// Failed queries are logged at debug: the harvester turns them into an
// unreadable status and reports them itself.
type storeLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newStoreLogger(log *logger.Logger, path string, slow time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	return &storeLogger{
		log:   log.WithComponent("store").WithFields(logger.Fields(logger.FieldPath, path)),
		level: level,
		slow:  slow,
	}
}

func (l *storeLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *storeLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Debug(fmt.Sprintf(msg, data...))
	}
}

func (l *storeLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *storeLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Debug(fmt.Sprintf(msg, data...))
	}
}

func (l *storeLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	query, rows := fc()
	fields := logger.MergeWithDuration(logger.Fields("query", query, logger.FieldRecords, rows), elapsed)

	switch {
	case err != nil && l.level >= gormlogger.Error:
		l.log.Debug("store query failed", logger.MergeWithError(fields, err))
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		l.log.Warn("slow store read", fields)
	case l.level >= gormlogger.Info:
		l.log.Debug("store query", fields)
	}
}
