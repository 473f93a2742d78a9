package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold flags statements that should have hit an index.
const slowQueryThreshold = 200 * time.Millisecond

// QueryLogger routes gorm's logging through the request-scoped zap logger,
// so every statement carries the same correlation fields as the handler
// that issued it. Statements are summarized to verb and table; bound values
// never reach the log.
type QueryLogger struct {
	level gormlogger.LogLevel
}

func NewQueryLogger() *QueryLogger {
	return &QueryLogger{level: gormlogger.Warn}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		FromContext(ctx).Info(msg, messageFields(data)...)
	}
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		FromContext(ctx).Warn(msg, messageFields(data)...)
	}
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		FromContext(ctx).Error(msg, messageFields(data)...)
	}
}

// Trace logs completed statements. Record-not-found is a routine lookup
// outcome, not a failure; slow statements warn even when they succeed.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)

	switch {
	case failed && l.level >= gormlogger.Error:
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
	case l.level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("component", "db"),
		zap.String("statement", summarizeSQL(sql)),
		zap.Duration("elapsed", elapsed),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}

	log := FromContext(ctx)
	switch {
	case failed:
		log.Error("db statement failed", append(fields, zap.Error(err))...)
	case elapsed > slowQueryThreshold:
		log.Warn("slow db statement", fields...)
	default:
		log.Debug("db statement", fields...)
	}
}

func messageFields(data []interface{}) []zap.Field {
	fields := []zap.Field{zap.String("component", "db")}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	return fields
}

// summarizeSQL reduces a statement to its verb and target table.
func summarizeSQL(sql string) string {
	tokens := strings.Fields(sql)
	if len(tokens) == 0 {
		return "unknown"
	}

	verb := strings.ToUpper(strings.Trim(tokens[0], "();"))
	for i, token := range tokens {
		switch strings.ToUpper(token) {
		case "FROM", "INTO", "UPDATE", "TABLE":
			if i+1 < len(tokens) {
				return verb + " " + strings.Trim(tokens[i+1], `"();`)
			}
		}
	}
	return verb
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
