package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with sensitive value redaction on every field.
//
// It composes:
//   - FileWriter (rotating JSON log file via lumberjack)
//   - MultiCore (console and file tee)
//   - SensitiveFilter (API key redaction)
//
// Example:
//
//	logger, err := NewLogger(true, "texgen.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("texture saved", zap.String("path", "out/moss.png"))
type Logger struct {
	zap           *zap.Logger
	sugar         *zap.SugaredLogger
	isDevelopment bool
	logFilePath   string
}

// NewLogger creates a Logger writing to stderr and, when logFilePath is not
// empty, to a rotating JSON file.
//
// Development mode uses a colored console encoder at debug level. Otherwise
// the console gets JSON at info level.
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	level := zapcore.InfoLevel
	if isDevelopment {
		level = zapcore.DebugLevel
	}
	return NewLoggerWithLevel(level, isDevelopment, logFilePath, os.Stderr)
}

// NewLoggerWithLevel creates a Logger with an explicit level and console
// writer.
func NewLoggerWithLevel(level zapcore.Level, isDevelopment bool, logFilePath string, console io.Writer) (*Logger, error) {
	var file zapcore.WriteSyncer
	if logFilePath != "" {
		w, err := NewFileWriter(logFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = w
	}

	core := NewMultiCore(level, zapcore.AddSync(console), file, isDevelopment)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	l := FromZap(zapLogger)
	l.isDevelopment = isDevelopment
	l.logFilePath = logFilePath
	return l, nil
}

// FromZap wraps an existing zap logger, for example one built on a
// zaptest/observer core.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{zap: z, sugar: z.Sugar()}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

// Sync flushes buffered entries. Call it before exiting.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs at DebugLevel.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, redactFields(fields)...)
}

// Info logs at InfoLevel.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, redactFields(fields)...)
}

// Warn logs at WarnLevel.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, redactFields(fields)...)
}

// Error logs at ErrorLevel.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, redactFields(fields)...)
}

// Debugw logs at DebugLevel with loosely typed key-value pairs.
func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, redactKeysAndValues(keysAndValues)...)
}

// Infow logs at InfoLevel with loosely typed key-value pairs.
//
// Example:
//
//	logger.Infow("stage finished", "stage", "poisson", "ms", 41)
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, redactKeysAndValues(keysAndValues)...)
}

// Warnw logs at WarnLevel with loosely typed key-value pairs.
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, redactKeysAndValues(keysAndValues)...)
}

// Errorw logs at ErrorLevel with loosely typed key-value pairs.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, redactKeysAndValues(keysAndValues)...)
}

// With returns a child logger that adds fields to every entry.
//
// Example:
//
//	jobLogger := logger.With(zap.String("job_id", id))
func (l *Logger) With(fields ...zap.Field) *Logger {
	return l.derive(l.zap.With(redactFields(fields)...))
}

// Named returns a child logger with name appended to the logger name.
func (l *Logger) Named(name string) *Logger {
	return l.derive(l.zap.Named(name))
}

func (l *Logger) derive(z *zap.Logger) *Logger {
	return &Logger{
		zap:           z,
		sugar:         z.Sugar(),
		isDevelopment: l.isDevelopment,
		logFilePath:   l.logFilePath,
	}
}

// Zap returns the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// IsDevelopment reports whether the logger was built in development mode.
func (l *Logger) IsDevelopment() bool {
	return l.isDevelopment
}

// LogFilePath returns the log file path, empty when logging to the console
// only.
func (l *Logger) LogFilePath() string {
	return l.logFilePath
}

func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}

	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		result[i] = redactField(field)
	}
	return result
}

func redactField(field zap.Field) zap.Field {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder)
	}

	if field.Type == zapcore.StringType {
		if redacted := RedactSensitiveData(field.String); redacted != field.String {
			return zap.String(field.Key, redacted)
		}
	}

	return field
}

// redactKeysAndValues filters sugared key-value pairs. Even indices are keys.
func redactKeysAndValues(keysAndValues []interface{}) []interface{} {
	if len(keysAndValues) == 0 {
		return keysAndValues
	}

	result := make([]interface{}, len(keysAndValues))
	copy(result, keysAndValues)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}
		if IsSensitiveField(key) {
			result[i+1] = RedactedPlaceholder
			continue
		}
		if value, ok := result[i+1].(string); ok {
			result[i+1] = RedactSensitiveData(value)
		}
	}

	return result
}
