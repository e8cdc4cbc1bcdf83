package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore tees a console core and, when file is not nil, a JSON file
// core at the same level.
//
// The console uses the colored console encoder in development mode and JSON
// otherwise. The file is always JSON so it can be parsed later.
func NewMultiCore(level zapcore.Level, console, file zapcore.WriteSyncer, isDev bool) zapcore.Core {
	var consoleEncoder zapcore.Encoder
	if isDev {
		consoleEncoder = zapcore.NewConsoleEncoder(NewConsoleEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}

	consoleCore := zapcore.NewCore(consoleEncoder, console, level)
	if file == nil {
		return consoleCore
	}

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(NewEncoderConfig()), file, level)
	return zapcore.NewTee(consoleCore, fileCore)
}
