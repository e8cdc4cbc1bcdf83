package core

import (
	"context"
	"errors"
)

// Process exit codes.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
	ExitCodeConfig  = 78 // EX_CONFIG from sysexits.h
	ExitCodeSIGINT  = 130
	ExitCodeSIGTERM = 143
)

// ExitCodeName returns a short description of code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeUsage:
		return "usage error"
	case ExitCodeConfig:
		return "configuration error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	case ExitCodeSIGTERM:
		return "terminated (SIGTERM)"
	default:
		return "unknown"
	}
}

// ExitCodeFor maps a command error to an exit code. A canceled context is
// treated as an interrupt.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, context.Canceled):
		return ExitCodeSIGINT
	}
	if _, ok := IsConfigError(err); ok {
		return ExitCodeConfig
	}
	return ExitCodeError
}

// IsSignalExit reports whether code means the process was stopped by a
// signal.
func IsSignalExit(code int) bool {
	return code == ExitCodeSIGINT || code == ExitCodeSIGTERM
}
