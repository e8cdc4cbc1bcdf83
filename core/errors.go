package core

import (
	"errors"
	"fmt"
)

// ConfigError is a configuration problem with an instruction for fixing it.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // What the user should change
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes.
const (
	ErrCodeMissingConfig  = "MISSING_CONFIG"
	ErrCodeInvalidValue   = "INVALID_VALUE"
	ErrCodeMissingAuth    = "MISSING_AUTH"
	ErrCodeUnknownBackend = "UNKNOWN_BACKEND"
)

// ErrMissingConfig reports a required variable that is not set.
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in the environment or your .env file", varName),
	}
}

// ErrInvalidValue reports a variable whose value is out of range.
func ErrInvalidValue(varName string, value any, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidValue,
		Message: fmt.Sprintf("Invalid %s %v: %s", varName, value, reason),
		Action:  fmt.Sprintf("Fix %s in the environment or your .env file", varName),
	}
}

// ErrMissingAuth reports a backend that needs credentials.
func ErrMissingAuth(service string) *ConfigError {
	action := fmt.Sprintf("Set the API key for %s", service)
	if service == "openai" {
		action = "Set OPENAI_API_KEY, or point OPENAI_BASE_URL at a local server"
	}
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: fmt.Sprintf("Missing credentials for %s", service),
		Action:  action,
	}
}

// ErrUnknownBackend reports an unsupported generation backend name.
func ErrUnknownBackend(name string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownBackend,
		Message: fmt.Sprintf("Unknown generation backend %q", name),
		Action:  fmt.Sprintf("Set TEXGEN_BACKEND to %q or %q", BackendSD, BackendOpenAI),
	}
}

// IsConfigError reports whether err wraps a *ConfigError and returns it.
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode returns the ConfigError code in err, or "".
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
