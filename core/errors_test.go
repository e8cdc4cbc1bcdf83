package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name:     "with action",
			err:      &ConfigError{Code: "X", Message: "Something is wrong", Action: "Fix it"},
			contains: []string{"Something is wrong", "Fix it"},
		},
		{
			name:     "without action",
			err:      &ConfigError{Code: "X", Message: "Message only"},
			contains: []string{"Message only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Error() = %q, want it to contain %q", got, s)
				}
			}
		})
	}
}

func TestConfigErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		code     string
		mentions string
	}{
		{"missing config", ErrMissingConfig("SD_MODEL_PATH"), ErrCodeMissingConfig, "SD_MODEL_PATH"},
		{"invalid value", ErrInvalidValue("TEXGEN_LOG_LEVEL", "loud", "bad level"), ErrCodeInvalidValue, "loud"},
		{"missing openai auth", ErrMissingAuth("openai"), ErrCodeMissingAuth, "OPENAI_API_KEY"},
		{"missing other auth", ErrMissingAuth("azure"), ErrCodeMissingAuth, "azure"},
		{"unknown backend", ErrUnknownBackend("comfy"), ErrCodeUnknownBackend, "comfy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if !strings.Contains(tt.err.Error(), tt.mentions) {
				t.Errorf("Error() = %q, want it to mention %q", tt.err.Error(), tt.mentions)
			}
		})
	}
}

func TestIsConfigError(t *testing.T) {
	wrapped := fmt.Errorf("startup: %w", ErrMissingConfig("X"))

	cfgErr, ok := IsConfigError(wrapped)
	if !ok || cfgErr.Code != ErrCodeMissingConfig {
		t.Errorf("IsConfigError(wrapped) = %v, %v", cfgErr, ok)
	}
	if GetErrorCode(wrapped) != ErrCodeMissingConfig {
		t.Errorf("GetErrorCode(wrapped) = %q", GetErrorCode(wrapped))
	}

	if _, ok := IsConfigError(errors.New("plain")); ok {
		t.Error("plain error reported as ConfigError")
	}
	if GetErrorCode(nil) != "" {
		t.Error("GetErrorCode(nil) should be empty")
	}
}
