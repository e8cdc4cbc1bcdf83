package core

import (
	"testing"
	"time"
)

// clearEnv blanks every variable LoadConfig reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TEXGEN_BACKEND", "TEXGEN_OUTPUT_DIR", "TEXGEN_HISTORY_DB", "TEXGEN_LOG_FILE",
		"TEXGEN_LOG_LEVEL", "DEV_MODE", "TEXGEN_JOB_TIMEOUT", "OPENAI_API_KEY",
		"AZURE_OPENAI_KEY", "OPENAI_BASE_URL", "OPENAI_IMAGE_MODEL", "SD_MODEL_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig()
	if cfg.Backend != BackendSD || cfg.OutputDir != DefaultOutputDir || cfg.HistoryDB != DefaultHistoryDB {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.JobTimeout != DefaultJobTimeout || cfg.DevMode || cfg.LogFile != "" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEXGEN_BACKEND", "OpenAI")
	t.Setenv("TEXGEN_HISTORY_DB", "off")
	t.Setenv("TEXGEN_JOB_TIMEOUT", "90s")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("AZURE_OPENAI_KEY", "azure-key")
	t.Setenv("OPENAI_BASE_URL", "https://res.openai.azure.com")

	cfg := LoadConfig()
	if cfg.Backend != BackendOpenAI {
		t.Errorf("Backend = %q, want openai", cfg.Backend)
	}
	if cfg.HistoryDB != "" {
		t.Errorf("HistoryDB = %q, want disabled", cfg.HistoryDB)
	}
	if cfg.JobTimeout != 90*time.Second || !cfg.DevMode {
		t.Errorf("JobTimeout = %v, DevMode = %v", cfg.JobTimeout, cfg.DevMode)
	}
	if cfg.OpenAIAPIKey != "azure-key" {
		t.Errorf("OpenAIAPIKey = %q, want the Azure key fallback", cfg.OpenAIAPIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantCode string
	}{
		{"sd ok", Config{Backend: BackendSD, SDModelPath: "m.safetensors"}, ""},
		{"sd missing model", Config{Backend: BackendSD}, ErrCodeMissingConfig},
		{"openai key", Config{Backend: BackendOpenAI, OpenAIAPIKey: "k"}, ""},
		{"openai local url", Config{Backend: BackendOpenAI, OpenAIBaseURL: "http://localhost:7860/v1"}, ""},
		{"openai nothing", Config{Backend: BackendOpenAI}, ErrCodeMissingAuth},
		{"unknown backend", Config{Backend: "comfy"}, ErrCodeUnknownBackend},
		{"bad log level", Config{Backend: BackendSD, SDModelPath: "m", LogLevel: "loud"}, ErrCodeInvalidValue},
		{"negative timeout", Config{Backend: BackendSD, SDModelPath: "m", JobTimeout: -time.Second}, ErrCodeInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if got := GetErrorCode(err); got != tt.wantCode {
				t.Errorf("Validate() code = %q (%v), want %q", got, err, tt.wantCode)
			}
		})
	}
}
