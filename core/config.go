package core

import (
	"os"
	"strings"
	"time"

	"texgen/logging"
)

// Generation backends.
const (
	BackendSD     = "sd"
	BackendOpenAI = "openai"
)

// Defaults for values not set in the environment.
const (
	DefaultBackend    = BackendSD
	DefaultOutputDir  = "textures"
	DefaultHistoryDB  = "texgen.db"
	DefaultJobTimeout = 15 * time.Minute
)

// Config holds application configuration read from the environment.
//
// Backend-specific settings for Stable Diffusion beyond the model path are
// read by sdruntime.LoadSDConfig.
type Config struct {
	Backend    string        // TEXGEN_BACKEND: "sd" or "openai"
	OutputDir  string        // TEXGEN_OUTPUT_DIR: default directory for textures
	HistoryDB  string        // TEXGEN_HISTORY_DB: SQLite path, empty disables history
	LogFile    string        // TEXGEN_LOG_FILE: rotating JSON log, empty for console only
	LogLevel   string        // TEXGEN_LOG_LEVEL: debug, info, warn, error
	DevMode    bool          // DEV_MODE: colored console logs at debug level
	JobTimeout time.Duration // TEXGEN_JOB_TIMEOUT: limit for one generate job

	OpenAIAPIKey     string // OPENAI_API_KEY
	OpenAIBaseURL    string // OPENAI_BASE_URL
	OpenAIImageModel string // OPENAI_IMAGE_MODEL

	SDModelPath string // SD_MODEL_PATH
}

// LoadConfig reads the configuration from the environment. Call
// godotenv.Load first to pick up a .env file. The result is not validated.
func LoadConfig() *Config {
	historyDB := HistoryPath(GetEnvOrDefault("TEXGEN_HISTORY_DB", DefaultHistoryDB))

	openAIKey := os.Getenv("OPENAI_API_KEY")
	if openAIKey == "" {
		openAIKey = os.Getenv("AZURE_OPENAI_KEY")
	}

	return &Config{
		Backend:    strings.ToLower(GetEnvOrDefault("TEXGEN_BACKEND", DefaultBackend)),
		OutputDir:  GetEnvOrDefault("TEXGEN_OUTPUT_DIR", DefaultOutputDir),
		HistoryDB:  historyDB,
		LogFile:    GetEnvOrDefault("TEXGEN_LOG_FILE", ""),
		LogLevel:   GetEnvOrDefault("TEXGEN_LOG_LEVEL", ""),
		DevMode:    ParseBoolEnv("DEV_MODE", false),
		JobTimeout: ParseDurationEnv("TEXGEN_JOB_TIMEOUT", DefaultJobTimeout),

		OpenAIAPIKey:     strings.TrimSpace(openAIKey),
		OpenAIBaseURL:    GetEnvOrDefault("OPENAI_BASE_URL", ""),
		OpenAIImageModel: GetEnvOrDefault("OPENAI_IMAGE_MODEL", ""),

		SDModelPath: GetEnvOrDefault("SD_MODEL_PATH", ""),
	}
}

// HistoryPath returns path, or "" when path is "off", "none" or "false".
func HistoryPath(path string) string {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "off", "none", "false":
		return ""
	}
	return path
}

// Validate checks the settings needed by the selected backend. Errors are
// *ConfigError values.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return ErrInvalidValue("TEXGEN_LOG_LEVEL", c.LogLevel, "use debug, info, warn or error")
	}
	if c.JobTimeout < 0 {
		return ErrInvalidValue("TEXGEN_JOB_TIMEOUT", c.JobTimeout, "must not be negative")
	}

	switch c.Backend {
	case BackendSD:
		if c.SDModelPath == "" {
			return ErrMissingConfig("SD_MODEL_PATH")
		}
	case BackendOpenAI:
		// A custom base URL may be a local server that needs no key.
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return ErrMissingAuth("openai")
		}
	default:
		return ErrUnknownBackend(c.Backend)
	}
	return nil
}
