package sdruntime

import (
	"os"
	"strconv"
	"time"
)

// SDConfig holds configuration for the stable-diffusion.cpp backend.
type SDConfig struct {
	// Installation
	BinaryPath  string // sd executable, resolved through PATH
	ModelPath   string // .safetensors, .ckpt or .gguf model file
	ModelSHA256 string // Optional expected checksum of ModelPath
	Sampler     string // --sampling-method value

	// Generation defaults
	ImageSize      int
	Steps          int
	Guidance       float64
	NegativePrompt string

	// Runtime
	Timeout       time.Duration // Per generation
	MaxConcurrent int           // Concurrent sd processes
}

// Default configuration values
const (
	DefaultBinary         = "sd"
	DefaultSampler        = "euler_a"
	DefaultImageSize      = 1024
	DefaultSteps          = 30
	DefaultGuidance       = 6.8
	DefaultTimeoutSeconds = 600
	DefaultMaxConcurrent  = 1
)

// LoadSDConfig loads SD configuration from environment variables.
//
// Recognized variables: SD_BINARY, SD_MODEL_PATH, SD_MODEL_SHA256,
// SD_SAMPLER, SD_IMAGE_SIZE, SD_STEPS, SD_GUIDANCE_SCALE, SD_NEGATIVE_PROMPT,
// SD_TIMEOUT_SECONDS and SD_MAX_CONCURRENT. Invalid values fall back to the defaults.
func LoadSDConfig() *SDConfig {
	return &SDConfig{
		BinaryPath:     stringOr(os.Getenv("SD_BINARY"), DefaultBinary),
		ModelPath:      os.Getenv("SD_MODEL_PATH"),
		ModelSHA256:    os.Getenv("SD_MODEL_SHA256"),
		Sampler:        stringOr(os.Getenv("SD_SAMPLER"), DefaultSampler),
		ImageSize:      parseImageSize(os.Getenv("SD_IMAGE_SIZE")),
		Steps:          parseSteps(os.Getenv("SD_STEPS")),
		Guidance:       parseGuidance(os.Getenv("SD_GUIDANCE_SCALE")),
		NegativePrompt: stringOr(os.Getenv("SD_NEGATIVE_PROMPT"), DefaultNegativePrompt),
		Timeout:        parseTimeout(os.Getenv("SD_TIMEOUT_SECONDS")),
		MaxConcurrent:  parseMaxConcurrent(os.Getenv("SD_MAX_CONCURRENT")),
	}
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// parseImageSize accepts any size within range and divisible by 8.
func parseImageSize(s string) int {
	size, err := strconv.Atoi(s)
	if err != nil {
		return DefaultImageSize
	}
	if validateDimension("size", size) != nil {
		return DefaultImageSize
	}
	return size
}

func parseSteps(s string) int {
	steps, err := strconv.Atoi(s)
	if err != nil || steps < MinSteps || steps > MaxSteps {
		return DefaultSteps
	}
	return steps
}

func parseGuidance(s string) float64 {
	scale, err := strconv.ParseFloat(s, 64)
	if err != nil || scale < MinGuidance || scale > MaxGuidance {
		return DefaultGuidance
	}
	return scale
}

func parseTimeout(s string) time.Duration {
	seconds, err := strconv.Atoi(s)
	if err != nil || seconds <= 0 {
		return time.Duration(DefaultTimeoutSeconds) * time.Second
	}
	return time.Duration(seconds) * time.Second
}

func parseMaxConcurrent(s string) int {
	concurrent, err := strconv.Atoi(s)
	if err != nil || concurrent < 1 {
		return DefaultMaxConcurrent
	}
	return concurrent
}
