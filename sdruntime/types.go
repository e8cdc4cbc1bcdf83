package sdruntime

import (
	"fmt"
	"time"

	"texgen/raster"
)

// GenerateParams holds parameters for a single text-to-image run.
type GenerateParams struct {
	Prompt         string  // Required: text description of the texture
	NegativePrompt string  // Optional: what to avoid in the image
	Width          int     // Image width in pixels (128-2048, divisible by 8)
	Height         int     // Image height in pixels (128-2048, divisible by 8)
	Steps          int     // Number of sampling steps (1-150)
	Guidance       float64 // Classifier-free guidance scale (1.0-30.0)
	Seed           int64   // Random seed for reproducibility (-1 for random)
}

// GenerateResult is a decoded image plus the parameters actually used.
type GenerateResult struct {
	Image    *raster.Image
	Width    int
	Height   int
	Seed     int64 // Seed used, resolved when -1 was requested
	Duration time.Duration
}

// Parameter validation constants
const (
	MinImageSize      = 128
	MaxImageSize      = 2048
	ImageSizeMultiple = 8 // Image dimensions must be divisible by this

	MinSteps = 1
	MaxSteps = 150

	MinGuidance = 1.0
	MaxGuidance = 30.0

	MaxPromptLength = 1000
)

// ValidateParams validates generation parameters and returns an error if invalid.
func ValidateParams(p GenerateParams) error {
	if err := ValidatePrompt(p.Prompt); err != nil {
		return err
	}

	if err := validateDimension("width", p.Width); err != nil {
		return err
	}
	if err := validateDimension("height", p.Height); err != nil {
		return err
	}

	if p.Steps < MinSteps || p.Steps > MaxSteps {
		return fmt.Errorf("%w: steps %d must be between %d and %d",
			ErrInvalidParams, p.Steps, MinSteps, MaxSteps)
	}

	if p.Guidance < MinGuidance || p.Guidance > MaxGuidance {
		return fmt.Errorf("%w: guidance %.2f must be between %.1f and %.1f",
			ErrInvalidParams, p.Guidance, MinGuidance, MaxGuidance)
	}

	if len(p.NegativePrompt) > MaxPromptLength {
		return fmt.Errorf("%w: negative prompt length %d exceeds maximum %d",
			ErrInvalidParams, len(p.NegativePrompt), MaxPromptLength)
	}

	return nil
}

func validateDimension(name string, v int) error {
	if v < MinImageSize || v > MaxImageSize {
		return fmt.Errorf("%w: %s %d must be between %d and %d",
			ErrInvalidParams, name, v, MinImageSize, MaxImageSize)
	}
	if v%ImageSizeMultiple != 0 {
		return fmt.Errorf("%w: %s %d must be divisible by %d",
			ErrInvalidParams, name, v, ImageSizeMultiple)
	}
	return nil
}

// DefaultParams returns the defaults of the generate command. The caller
// should at minimum set Prompt.
//
// Default values:
//   - Width, Height: 1024
//   - Steps: 30
//   - Guidance: 6.8
//   - NegativePrompt: DefaultNegativePrompt
//   - Seed: -1 (random)
func DefaultParams() GenerateParams {
	return GenerateParams{
		NegativePrompt: DefaultNegativePrompt,
		Width:          DefaultImageSize,
		Height:         DefaultImageSize,
		Steps:          DefaultSteps,
		Guidance:       DefaultGuidance,
		Seed:           -1,
	}
}
