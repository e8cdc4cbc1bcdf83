package imagegen

import (
	"context"
	"errors"
	"fmt"

	"texgen/sdruntime"
)

// sdBackend is the part of *sdruntime.Generator used here.
type sdBackend interface {
	Generate(ctx context.Context, params sdruntime.GenerateParams) (*sdruntime.GenerateResult, error)
}

// SDGenerator generates images with a local Stable Diffusion model.
//
// Zero Steps or Guidance in a request fall back to the sdruntime defaults.
// Out-of-memory failures are reported as ErrResourceExhausted.
type SDGenerator struct {
	backend sdBackend
}

// NewSDGenerator wraps an sdruntime generator.
func NewSDGenerator(gen *sdruntime.Generator) *SDGenerator {
	return &SDGenerator{backend: gen}
}

// Generate implements Generator.
func (g *SDGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := sdruntime.GenerateParams{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
		Steps:          req.Steps,
		Guidance:       req.Guidance,
		Seed:           -1,
	}
	if params.Steps == 0 {
		params.Steps = sdruntime.DefaultSteps
	}
	if params.Guidance == 0 {
		params.Guidance = sdruntime.DefaultGuidance
	}
	if req.Seed != nil {
		params.Seed = *req.Seed
	}

	res, err := g.backend.Generate(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, sdruntime.ErrOutOfVRAM):
			return nil, fmt.Errorf("%w: %v", ErrResourceExhausted, err)
		case errors.Is(err, sdruntime.ErrInvalidParams), errors.Is(err, sdruntime.ErrInvalidPrompt):
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, fmt.Errorf("stable diffusion generation failed: %w", err)
	}
	if res == nil || res.Image == nil {
		return nil, ErrEmptyResponse
	}

	seed := res.Seed
	return &Result{Image: res.Image, Seed: &seed}, nil
}
