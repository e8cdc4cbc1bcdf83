// Package imagegen defines the text-to-image collaborator used by the texture
// pipeline and its backends.
//
// Backends:
//   - SDGenerator: local Stable Diffusion via sdruntime
//   - OpenAIGenerator: OpenAI, Azure OpenAI or a compatible local server
//
// Every backend returns a decoded *raster.Image. A backend that runs out of
// accelerator memory reports ErrResourceExhausted so the caller can decide
// whether to retry at a smaller size.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"texgen/raster"
)

// Errors returned by generators.
var (
	// ErrResourceExhausted means the backend ran out of memory for the
	// requested size. Retrying smaller may succeed.
	ErrResourceExhausted = errors.New("imagegen: resource exhausted")

	// ErrInvalidRequest means the request failed validation.
	ErrInvalidRequest = errors.New("imagegen: invalid request")

	// ErrEmptyResponse means the backend answered without an image.
	ErrEmptyResponse = errors.New("imagegen: no image in response")
)

// Generator produces an image from a text prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// Request describes a single generation.
type Request struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	Guidance       float64
	Seed           *int64 // nil lets the backend pick
}

// Result is a generated image plus the seed the backend reports having used.
// Seed is nil when the backend does not expose one.
type Result struct {
	Image *raster.Image
	Seed  *int64
}

// Validate checks the fields every backend relies on.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrInvalidRequest)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidRequest, r.Width, r.Height)
	}
	if r.Steps < 0 {
		return fmt.Errorf("%w: steps %d cannot be negative", ErrInvalidRequest, r.Steps)
	}
	if r.Guidance < 0 {
		return fmt.Errorf("%w: guidance %g cannot be negative", ErrInvalidRequest, r.Guidance)
	}
	return nil
}

// Sized returns a copy of r with a square size.
func (r Request) Sized(size int) Request {
	r.Width, r.Height = size, size
	return r
}
