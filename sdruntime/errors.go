package sdruntime

import "errors"

// Sentinel errors for SD runtime operations.
var (
	// Installation errors
	ErrBinaryNotFound = errors.New("sdruntime: sd binary not found")
	ErrModelNotFound  = errors.New("sdruntime: model file not found")

	// Generation errors
	ErrGenerationFailed  = errors.New("sdruntime: image generation failed")
	ErrGenerationTimeout = errors.New("sdruntime: image generation timed out")

	// Input validation errors
	ErrInvalidPrompt = errors.New("sdruntime: invalid prompt")
	ErrInvalidParams = errors.New("sdruntime: invalid generation parameters")

	// ErrOutOfVRAM is returned when the accelerator ran out of memory. The
	// same request may succeed at a smaller size.
	ErrOutOfVRAM = errors.New("sdruntime: out of VRAM")

	// Session pool errors
	ErrPoolClosed     = errors.New("sdruntime: session pool is closed")
	ErrAcquireTimeout = errors.New("sdruntime: timeout acquiring session from pool")
)
