package sdruntime

import (
	"context"
	"fmt"
	"time"
)

// Generator runs text-to-image generations through a bounded Pool of
// sessions.
//
// It composes:
//   - Pool: bounds concurrent sd processes
//   - ValidateParams: parameter validation
//   - RandomSeed: seed resolution
//   - Session.Run: the sd process itself
type Generator struct {
	pool    *Pool
	timeout time.Duration
}

// NewGenerator creates a Generator from cfg. The model checksum, when
// configured, is verified once here.
func NewGenerator(cfg *SDConfig) (*Generator, error) {
	if err := VerifyModelChecksum(cfg.ModelPath, cfg.ModelSHA256); err != nil {
		return nil, err
	}

	open := func() (*Session, error) {
		return OpenSession(cfg.BinaryPath, cfg.ModelPath, cfg.Sampler)
	}

	// Sessions are opened lazily; open one now so a missing binary or model
	// fails at startup rather than on the first request.
	probe, err := open()
	if err != nil {
		return nil, err
	}
	probe.Close()

	pool, err := NewPool(cfg.MaxConcurrent, open)
	if err != nil {
		return nil, fmt.Errorf("failed to create session pool: %w", err)
	}

	return &Generator{pool: pool, timeout: cfg.Timeout}, nil
}

// Generate creates an image from params.
//
// A negative Seed is replaced with a random one, reported in the result.
// The configured timeout applies to the whole call, including the wait for
// a free session.
//
// Error cases:
//   - ErrInvalidParams, ErrInvalidPrompt: params fail validation
//   - ErrAcquireTimeout: ctx ended before a session was free
//   - ErrPoolClosed: generator has been closed
//   - ErrOutOfVRAM: accelerator memory exhausted
//   - ErrGenerationTimeout, ErrGenerationFailed
func (g *Generator) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	if params.Seed < 0 {
		params.Seed = RandomSeed()
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	session, err := g.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer g.pool.Release(session)

	return session.Run(ctx, params)
}

// Close shuts down the generator. After Close, Generate returns
// ErrPoolClosed. Close is safe to call multiple times.
func (g *Generator) Close() error {
	return g.pool.Close()
}

// PoolSize returns the maximum number of concurrent generations.
func (g *Generator) PoolSize() int {
	return g.pool.MaxSize()
}
