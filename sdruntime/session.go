package sdruntime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"texgen/raster"
)

// sessionCounter generates unique session IDs.
var sessionCounter uint64

// Session is a resolved sd executable bound to one model file. Each Run
// starts a new sd process; a Session itself holds no OS resources and is
// closed only to mark it unusable.
type Session struct {
	id        uint64
	binary    string
	modelPath string
	sampler   string
	valid     atomic.Bool
}

// OpenSession resolves binary through PATH and checks that the model file
// exists.
func OpenSession(binary, modelPath, sampler string) (*Session, error) {
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBinaryNotFound, binary, err)
	}

	if modelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModelNotFound)
	}
	if _, err := os.Stat(modelPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("access model file: %w", err)
	}

	if sampler == "" {
		sampler = DefaultSampler
	}

	s := &Session{
		id:        atomic.AddUint64(&sessionCounter, 1),
		binary:    resolved,
		modelPath: modelPath,
		sampler:   sampler,
	}
	s.valid.Store(true)
	return s, nil
}

// IsValid returns whether the session can still run generations.
func (s *Session) IsValid() bool {
	return s != nil && s.valid.Load()
}

// ID returns the process-unique session number.
func (s *Session) ID() uint64 {
	return s.id
}

// ModelPath returns the model file the session generates with.
func (s *Session) ModelPath() string {
	if s == nil {
		return ""
	}
	return s.modelPath
}

// Close marks the session unusable. Closing twice is a no-op.
func (s *Session) Close() {
	if s != nil {
		s.valid.Store(false)
	}
}

// Args returns the sd command line for params writing to out.
func (s *Session) Args(params GenerateParams, out string) []string {
	args := []string{
		"-m", s.modelPath,
		"-p", params.Prompt,
		"-W", strconv.Itoa(params.Width),
		"-H", strconv.Itoa(params.Height),
		"--steps", strconv.Itoa(params.Steps),
		"--cfg-scale", strconv.FormatFloat(params.Guidance, 'f', -1, 64),
		"-s", strconv.FormatInt(params.Seed, 10),
		"--sampling-method", s.sampler,
		"-o", out,
	}
	if params.NegativePrompt != "" {
		args = append(args, "-n", params.NegativePrompt)
	}
	return args
}

// Run generates one image. params must already be validated and carry a
// concrete seed.
//
// Error cases:
//   - ErrOutOfVRAM: sd reported an allocation failure on the accelerator
//   - ErrGenerationTimeout: ctx expired while sd was running
//   - ErrGenerationFailed: any other failure, including an unreadable output
func (s *Session) Run(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: session is closed", ErrGenerationFailed)
	}

	dir, err := os.MkdirTemp("", "texgen-sd-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create work dir: %v", ErrGenerationFailed, err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "output.png")
	var output bytes.Buffer

	cmd := exec.CommandContext(ctx, s.binary, s.Args(params, out)...)
	cmd.Stdout = &output
	cmd.Stderr = &output
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return nil, classifyRunError(ctx, err, output.String())
	}

	img, err := raster.Load(out)
	if err != nil {
		return nil, fmt.Errorf("%w: read output: %v", ErrGenerationFailed, err)
	}

	return &GenerateResult{
		Image:    img,
		Width:    img.Width,
		Height:   img.Height,
		Seed:     params.Seed,
		Duration: time.Since(start),
	}, nil
}

// oomMarkers are lowercase fragments sd and ggml print when an accelerator
// allocation fails.
var oomMarkers = []string{
	"out of memory",
	"failed to allocate",
	"cudamalloc failed",
	"vk::outofdevicememoryerror",
}

func classifyRunError(ctx context.Context, err error, output string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	lower := strings.ToLower(output)
	for _, m := range oomMarkers {
		if strings.Contains(lower, m) {
			return fmt.Errorf("%w: %s", ErrOutOfVRAM, lastLine(output))
		}
	}

	return fmt.Errorf("%w: %v: %s", ErrGenerationFailed, err, lastLine(output))
}

// lastLine returns the last non-empty line of s, which is where sd prints
// its fatal error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
