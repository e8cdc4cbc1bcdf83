package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"texgen/albedo"
	"texgen/db"
	"texgen/imagegen"
	"texgen/logging"
	"texgen/raster"
	"texgen/sdruntime"
)

const (
	// DefaultSize is the square generation size.
	DefaultSize = 1024

	// FallbackSize is the size of the single retry after the backend runs
	// out of memory. Jobs at or below it are not retried.
	FallbackSize = 768

	// DefaultOutput is where a generated texture is saved when the job
	// names no path.
	DefaultOutput = "textures/generated.png"
)

// ErrInvalidJob is returned when a job fails validation. Nothing is
// generated or recorded for it.
var ErrInvalidJob = errors.New("pipeline: invalid job")

// HistoryStore records finished and failed jobs. *db.Repository satisfies it.
type HistoryStore interface {
	Insert(ctx context.Context, rec db.TextureRecord) (int64, error)
}

// DriverConfig holds the optional parts of a Driver.
type DriverConfig struct {
	// Backend and Model label records and logs.
	Backend string
	Model   string

	// Logger receives job logs (default: no-op).
	Logger *logging.Logger

	// History stores a record per job. Nil disables history.
	History HistoryStore
}

// Job describes one prompt-to-texture run.
type Job struct {
	Prompt         string
	NegativePrompt string
	Style          string // Appended to Prompt unless StyleOff
	StyleOff       bool
	Size           int // Square size in pixels (default: DefaultSize)
	Steps          int // 0 uses the backend default
	Guidance       float64
	Seed           *int64
	Out            string // PNG path (default: DefaultOutput)
	Options        Options
}

// Validate checks the job before any work is done.
func (j Job) Validate() error {
	if j.Size < 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidJob, j.Size)
	}
	if j.Steps < 0 {
		return fmt.Errorf("%w: steps cannot be negative, got %d", ErrInvalidJob, j.Steps)
	}
	if j.Guidance < 0 {
		return fmt.Errorf("%w: guidance cannot be negative, got %g", ErrInvalidJob, j.Guidance)
	}
	return j.Options.Validate()
}

// Result describes a saved texture.
type Result struct {
	JobID          string
	Path           string
	SidecarPath    string
	Prompt         string // As sent to the backend
	NegativePrompt string
	Width          int // Size of the saved texture
	Height         int
	Seed           *int64
	Retried        bool
	Stages         []string
	Palette        []string
	Duration       time.Duration
}

// Driver runs texture jobs: prompt preparation, generation with a single
// out-of-memory retry, post-processing, persistence and history.
//
// Thread Safety: Driver is safe for concurrent use if its Generator and
// HistoryStore are.
type Driver struct {
	gen     imagegen.Generator
	backend string
	model   string
	history HistoryStore
	logger  *logging.Logger
}

// NewDriver creates a driver around gen. gen may be nil for a driver that
// only processes existing images.
func NewDriver(gen imagegen.Generator, cfg DriverConfig) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Driver{
		gen:     gen,
		backend: cfg.Backend,
		model:   cfg.Model,
		history: cfg.History,
		logger:  logger.Named("pipeline"),
	}
}

// Run generates a texture from job, post-processes it and saves it with
// its sidecar.
//
// If the backend reports imagegen.ErrResourceExhausted and the job size is
// above FallbackSize, generation is retried once at FallbackSize. Every
// other generation error aborts the job.
func (d *Driver) Run(ctx context.Context, job Job) (*Result, error) {
	start := time.Now()
	if job.Size == 0 {
		job.Size = DefaultSize
	}
	if job.Out == "" {
		job.Out = DefaultOutput
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if d.gen == nil {
		return nil, fmt.Errorf("%w: no generator configured", ErrInvalidJob)
	}

	jobID := uuid.NewString()
	logger := d.logger.With(zap.String("job_id", jobID))

	prompt := sdruntime.TruncateTokens(
		sdruntime.BuildPrompt(job.Prompt, job.Style, job.StyleOff), sdruntime.MaxPromptTokens)
	negative := sdruntime.TruncateTokens(job.NegativePrompt, sdruntime.MaxPromptTokens)

	rec := db.TextureRecord{
		JobID:          jobID,
		Kind:           db.KindGenerate,
		Prompt:         prompt,
		NegativePrompt: negative,
		Backend:        d.backend,
		Model:          d.model,
		Width:          job.Size,
		Height:         job.Size,
		Steps:          job.Steps,
		Guidance:       job.Guidance,
		Seed:           job.Seed,
		OutputPath:     job.Out,
	}

	req := imagegen.Request{
		Prompt:         prompt,
		NegativePrompt: negative,
		Steps:          job.Steps,
		Guidance:       job.Guidance,
		Seed:           job.Seed,
	}.Sized(job.Size)

	logger.Debug("generating", zap.String("prompt", prompt), zap.Int("size", job.Size))

	genStart := time.Now()
	res, retried, err := d.generate(ctx, logger, req)
	genTime := time.Since(genStart)
	rec.Retried = retried
	if err != nil {
		return nil, d.fail(ctx, logger, &rec, start, err)
	}
	if res.Seed != nil {
		rec.Seed = res.Seed
	}

	img := res.Image
	want := job.Size
	if retried {
		want = FallbackSize
	}
	if img.Width != want || img.Height != want {
		logger.Info("backend returned a different size",
			zap.Int("requested", want), zap.Int("width", img.Width), zap.Int("height", img.Height))
	}

	return d.finish(ctx, logger, rec, img, job.Options, start, genTime)
}

// Process post-processes the image at in and saves it to out. An empty out
// derives the path from in (see ProcessOutputPath).
func (d *Driver) Process(ctx context.Context, in, out string, opts Options) (*Result, error) {
	start := time.Now()
	if strings.TrimSpace(in) == "" {
		return nil, fmt.Errorf("%w: input path cannot be empty", ErrInvalidJob)
	}
	if out == "" {
		out = ProcessOutputPath(in)
	}
	if filepath.Clean(in) == filepath.Clean(out) {
		return nil, fmt.Errorf("%w: output would overwrite input %s", ErrInvalidJob, in)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	jobID := uuid.NewString()
	logger := d.logger.With(zap.String("job_id", jobID))

	rec := db.TextureRecord{
		JobID:      jobID,
		Kind:       db.KindProcess,
		InputPath:  in,
		OutputPath: out,
	}

	if err := ctx.Err(); err != nil {
		return nil, d.fail(ctx, logger, &rec, start, err)
	}
	img, err := raster.Load(in)
	if err != nil {
		return nil, d.fail(ctx, logger, &rec, start, err)
	}
	rec.Width, rec.Height = img.Width, img.Height

	return d.finish(ctx, logger, rec, img, opts, start, 0)
}

// ProcessOutputPath returns the default output of Process for in:
// "dir/name.png" becomes "dir/name_tile.png".
func ProcessOutputPath(in string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + "_tile.png"
}

func (d *Driver) generate(ctx context.Context, logger *logging.Logger, req imagegen.Request) (*imagegen.Result, bool, error) {
	res, err := d.gen.Generate(ctx, req)
	if err == nil {
		return res, false, checkResult(res)
	}
	if !errors.Is(err, imagegen.ErrResourceExhausted) || req.Width <= FallbackSize {
		return nil, false, fmt.Errorf("generation failed: %w", err)
	}

	logger.Warn("backend out of memory, retrying at fallback size",
		zap.Int("size", req.Width),
		zap.Int("fallback_size", FallbackSize),
		zap.Error(err))

	res, err = d.gen.Generate(ctx, req.Sized(FallbackSize))
	if err != nil {
		return nil, true, fmt.Errorf("generation failed at fallback size %d: %w", FallbackSize, err)
	}
	return res, true, checkResult(res)
}

func checkResult(res *imagegen.Result) error {
	if res == nil || res.Image == nil || res.Image.Empty() {
		return imagegen.ErrEmptyResponse
	}
	return nil
}

// finish runs the stage chain on img, saves the texture and sidecar, and
// records the job.
func (d *Driver) finish(ctx context.Context, logger *logging.Logger, rec db.TextureRecord,
	img *raster.Image, opts Options, start time.Time, genTime time.Duration) (*Result, error) {
	var palette albedo.Palette
	stages := opts.stages(func(p albedo.Palette) { palette = p })

	timings := make(logging.StageTimings, 0, len(stages))
	img, err := Chain(ctx, img, stages, func(name string, elapsed time.Duration) {
		timings = append(timings, logging.StageTiming{Name: name, Duration: elapsed})
	})
	if err != nil {
		return nil, d.fail(ctx, logger, &rec, start, err)
	}

	rec.Stages = Names(stages)
	rec.Palette = palette.Hex()
	rec.ActualWidth, rec.ActualHeight = img.Width, img.Height

	if err := ctx.Err(); err != nil {
		return nil, d.fail(ctx, logger, &rec, start, err)
	}
	if err := img.Save(rec.OutputPath); err != nil {
		return nil, d.fail(ctx, logger, &rec, start, err)
	}

	sidecarPath := SidecarPath(rec.OutputPath)
	sidecar := &Sidecar{
		JobID:          rec.JobID,
		Kind:           rec.Kind,
		Backend:        rec.Backend,
		Model:          rec.Model,
		Prompt:         rec.Prompt,
		NegativePrompt: rec.NegativePrompt,
		Input:          rec.InputPath,
		Width:          img.Width,
		Height:         img.Height,
		Steps:          rec.Steps,
		Guidance:       rec.Guidance,
		Seed:           rec.Seed,
		Retried:        rec.Retried,
		Stages:         rec.Stages,
		Palette:        rec.Palette,
		CreatedAt:      time.Now().UTC(),
	}
	if opts.Seamless {
		sidecar.Feather = opts.Feather
	}
	if err := WriteSidecar(sidecarPath, sidecar); err != nil {
		return nil, d.fail(ctx, logger, &rec, start, err)
	}

	rec.Status = db.StatusSuccess
	rec.Duration = time.Since(start)
	d.record(ctx, logger, rec)

	logger.Info("texture saved",
		zap.String("path", rec.OutputPath),
		logging.JobField(logging.JobMetrics{
			JobID:    rec.JobID,
			Backend:  rec.Backend,
			Width:    img.Width,
			Height:   img.Height,
			Seed:     rec.Seed,
			Retried:  rec.Retried,
			Generate: genTime,
			Stages:   timings,
			Total:    rec.Duration,
		}))

	return &Result{
		JobID:          rec.JobID,
		Path:           rec.OutputPath,
		SidecarPath:    sidecarPath,
		Prompt:         rec.Prompt,
		NegativePrompt: rec.NegativePrompt,
		Width:          img.Width,
		Height:         img.Height,
		Seed:           rec.Seed,
		Retried:        rec.Retried,
		Stages:         rec.Stages,
		Palette:        rec.Palette,
		Duration:       rec.Duration,
	}, nil
}

// fail records rec as failed with err and returns err.
func (d *Driver) fail(ctx context.Context, logger *logging.Logger, rec *db.TextureRecord, start time.Time, err error) error {
	rec.Status = db.StatusError
	rec.ErrorMessage = err.Error()
	rec.Duration = time.Since(start)

	logger.Error("texture job failed", zap.String("kind", rec.Kind), zap.Error(err))
	d.record(ctx, logger, *rec)
	return err
}

// record stores rec in the history. Failures are logged, never returned:
// a saved texture stays saved.
func (d *Driver) record(ctx context.Context, logger *logging.Logger, rec db.TextureRecord) {
	if d.history == nil {
		return
	}
	if _, err := d.history.Insert(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("failed to record texture history", zap.Error(err))
	}
}
