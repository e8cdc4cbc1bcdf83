package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"

	"texgen/core"
	"texgen/db"
	"texgen/imagegen"
	"texgen/logging"
	"texgen/raster"
)

func init() {
	color.NoColor = true
}

// echoGenerator returns a small opaque image and echoes the request seed.
type echoGenerator struct {
	mu       sync.Mutex
	requests []imagegen.Request
	closed   bool
}

func (g *echoGenerator) Generate(ctx context.Context, req imagegen.Request) (*imagegen.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)

	img := raster.New(24, 24, raster.RGB)
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	return &imagegen.Result{Image: img, Seed: req.Seed}, nil
}

func (g *echoGenerator) Close() error {
	g.closed = true
	return nil
}

// testEnv points the configuration at dir and returns the history path.
func testEnv(t *testing.T, dir string) string {
	t.Helper()
	historyDB := filepath.Join(dir, "history.db")
	for key, value := range map[string]string{
		"TEXGEN_BACKEND":     core.BackendSD,
		"SD_MODEL_PATH":      filepath.Join(dir, "model.safetensors"),
		"TEXGEN_HISTORY_DB":  historyDB,
		"TEXGEN_OUTPUT_DIR":  filepath.Join(dir, "textures"),
		"TEXGEN_LOG_FILE":    "",
		"TEXGEN_LOG_LEVEL":   "",
		"TEXGEN_JOB_TIMEOUT": "",
		"DEV_MODE":           "",
		"OPENAI_API_KEY":     "",
		"AZURE_OPENAI_KEY":   "",
		"OPENAI_BASE_URL":    "",
	} {
		t.Setenv(key, value)
	}
	return historyDB
}

func runCLI(t *testing.T, gen imagegen.Generator, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.newGenerator = func(*core.Config, *logging.Logger) (imagegen.Generator, string, error) {
		return gen, "fake-model", nil
	}
	err := run(context.Background(), a, args)
	return stdout.String(), err
}

func recentRecords(t *testing.T, path string) []db.TextureRecord {
	t.Helper()
	database, err := db.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("db.Open() error: %v", err)
	}
	defer database.Close()

	records, err := db.NewRepository(database).Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	return records
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	historyDB := testEnv(t, dir)
	gen := &echoGenerator{}

	out := filepath.Join(dir, "tex", "moss.png")
	stdout, err := runCLI(t, gen, "generate", "mossy", "stone",
		"--size", "64", "--seed", "5", "--style-off",
		"--seamless", "--feather", "4", "--flat-post", "--flat-colors", "4",
		"--out", out)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}

	if len(gen.requests) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.requests))
	}
	req := gen.requests[0]
	if req.Prompt != "mossy stone" || req.Width != 64 || req.Seed == nil || *req.Seed != 5 {
		t.Errorf("request = %+v", req)
	}
	if !gen.closed {
		t.Error("generator was not closed")
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("texture not saved: %v", err)
	}
	for _, want := range []string{"Saved: " + out, "Prompt used (<=77t): mossy stone", "Seed: 5", "Stages: blend -> flatten"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	records := recentRecords(t, historyDB)
	if len(records) != 1 {
		t.Fatalf("history has %d records, want 1", len(records))
	}
	if r := records[0]; r.Backend != core.BackendSD || r.Model != "fake-model" || r.Status != db.StatusSuccess || r.OutputPath != out {
		t.Errorf("record = %+v", r)
	}
}

func TestGenerateDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	testEnv(t, dir)
	t.Setenv("TEXGEN_GENERATE_STEPS", "12")
	t.Setenv("TEXGEN_GENERATE_GUIDANCE", "4.5")
	gen := &echoGenerator{}

	if _, err := runCLI(t, gen, "generate", "sand", "--guidance", "9", "--size", "32"); err != nil {
		t.Fatalf("generate error: %v", err)
	}

	req := gen.requests[0]
	if req.Steps != 12 {
		t.Errorf("Steps = %d, want 12 from the environment", req.Steps)
	}
	if req.Guidance != 9 {
		t.Errorf("Guidance = %g, want 9 from the flag", req.Guidance)
	}
	if req.Seed != nil {
		t.Errorf("Seed = %d, want random", *req.Seed)
	}
	if !strings.HasPrefix(req.Prompt, "sand, ") {
		t.Errorf("Prompt = %q, want the style suffix", req.Prompt)
	}
	if _, err := os.Stat(filepath.Join(dir, "textures", "generated.png")); err != nil {
		t.Errorf("default output missing: %v", err)
	}
}

func TestGenerateConfigError(t *testing.T) {
	testEnv(t, t.TempDir())
	t.Setenv("TEXGEN_BACKEND", core.BackendOpenAI)
	gen := &echoGenerator{}

	_, err := runCLI(t, gen, "generate", "ice")
	if code := exitCode(err); code != core.ExitCodeConfig {
		t.Fatalf("exit code = %d (%v), want %d", code, err, core.ExitCodeConfig)
	}
	if len(gen.requests) != 0 {
		t.Error("generator ran despite the config error")
	}
}

func TestGenerateBackendFlag(t *testing.T) {
	testEnv(t, t.TempDir())

	_, err := runCLI(t, &echoGenerator{}, "generate", "ice", "--backend", "OpenAI")
	if cfgErr, ok := core.IsConfigError(err); !ok || cfgErr.Code != core.ErrCodeMissingAuth {
		t.Errorf("error = %v, want missing auth for the flag-selected backend", err)
	}
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	historyDB := testEnv(t, dir)

	in := filepath.Join(dir, "photo.png")
	img := raster.New(16, 16, raster.RGBA)
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	if err := img.Save(in); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	stdout, err := runCLI(t, nil, "process", in, "--seamless-psd", "--rgb")
	if err != nil {
		t.Fatalf("process error: %v", err)
	}

	out := filepath.Join(dir, "photo_tile.png")
	got, err := raster.Load(out)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Mode != raster.RGB || got.Width != 16 {
		t.Errorf("output = %dx%d %v", got.Width, got.Height, got.Mode)
	}
	if !strings.Contains(stdout, "Stages: poisson -> rgb") {
		t.Errorf("output:\n%s", stdout)
	}

	records := recentRecords(t, historyDB)
	if len(records) != 1 || records[0].Kind != db.KindProcess || records[0].InputPath != in {
		t.Errorf("records = %+v", records)
	}
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	testEnv(t, dir)

	for _, prompt := range []string{"bark", "lava"} {
		if _, err := runCLI(t, &echoGenerator{}, "generate", prompt, "--size", "16",
			"--out", filepath.Join(dir, prompt+".png")); err != nil {
			t.Fatalf("generate error: %v", err)
		}
	}

	stdout, err := runCLI(t, nil, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history error: %v", err)
	}
	if !strings.Contains(stdout, "lava") || strings.Contains(stdout, "bark") {
		t.Errorf("history shows the wrong records:\n%s", stdout)
	}
	if !strings.Contains(stdout, "success") || !strings.Contains(stdout, "(1 of 2 records)") {
		t.Errorf("history output:\n%s", stdout)
	}
}

func TestHistoryDisabled(t *testing.T) {
	testEnv(t, t.TempDir())

	_, err := runCLI(t, nil, "history", "--history-db", "off")
	if code := exitCode(err); code != core.ExitCodeConfig {
		t.Errorf("exit code = %d (%v), want %d", code, err, core.ExitCodeConfig)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"process without input", []string{"process"}},
		{"history with argument", []string{"history", "extra"}},
		{"unknown flag", []string{"generate", "--no-such-flag"}},
		{"bad flag value", []string{"generate", "--size", "big"}},
		{"bad palette", []string{"generate", "x", "--flat-post", "--flat-colors", "0"}},
		{"bad feather", []string{"process", "in.png", "--seamless", "--feather", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t, t.TempDir())
			gen := &echoGenerator{}
			_, err := runCLI(t, gen, tt.args...)
			if code := exitCode(err); code != core.ExitCodeUsage {
				t.Errorf("exit code = %d (%v), want %d", code, err, core.ExitCodeUsage)
			}
			if len(gen.requests) != 0 {
				t.Error("generator ran")
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, core.ExitCodeSuccess},
		{"usage", usageError{err: errors.New("bad")}, core.ExitCodeUsage},
		{"config", core.ErrMissingConfig("SD_MODEL_PATH"), core.ExitCodeConfig},
		{"canceled", context.Canceled, core.ExitCodeSIGINT},
		{"other", errors.New("boom"), core.ExitCodeError},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestNewGenerator(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		gen, model, err := newGenerator(&core.Config{
			Backend:      core.BackendOpenAI,
			OpenAIAPIKey: "sk-test",
		}, logging.NewNop())
		if err != nil {
			t.Fatalf("newGenerator() error: %v", err)
		}
		if _, ok := gen.(*imagegen.OpenAIGenerator); !ok {
			t.Errorf("generator is %T", gen)
		}
		if model != imagegen.DefaultImageModel {
			t.Errorf("model = %q, want %q", model, imagegen.DefaultImageModel)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := newGenerator(&core.Config{Backend: "dalle"}, logging.NewNop())
		if code := core.GetErrorCode(err); code != core.ErrCodeUnknownBackend {
			t.Errorf("error code = %q (%v), want %q", code, err, core.ErrCodeUnknownBackend)
		}
	})

	t.Run("sd without binary", func(t *testing.T) {
		t.Setenv("SD_BINARY", filepath.Join(t.TempDir(), "missing-sd"))
		_, _, err := newGenerator(&core.Config{
			Backend:     core.BackendSD,
			SDModelPath: filepath.Join(t.TempDir(), "model.safetensors"),
		}, logging.NewNop())
		if err == nil {
			t.Error("newGenerator() error = nil, want a startup failure")
		}
	})
}
