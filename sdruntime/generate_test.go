package sdruntime

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig(t *testing.T, binary string) *SDConfig {
	t.Helper()
	return &SDConfig{
		BinaryPath:    binary,
		ModelPath:     modelFile(t),
		Sampler:       DefaultSampler,
		Timeout:       10 * time.Second,
		MaxConcurrent: 2,
	}
}

func TestNewGenerator(t *testing.T) {
	cfg := testConfig(t, fakeSD(t, "exit 0"))

	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	defer gen.Close()

	if gen.PoolSize() != 2 {
		t.Errorf("PoolSize() = %d, want 2", gen.PoolSize())
	}
}

func TestNewGeneratorErrors(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		cfg := testConfig(t, fakeSD(t, "exit 0"))
		cfg.ModelPath = cfg.ModelPath + ".missing"
		if _, err := NewGenerator(cfg); !errors.Is(err, ErrModelNotFound) {
			t.Errorf("error = %v, want ErrModelNotFound", err)
		}
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		cfg := testConfig(t, fakeSD(t, "exit 0"))
		cfg.ModelSHA256 = "0000"
		if _, err := NewGenerator(cfg); !errors.Is(err, ErrModelCorrupted) {
			t.Errorf("error = %v, want ErrModelCorrupted", err)
		}
	})

	t.Run("checksum match", func(t *testing.T) {
		cfg := testConfig(t, fakeSD(t, "exit 0"))
		sum, err := CalculateChecksum(cfg.ModelPath)
		if err != nil {
			t.Fatalf("CalculateChecksum() error: %v", err)
		}
		cfg.ModelSHA256 = sum
		gen, err := NewGenerator(cfg)
		if err != nil {
			t.Fatalf("NewGenerator() error: %v", err)
		}
		gen.Close()
	})
}

func TestGeneratorGenerate(t *testing.T) {
	gen, err := NewGenerator(testConfig(t, copyingSD(t, fixturePNG(t, 8, 8))))
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	defer gen.Close()

	p := validParams()
	res, err := gen.Generate(context.Background(), p)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.Seed < 0 {
		t.Errorf("Seed = %d, want a resolved non-negative seed", res.Seed)
	}
	if res.Image == nil || res.Width != 8 {
		t.Errorf("unexpected result %+v", res)
	}

	p.Seed = 1234
	res, err = gen.Generate(context.Background(), p)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if res.Seed != 1234 {
		t.Errorf("Seed = %d, want 1234", res.Seed)
	}
}

func TestGeneratorGenerateErrors(t *testing.T) {
	gen, err := NewGenerator(testConfig(t, fakeSD(t, "echo 'CUDA error: out of memory' >&2; exit 1")))
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}

	bad := validParams()
	bad.Steps = 0
	if _, err := gen.Generate(context.Background(), bad); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("invalid params error = %v", err)
	}

	if _, err := gen.Generate(context.Background(), validParams()); !errors.Is(err, ErrOutOfVRAM) {
		t.Errorf("oom error = %v, want ErrOutOfVRAM", err)
	}

	gen.Close()
	if _, err := gen.Generate(context.Background(), validParams()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("after Close error = %v, want ErrPoolClosed", err)
	}
}

func TestCalculateChecksum(t *testing.T) {
	path := modelFile(t)
	sum, err := CalculateChecksum(path)
	if err != nil {
		t.Fatalf("CalculateChecksum() error: %v", err)
	}
	// sha256("fake model data")
	if len(sum) != 64 {
		t.Errorf("checksum %q is not a hex SHA256", sum)
	}
	if err := VerifyModelChecksum(path, ""); err != nil {
		t.Errorf("empty expected checksum should skip verification: %v", err)
	}

	if _, err := CalculateChecksum(path + ".gone"); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("error = %v, want ErrModelNotFound", err)
	}
}
