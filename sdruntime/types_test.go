package sdruntime

import (
	"errors"
	"strings"
	"testing"
)

func validParams() GenerateParams {
	p := DefaultParams()
	p.Prompt = "mossy cobblestone path"
	return p
}

func TestDefaultParamsAreValid(t *testing.T) {
	if err := ValidateParams(validParams()); err != nil {
		t.Errorf("ValidateParams(DefaultParams) error: %v", err)
	}
	if p := DefaultParams(); p.Seed != -1 || p.Width != 1024 || p.Steps != 30 || p.Guidance != 6.8 {
		t.Errorf("DefaultParams() = %+v", p)
	}
}

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*GenerateParams)
		wantErr error
	}{
		{"minimum values", func(p *GenerateParams) {
			p.Width, p.Height, p.Steps, p.Guidance = 128, 128, 1, 1.0
		}, nil},
		{"maximum values", func(p *GenerateParams) {
			p.Width, p.Height, p.Steps, p.Guidance = 2048, 2048, 150, 30.0
		}, nil},
		{"width too small", func(p *GenerateParams) { p.Width = 64 }, ErrInvalidParams},
		{"width too large", func(p *GenerateParams) { p.Width = 4096 }, ErrInvalidParams},
		{"width not multiple of 8", func(p *GenerateParams) { p.Width = 513 }, ErrInvalidParams},
		{"height not multiple of 8", func(p *GenerateParams) { p.Height = 770 }, ErrInvalidParams},
		{"zero steps", func(p *GenerateParams) { p.Steps = 0 }, ErrInvalidParams},
		{"too many steps", func(p *GenerateParams) { p.Steps = 151 }, ErrInvalidParams},
		{"guidance too low", func(p *GenerateParams) { p.Guidance = 0.5 }, ErrInvalidParams},
		{"guidance too high", func(p *GenerateParams) { p.Guidance = 31 }, ErrInvalidParams},
		{"negative prompt too long", func(p *GenerateParams) {
			p.NegativePrompt = strings.Repeat("n", MaxPromptLength+1)
		}, ErrInvalidParams},
		{"empty prompt", func(p *GenerateParams) { p.Prompt = "  " }, ErrInvalidPrompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := ValidateParams(p)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRandomSeed(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 20; i++ {
		s := RandomSeed()
		if s < 0 {
			t.Fatalf("RandomSeed() = %d, want non-negative", s)
		}
		seen[s] = true
	}
	if len(seen) < 10 {
		t.Errorf("only %d distinct seeds in 20 draws", len(seen))
	}
}
