// Package pipeline turns a prompt or an existing image into a finished
// texture: generation, the post-processing chain, persistence and history.
//
// Post-processing runs in a fixed order:
//
//	Poisson detile -> cross-blend detile -> albedo flatten -> drop alpha
//
// Each step only runs when enabled in Options. The generator is the only
// step that may be retried, and only by the Driver.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"texgen/albedo"
	"texgen/raster"
	"texgen/seamless"
)

// Stage names as they appear in logs, sidecars and history records.
const (
	StagePoisson   = "poisson"
	StageBlend     = "blend"
	StageFlatten   = "flatten"
	StageDropAlpha = "rgb"
)

// Stage is one named image transform.
type Stage struct {
	Name  string
	Apply func(img *raster.Image) (*raster.Image, error)
}

// Chain applies stages left to right. ctx is checked before each stage and
// its error is returned as is. The first failing stage stops the chain and
// its error is returned prefixed with the stage name. observe, when not nil,
// receives the duration of every stage that succeeded.
func Chain(ctx context.Context, img *raster.Image, stages []Stage,
	observe func(name string, d time.Duration)) (*raster.Image, error) {
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := s.Apply(img)
		if err != nil {
			return nil, fmt.Errorf("%s stage: %w", s.Name, err)
		}
		if observe != nil {
			observe(s.Name, time.Since(start))
		}
		img = out
	}
	return img, nil
}

// PoissonStage removes tiling seams with the periodic Poisson solver.
func PoissonStage() Stage {
	return Stage{
		Name: StagePoisson,
		Apply: func(img *raster.Image) (*raster.Image, error) {
			return seamless.Poisson(img), nil
		},
	}
}

// BlendStage removes tiling seams with the feathered cross-blend.
func BlendStage(feather int) Stage {
	return Stage{
		Name: StageBlend,
		Apply: func(img *raster.Image) (*raster.Image, error) {
			return seamless.Blend(img, feather)
		},
	}
}

// FlattenStage reduces the image to a flat palette. onPalette, when not
// nil, receives the chosen palette.
func FlattenStage(opts albedo.Options, onPalette func(albedo.Palette)) Stage {
	return Stage{
		Name: StageFlatten,
		Apply: func(img *raster.Image) (*raster.Image, error) {
			out, palette, err := albedo.FlattenWithPalette(img, opts)
			if err != nil {
				return nil, err
			}
			if onPalette != nil {
				onPalette(palette)
			}
			return out, nil
		},
	}
}

// DropAlphaStage converts the image to RGB.
func DropAlphaStage() Stage {
	return Stage{
		Name: StageDropAlpha,
		Apply: func(img *raster.Image) (*raster.Image, error) {
			return img.Convert(raster.RGB), nil
		},
	}
}

// Names returns the stage names in order.
func Names(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name
	}
	return names
}
