package pipeline

import (
	"fmt"

	"texgen/albedo"
	"texgen/raster"
	"texgen/seamless"
)

// Options selects the post-processing stages.
type Options struct {
	// Seamless enables the feathered cross-blend detiler.
	Seamless bool
	// SeamlessPSD enables the Poisson detiler. It runs before the blend
	// when both are set.
	SeamlessPSD bool
	// Feather is the cross-blend feather width in pixels.
	Feather int

	// Flat enables the albedo flattener with FlatOptions.
	Flat        bool
	FlatOptions albedo.Options

	// RGB drops the alpha channel from the final image.
	RGB bool
}

// DefaultOptions returns options with every stage disabled and the
// default feather and flatten settings filled in.
func DefaultOptions() Options {
	return Options{
		Feather:     seamless.DefaultFeather,
		FlatOptions: albedo.DefaultOptions(),
	}
}

// Validate checks the settings of enabled stages.
func (o Options) Validate() error {
	if o.Seamless && o.Feather < 0 {
		return fmt.Errorf("%w: feather must be >= 0, got %d", raster.ErrInvalidParameter, o.Feather)
	}
	if o.Flat {
		if err := o.FlatOptions.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Stages returns the enabled stages in their fixed order.
func (o Options) Stages() []Stage {
	return o.stages(nil)
}

func (o Options) stages(onPalette func(albedo.Palette)) []Stage {
	var stages []Stage
	if o.SeamlessPSD {
		stages = append(stages, PoissonStage())
	}
	if o.Seamless {
		stages = append(stages, BlendStage(o.Feather))
	}
	if o.Flat {
		stages = append(stages, FlattenStage(o.FlatOptions, onPalette))
	}
	if o.RGB {
		stages = append(stages, DropAlphaStage())
	}
	return stages
}
