package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"texgen/albedo"
	"texgen/pipeline"
	"texgen/seamless"
)

// postFlags are the post-processing flags shared by generate and process.
var postFlags = []string{
	"seamless", "seamless-psd", "feather",
	"flat-post", "flat-colors", "flat-dither", "flat-blur",
	"rgb",
}

func addPostFlags(flags *pflag.FlagSet) {
	flags.Bool("seamless", false, "Remove tiling seams with a feathered cross-blend")
	flags.Bool("seamless-psd", false, "Remove tiling seams with the periodic Poisson solver")
	flags.Int("feather", seamless.DefaultFeather, "Cross-blend feather width in pixels")
	flags.Bool("flat-post", false, "Flatten to a small albedo palette")
	flags.Int("flat-colors", albedo.DefaultColors, "Palette size for --flat-post (1-256)")
	flags.Bool("flat-dither", false, "Dither when flattening")
	flags.Int("flat-blur", 0, "Gaussian blur radius after flattening")
	flags.Bool("rgb", false, "Drop the alpha channel from the output")
}

// postOptions reads the post-processing flags bound under prefix.
func postOptions(v *viper.Viper, prefix string) pipeline.Options {
	return pipeline.Options{
		Seamless:    v.GetBool(prefix + ".seamless"),
		SeamlessPSD: v.GetBool(prefix + ".seamless-psd"),
		Feather:     v.GetInt(prefix + ".feather"),
		Flat:        v.GetBool(prefix + ".flat-post"),
		FlatOptions: albedo.Options{
			Colors: v.GetInt(prefix + ".flat-colors"),
			Dither: v.GetBool(prefix + ".flat-dither"),
			Blur:   v.GetInt(prefix + ".flat-blur"),
		},
		RGB: v.GetBool(prefix + ".rgb"),
	}
}
