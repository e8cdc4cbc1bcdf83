package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"texgen/pipeline"
)

// progress prints a dim status line.
func progress(w io.Writer, format string, args ...any) {
	color.New(color.FgHiBlack).Fprintf(w, format+"\n", args...)
}

// printResult prints where a texture went and what produced it.
func printResult(w io.Writer, res *pipeline.Result) {
	color.New(color.FgGreen, color.Bold).Fprintf(w, "Saved: %s", res.Path)
	color.New(color.FgHiBlack).Fprintf(w, " (%dx%d in %v)\n", res.Width, res.Height, res.Duration.Round(time.Millisecond))

	if res.Prompt != "" {
		fmt.Fprintf(w, "Prompt used (<=77t): %s\n", res.Prompt)
	}
	if res.NegativePrompt != "" {
		fmt.Fprintf(w, "Negative (<=77t): %s\n", res.NegativePrompt)
	}
	if res.Seed != nil {
		fmt.Fprintf(w, "Seed: %d\n", *res.Seed)
	}
	if res.Retried {
		color.New(color.FgYellow).Fprintf(w, "Out of memory at the requested size; generated at %dpx instead\n", pipeline.FallbackSize)
	}
	if len(res.Stages) > 0 {
		fmt.Fprintf(w, "Stages: %s\n", strings.Join(res.Stages, " -> "))
	}
	if len(res.Palette) > 0 {
		fmt.Fprintf(w, "Palette: %s\n", strings.Join(res.Palette, " "))
	}
}
