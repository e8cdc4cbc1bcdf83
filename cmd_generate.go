package main

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"texgen/core"
	"texgen/pipeline"
	"texgen/sdruntime"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [prompt...]",
		Short: "Generate a texture from a prompt",
		Long: `Generate a texture from a prompt and post-process it.

The prompt gets the --style suffix unless --style-off is set; an empty prompt
uses a built-in fallback. Prompts are cut to the 77-token model limit. If the
backend runs out of memory above 768px, generation is retried once at 768px.`,
		Example: `  texgen generate mossy cobblestone --seamless --flat-post --flat-colors 6
  texgen generate "desert sand" --backend openai --out textures/sand.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), a, args)
		},
	}

	flags := cmd.Flags()
	flags.String("model", "", "Model: SD model file, or OpenAI image model (default from environment)")
	flags.Int("size", pipeline.DefaultSize, "Square image size in pixels")
	flags.Int("steps", sdruntime.DefaultSteps, "Sampling steps (Stable Diffusion)")
	flags.Float64("guidance", sdruntime.DefaultGuidance, "Guidance scale (Stable Diffusion)")
	flags.Int64("seed", -1, "Seed, -1 for random")
	flags.String("out", "", "Output PNG path (default <output dir>/generated.png)")
	flags.String("style", sdruntime.DefaultStyle, "Style suffix appended to the prompt")
	flags.Bool("style-off", false, "Use the prompt without the style suffix")
	flags.String("neg", sdruntime.DefaultNegativePrompt, "Negative prompt")
	addPostFlags(flags)

	bindFlags(a, flags, "generate", append([]string{
		"model", "size", "steps", "guidance", "seed", "out", "style", "style-off", "neg",
	}, postFlags...))

	return cmd
}

func runGenerate(ctx context.Context, a *app, args []string) error {
	v := a.v
	if model := v.GetString("generate.model"); model != "" {
		switch a.cfg.Backend {
		case core.BackendSD:
			a.cfg.SDModelPath = model
		case core.BackendOpenAI:
			a.cfg.OpenAIImageModel = model
		}
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	out := v.GetString("generate.out")
	if out == "" {
		out = filepath.Join(a.cfg.OutputDir, "generated.png")
	}
	job := pipeline.Job{
		Prompt:         strings.Join(args, " "),
		NegativePrompt: v.GetString("generate.neg"),
		Style:          v.GetString("generate.style"),
		StyleOff:       v.GetBool("generate.style-off"),
		Size:           v.GetInt("generate.size"),
		Steps:          v.GetInt("generate.steps"),
		Guidance:       v.GetFloat64("generate.guidance"),
		Out:            out,
		Options:        postOptions(v, "generate"),
	}
	if seed := v.GetInt64("generate.seed"); seed >= 0 {
		job.Seed = &seed
	}
	// Check the job before starting a backend, which may load a model.
	if err := job.Validate(); err != nil {
		return usageError{err: err}
	}

	gen, model, err := a.newGenerator(a.cfg, a.logger)
	if err != nil {
		return err
	}
	if c, ok := gen.(io.Closer); ok {
		a.registry.Register("generator", priorityGenerator, func(context.Context) error {
			return c.Close()
		})
	}

	cfg := pipeline.DriverConfig{
		Backend: a.cfg.Backend,
		Model:   model,
		Logger:  a.logger,
	}
	repo, err := a.openHistory(ctx)
	if err != nil {
		a.logger.Warn("history disabled", zap.Error(err))
	} else if repo != nil {
		cfg.History = repo
	}

	if a.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.JobTimeout)
		defer cancel()
	}

	progress(a.stdout, "Generating %dx%d with %s...", job.Size, job.Size, a.cfg.Backend)
	res, err := pipeline.NewDriver(gen, cfg).Run(ctx, job)
	if err != nil {
		return err
	}

	printResult(a.stdout, res)
	return nil
}
