package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"texgen/pipeline"
)

func newProcessCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <input>",
		Short: "Post-process an existing image into a texture",
		Long: `Run the post-processing stages on an existing PNG, JPEG or GIF image.

Stages run in a fixed order: --seamless-psd, --seamless, --flat-post, --rgb.`,
		Example: `  texgen process photo.png --seamless-psd --flat-post
  texgen process rock.jpg --seamless --feather 24 --out textures/rock.png`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), a, args[0])
		},
	}

	flags := cmd.Flags()
	flags.String("out", "", "Output PNG path (default <input>_tile.png)")
	addPostFlags(flags)

	bindFlags(a, flags, "process", append([]string{"out"}, postFlags...))

	return cmd
}

func runProcess(ctx context.Context, a *app, in string) error {
	opts := postOptions(a.v, "process")
	if err := opts.Validate(); err != nil {
		return usageError{err: err}
	}

	cfg := pipeline.DriverConfig{Logger: a.logger}
	repo, err := a.openHistory(ctx)
	if err != nil {
		a.logger.Warn("history disabled", zap.Error(err))
	} else if repo != nil {
		cfg.History = repo
	}

	res, err := pipeline.NewDriver(nil, cfg).Process(ctx, in, a.v.GetString("process.out"), opts)
	if err != nil {
		return err
	}

	printResult(a.stdout, res)
	return nil
}
