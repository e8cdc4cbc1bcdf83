package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "texgen",
		Short:         "Generate seamless, flat-shaded textures",
		Long:          "texgen generates tileable albedo textures with Stable Diffusion or the OpenAI image API and post-processes images into seamless tiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("backend", "", "Generation backend: sd or openai (default from TEXGEN_BACKEND, else sd)")
	flags.String("history-db", "", `History database path, "off" to disable (default from TEXGEN_HISTORY_DB)`)
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-file", "", "Write JSON logs to this rotating file")
	flags.Bool("dev", false, "Development logging (colored console at debug level)")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err: fmt.Errorf("%w\nSee '%s --help'", err, cmd.CommandPath())}
	})

	root.AddCommand(newGenerateCmd(a), newProcessCmd(a), newHistoryCmd(a))

	a.v.SetEnvPrefix("TEXGEN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()
	bindFlags(a, flags, "", []string{"backend", "history-db", "log-level", "log-file", "dev"})

	return root
}

// bindFlags binds each named flag to the viper key prefix+name, so a flag
// overrides the TEXGEN_<PREFIX>_<NAME> environment variable, which
// overrides the flag default.
func bindFlags(a *app, flags *pflag.FlagSet, prefix string, names []string) {
	for _, name := range names {
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

// noArgs is cobra.NoArgs reporting a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err: err}
	}
	return nil
}
