// Command texgen generates tileable, flat-shaded textures from text prompts
// and post-processes existing images into seamless tiles.
//
// Usage:
//
//	texgen generate "mossy cobblestone" --seamless --flat-post
//	texgen process photo.png --seamless-psd --out tile.png
//	texgen history --limit 20
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"texgen/core"
	"texgen/shutdown"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	// A missing .env file is fine; the environment alone may be enough.
	_ = godotenv.Load()

	ctx, received, stop := shutdown.WatchSignals(context.Background(), func() {
		fmt.Fprintln(stderr, "Forced exit")
		os.Exit(core.ExitCodeSIGINT)
	})
	defer stop()

	err := run(ctx, newApp(stdout, stderr), args)

	code := exitCode(err)
	if code == core.ExitCodeSIGINT && received.Get() == syscall.SIGTERM {
		code = core.ExitCodeSIGTERM
	}
	if err != nil {
		color.New(color.FgRed).Fprintf(stderr, "Error: %v\n", err)
		if code != core.ExitCodeError {
			color.New(color.FgHiBlack).Fprintf(stderr, "(%s)\n", core.ExitCodeName(code))
		}
	}
	return code
}

// run executes one command on a and releases its resources.
func run(ctx context.Context, a *app, args []string) error {
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

// usageError marks errors caused by bad arguments or flags.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var usage usageError
	if errors.As(err, &usage) {
		return core.ExitCodeUsage
	}
	return core.ExitCodeFor(err)
}
