package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"texgen/core"
	"texgen/db"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent texture jobs",
		Example: `  texgen history --limit 20
  texgen history --prune-days 30`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), a)
		},
	}

	flags := cmd.Flags()
	flags.Int("limit", 10, "Number of records to show")
	flags.Int("prune-days", 0, "Delete records older than this many days first")

	bindFlags(a, flags, "history", []string{"limit", "prune-days"})

	return cmd
}

func runHistory(ctx context.Context, a *app) error {
	if a.cfg.HistoryDB == "" {
		return core.ErrMissingConfig("TEXGEN_HISTORY_DB")
	}
	repo, err := a.openHistory(ctx)
	if err != nil {
		return err
	}

	if days := a.v.GetInt("history.prune-days"); days > 0 {
		n, err := repo.Prune(ctx, time.Now().AddDate(0, 0, -days))
		if err != nil {
			return err
		}
		progress(a.stdout, "Pruned %d records older than %d days", n, days)
	}

	records, err := repo.Recent(ctx, a.v.GetInt("history.limit"))
	if err != nil {
		return err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}

	printHistory(a.stdout, records, total)
	return nil
}

func printHistory(w io.Writer, records []db.TextureRecord, total int64) {
	if len(records) == 0 {
		color.New(color.FgHiBlack).Fprintln(w, "No textures recorded yet")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tKIND\tSTATUS\tSIZE\tSTAGES\tOUTPUT\tPROMPT")
	for _, r := range records {
		status := color.GreenString(r.Status)
		if r.Status != db.StatusSuccess {
			status = color.RedString(r.Status)
		}
		size := "-"
		if r.ActualWidth > 0 {
			size = fmt.Sprintf("%dx%d", r.ActualWidth, r.ActualHeight)
		}
		stages := strings.Join(r.Stages, ",")
		if stages == "" {
			stages = "-"
		}
		subject := r.Prompt
		if r.Kind == db.KindProcess {
			subject = r.InputPath
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Kind, status, size, stages,
			r.OutputPath, truncate(subject, 48))
	}
	tw.Flush()

	color.New(color.FgHiBlack).Fprintf(w, "(%d of %d records)\n", len(records), total)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
