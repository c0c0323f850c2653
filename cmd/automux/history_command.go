package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"automux/internal/history"
	"automux/internal/language"
)

const shortIDLength = 8

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent merge runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errors.New("history is disabled (history.enabled = false)")
				}
				cfg, _ := ctx.ensureConfig()
				n := limit
				if !cmd.Flags().Changed("limit") {
					n = cfg.History.Limit
				}
				runs, err := store.Recent(cmd.Context(), n)
				if err != nil {
					return fmt.Errorf("list runs: %w", err)
				}
				renderRuns(cmd.OutOrStdout(), runs)
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Number of runs to show (default: history.limit)")
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if store == nil {
					return errors.New("history is disabled (history.enabled = false)")
				}
				run, err := store.Get(cmd.Context(), strings.TrimSpace(args[0]))
				switch {
				case errors.Is(err, history.ErrRunNotFound):
					return fmt.Errorf("run %s not found", args[0])
				case errors.Is(err, history.ErrAmbiguousID):
					return fmt.Errorf("run id %s is ambiguous; use more characters", args[0])
				case err != nil:
					return fmt.Errorf("load run: %w", err)
				}
				renderRun(cmd.OutOrStdout(), run)
				return nil
			})
		},
	}
}

func renderRuns(out io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			string(run.Status),
			strconv.Itoa(run.InputCount),
			formatDuration(run.Duration()),
			run.Output,
		})
	}
	headers := []string{"ID", "Started", "Status", "Inputs", "Duration", "Output"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}

func renderRun(out io.Writer, run *history.Run) {
	fmt.Fprintf(out, "Run:      %s\n", run.ID)
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "Finished: %s (%s)\n", run.FinishedAt.Local().Format(time.RFC3339), formatDuration(run.Duration()))
	}
	fmt.Fprintf(out, "Status:   %s\n", run.Status)
	if run.ExitCode != nil {
		fmt.Fprintf(out, "Exit:     %d\n", *run.ExitCode)
	}
	if run.Output != "" {
		fmt.Fprintf(out, "Output:   %s\n", run.Output)
	}
	fmt.Fprintf(out, "Dry run:  %s\n", yesNo(run.DryRun))
	if run.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", run.Error)
	}

	if len(run.Inputs) == 0 {
		return
	}
	rows := make([][]string, 0, len(run.Inputs))
	for _, in := range run.Inputs {
		rows = append(rows, []string{
			strconv.Itoa(in.Position),
			in.Path,
			languageLabel(in.Language),
			yesNo(in.Forced),
			yesNo(in.Trashed),
		})
	}
	headers := []string{"#", "Path", "Language", "Forced", "Trashed"}
	aligns := []columnAlignment{alignRight}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}

func languageLabel(code string) string {
	if code == "" {
		return "-"
	}
	if name := language.DisplayName(code); !strings.EqualFold(name, code) {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}
