package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"automux/internal/preflight"
	"automux/internal/trash"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify mkvmerge, state directories, and the trash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			trasher, err := trash.New(trash.Options{})
			if err != nil {
				trasher = trash.Unsupported{}
			}

			results := preflight.RunAll(cmd.Context(), cfg, trasher)
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			rows := make([][]string, 0, len(results)+1)
			rows = append(rows, []string{"Config", statusCell(statusInfo, colorize), configLabel(ctx)})
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					// The trash only matters when inputs are deleted.
					if r.Name == "Trash" && !cfg.Merge.DeleteInputs {
						kind = statusWarn
					}
				}
				rows = append(rows, []string{r.Name, statusCell(kind, colorize), r.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if err := preflight.Err(blocking(results, cfg.Merge.DeleteInputs)); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), renderStatusLine("Result", statusError, "environment is not ready", shouldColorize(cmd.ErrOrStderr())))
				return errReported
			}
			fmt.Fprintln(out, renderStatusLine("Result", statusOK, "ready", colorize))
			return nil
		},
	}
}

func blocking(results []preflight.Result, deleteInputs bool) []preflight.Result {
	filtered := make([]preflight.Result, 0, len(results))
	for _, r := range results {
		if r.Name == "Trash" && !deleteInputs {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func configLabel(ctx *commandContext) string {
	if ctx.configPath == "" {
		return "defaults"
	}
	return ctx.configPath
}
