package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"automux/internal/batch"
	"automux/internal/history"
)

type mergeFlags struct {
	inputs   []string
	output   string
	dryRun   bool
	delete   bool
	includes []string
}

func (f *mergeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.inputs, "input", "i", nil, "Input file, glob, or directory (repeatable)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: first .mkv input plus merge.output_suffix)")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Show what would be merged without running mkvmerge")
	cmd.Flags().BoolVarP(&f.delete, "delete", "d", false, "Move inputs to the trash after a successful merge (default: merge.delete_inputs)")
	cmd.Flags().StringArrayVarP(&f.includes, "include", "I", nil, "Glob matched in the working directory and every input directory (repeatable)")
}

func (f *mergeFlags) request(cmd *cobra.Command, args []string, deleteDefault bool) batch.Request {
	req := batch.Request{
		Patterns: append(append([]string{}, args...), f.inputs...),
		Output:   f.output,
		DryRun:   f.dryRun,
		Delete:   deleteDefault,
	}
	if cmd.Flags().Changed("delete") {
		req.Delete = f.delete
	}
	if cmd.Flags().Changed("include") {
		req.Includes = append([]string{}, f.includes...)
	}
	return req
}

func runMerge(cmd *cobra.Command, ctx *commandContext, flags *mergeFlags, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	req := flags.request(cmd, args, cfg.Merge.DeleteInputs)
	if req.DryRun {
		fmt.Fprintln(out, "DRY RUN")
	}

	reporter := newProgressReporter(errOut, logger, cfg.Logging.ProgressEveryPercent)
	req.Progress = reporter.Update

	return ctx.withHistory(func(store *history.Store) error {
		opts := []batch.Option{
			batch.WithOutput(out),
			batch.WithLogger(logger),
		}
		if store != nil {
			opts = append(opts, batch.WithJournal(store))
		}

		res, err := batch.New(cfg, opts...).Run(cmd.Context(), req)
		reporter.Finish(res.Succeeded && !res.DryRun)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(out, "\nprocessing aborted.")
				return errReported
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
			return errReported
		}

		switch {
		case res.Aborted:
			fmt.Fprintln(out, "\nprocessing aborted.")
			return errReported
		case !res.Succeeded:
			for _, line := range res.Errors {
				fmt.Fprintf(errOut, "error: %s\n", line)
			}
			return errReported
		}
		fmt.Fprintln(out, "completed.")
		return nil
	})
}
