package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("reported")

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevel string

	ctx := newCommandContext(&configFlag, &logLevel)
	flags := &mergeFlags{}

	rootCmd := &cobra.Command{
		Use:   "automux [inputs...]",
		Short: "Merge media, audio, and subtitle files into one MKV with mkvmerge",
		Long: "Merge media, audio, and subtitle files into one MKV with mkvmerge.\n\n" +
			"Inputs are files, glob patterns (** is supported), or directories. Track\n" +
			"languages are inferred from file names such as movie-eng.srt and from\n" +
			"VobSub .idx files; movie-eng.forced.srt also sets the forced flag.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, ctx, flags, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	flags.register(rootCmd)

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
