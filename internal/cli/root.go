// Package cli implements the Cobra command hierarchy for the dupfind CLI
// tool. The root command defined here is the entry point for all
// subcommands and handles cross-cutting concerns like logging
// initialization and error handling.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dupfind/dupfind/internal/cli/progress"
	"github.com/dupfind/dupfind/internal/config"
	"github.com/dupfind/dupfind/internal/pipeline"
)

// flagValues holds the parsed global flag values, populated by config.BindFlags
// during command initialization and validated in PersistentPreRunE.
var flagValues *config.FlagValues

var rootCmd = &cobra.Command{
	Use:   "dupfind [path]",
	Short: "Find duplicate files.",
	Long: `dupfind walks a directory tree and reports duplicate files.

It groups files by size and inode first, confirms candidates with a
streaming Adler-32 checksum, and only reports a pair as a duplicate after
a byte-exact comparison. Hard links are reported separately from true
content duplicates.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		applyPositionalPath(flagValues, args)

		if err := config.ValidateFlags(flagValues, cmd); err != nil {
			return err
		}

		level := config.ResolveLogLevel(flagValues.Verbose, flagValues.Quiet)
		format := config.ResolveLogFormat()
		config.SetupLogging(level, format)

		slog.Debug("logging initialized", "level", level, "format", format)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagValues.Progress {
			var buf bytes.Buffer
			_, err := progress.Run(func() (*pipeline.Stats, error) {
				return pipeline.Run(cmd.Context(), flagValues, cmd, &buf)
			})
			fmt.Fprint(cmd.OutOrStdout(), buf.String())
			return err
		}
		_, err := pipeline.Run(cmd.Context(), flagValues, cmd, cmd.OutOrStdout())
		return err
	},
}

func init() {
	flagValues = config.BindFlags(rootCmd)
}

// applyPositionalPath sets fv.Path from the command's positional arguments,
// defaulting to the current directory when none was given.
func applyPositionalPath(fv *config.FlagValues, args []string) {
	if len(args) == 0 {
		fv.Path = "."
		return
	}
	fv.Path = args[0]
}

// Execute runs the root command and returns an appropriate exit code.
// If the error is a *pipeline.DupError, its Code is used. Generic errors
// are logged and still exit 0, with a short note on stderr pointing to the
// log: only a bad starting path is treated as a usage failure (see
// pipeline.ExitCode).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		code := extractExitCode(err)
		if code == int(pipeline.ExitSuccess) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "dupfind: the run did not complete; see the log for details")
		}
		return code
	}
	return int(pipeline.ExitSuccess)
}

// extractExitCode determines the process exit code from an error. A
// *pipeline.DupError contributes its own Code; any other non-nil error is
// still reported as ExitSuccess, since traversal and classification
// failures are logged rather than treated as usage errors.
func extractExitCode(err error) int {
	if err == nil {
		return int(pipeline.ExitSuccess)
	}
	var dupErr *pipeline.DupError
	if errors.As(err, &dupErr) {
		return dupErr.Code
	}
	return int(pipeline.ExitSuccess)
}

// RootCmd returns the root cobra.Command for use in testing and subcommand registration.
func RootCmd() *cobra.Command {
	return rootCmd
}

// GlobalFlags returns the parsed global flag values. This is available after
// PersistentPreRunE has run. Subcommands use this to access shared configuration.
func GlobalFlags() *config.FlagValues {
	return flagValues
}
