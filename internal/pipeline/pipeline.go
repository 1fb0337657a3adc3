package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dupfind/dupfind/internal/classifier"
	"github.com/dupfind/dupfind/internal/config"
	"github.com/dupfind/dupfind/internal/driver"
)

// Run resolves fv into a layered configuration profile, then runs a full
// duplicate scan of fv.Path, writing each report line to out as it is
// produced. It returns the completed scan's statistics.
//
// Run is the single entry point the CLI layer calls; it owns the
// translation from CLI flag values to a driver.Run invocation so that
// command implementations stay free of scan orchestration.
func Run(ctx context.Context, fv *config.FlagValues, cmd *cobra.Command, out io.Writer) (*Stats, error) {
	resolved, err := config.Resolve(config.ResolveOptions{
		TargetDir: fv.Path,
		CLIFlags:  config.ToCLIFlags(fv, cmd),
	})
	if err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}

	sink := classifier.SinkFunc(func(r classifier.Report) {
		fmt.Fprintln(out, r.String())
	})

	return driver.Run(ctx, fv.Path, resolved.Profile, sink, nil)
}
