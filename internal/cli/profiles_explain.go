package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/dupfind/dupfind/internal/config"
	"github.com/dupfind/dupfind/internal/discovery"
)

// profilesExplainCmd shows how the active profile routes a specific path.
var profilesExplainCmd = &cobra.Command{
	Use:   "explain <path>",
	Short: "Show how the active profile routes a path",
	Long: `Simulate the discovery pipeline for a given path and show the full rule
trace: which ignore patterns, include/exclude filters, git-tracked-only, and
min-size checks apply, and whether the path would be scanned or excluded.

Pass a glob pattern (e.g. "src/**/*.ts") to explain multiple matching paths.
Use --profile to explain against a specific named profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runProfilesExplain,
	ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveDefault
	},
}

func init() {
	profilesExplainCmd.Flags().String("profile", "", "profile name to explain against")
	profilesCmd.AddCommand(profilesExplainCmd)
}

// runProfilesExplain implements `dupfind profiles explain <path>`.
func runProfilesExplain(cmd *cobra.Command, args []string) error {
	targetPath := args[0]
	profileFlag, _ := cmd.Flags().GetString("profile")
	out := cmd.OutOrStdout()

	resolveOpts := config.ResolveOptions{TargetDir: "."}
	if profileFlag != "" {
		resolveOpts.ProfileName = profileFlag
	}
	resolved, err := config.Resolve(resolveOpts)
	if err != nil {
		return fmt.Errorf("resolving profile: %w", err)
	}

	explainOpts := discovery.ExplainOptions{
		Root:             ".",
		Ignore:           resolved.Profile.Ignore,
		Include:          resolved.Profile.Include,
		RespectGitignore: resolved.Profile.RespectGitignore,
		GitTrackedOnly:   resolved.Profile.GitTrackedOnly,
		MinSize:          resolved.Profile.MinSize,
	}

	isGlob := strings.ContainsAny(targetPath, "*?[{")

	if isGlob {
		matches, err := doublestar.Glob(os.DirFS("."), targetPath)
		if err != nil {
			return fmt.Errorf("expanding glob %q: %w", targetPath, err)
		}
		if len(matches) == 0 {
			fmt.Fprintf(out, "No paths matched glob pattern %q\n", targetPath)
			return nil
		}
		for i, match := range matches {
			if i > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, strings.Repeat("-", 60))
				fmt.Fprintln(out)
			}
			result, err := discovery.Explain(explainOpts, match)
			if err != nil {
				return fmt.Errorf("explaining %s: %w", match, err)
			}
			printExplainResult(out, resolved.ProfileName, result)
		}
		return nil
	}

	result, err := discovery.Explain(explainOpts, targetPath)
	if err != nil {
		return fmt.Errorf("explaining %s: %w", targetPath, err)
	}
	printExplainResult(out, resolved.ProfileName, result)
	return nil
}

// printExplainResult formats and writes a single ExplainResult to w.
func printExplainResult(w io.Writer, profileName string, result discovery.ExplainResult) {
	fmt.Fprintf(w, "Explaining: %s\n", result.Path)
	fmt.Fprintf(w, "Profile: %s\n", profileName)
	fmt.Fprintln(w)

	if result.Scanned {
		fmt.Fprintln(w, "  Status: SCANNED")
	} else {
		fmt.Fprintln(w, "  Status: EXCLUDED")
		fmt.Fprintf(w, "  Excluded by: %s\n", result.ExcludedBy)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rule trace:")
	for i, step := range result.Steps {
		fmt.Fprintf(w, "  %d. %s: %s\n", i+1, step.Rule, step.Outcome)
	}
}
