// Package cli implements the Cobra command hierarchy for the dupfind CLI tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dupfind/dupfind/internal/config"
)

// configCmd is the parent command for configuration-related subcommands.
// Running `dupfind config` with no subcommand prints the help text.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long: `Configuration management commands for dupfind.

Use these subcommands to inspect your dupfind configuration:

  show      Show the fully resolved configuration with per-field source annotations
  discover  Show which configuration files were found on disk`,
	// No RunE: default Cobra behaviour will print help when no subcommand is given.
}

// configShowCmd shows the fully resolved configuration with source annotations.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved configuration with source annotations",
	Long: `Displays the complete resolved configuration showing exactly which source
(built-in default, global config, repo config, environment variable, or CLI flag)
provided each value. Useful for diagnosing unexpected configuration behavior.`,
	RunE: runConfigShow,
}

// configDiscoverCmd shows which config files were found on disk.
var configDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Show which configuration files were found",
	Long:  `Reports the paths of the repo and global configuration files dupfind would load, or "not found" if absent.`,
	RunE:  runConfigDiscover,
}

func init() {
	configShowCmd.Flags().Bool("json", false, "output as structured JSON")
	configShowCmd.Flags().String("profile", "", "profile name to show (default: active profile)")

	configDiscoverCmd.Flags().Bool("json", false, "output as structured JSON")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDiscoverCmd)
	rootCmd.AddCommand(configCmd)
}

// configFieldOrder lists the Profile fields in display order for `config show`.
var configFieldOrder = []string{
	"temp_dir",
	"follow_symlinks",
	"git_tracked_only",
	"respect_gitignore",
	"min_size",
	"workers",
	"log_format",
	"log_level",
	"fast_hash",
	"ignore",
	"include",
}

func configFieldValue(p *config.Profile, field string) any {
	switch field {
	case "temp_dir":
		return p.TempDir
	case "follow_symlinks":
		return p.FollowSymlinks
	case "git_tracked_only":
		return p.GitTrackedOnly
	case "respect_gitignore":
		return p.RespectGitignore
	case "min_size":
		return p.MinSize
	case "workers":
		return p.Workers
	case "log_format":
		return p.LogFormat
	case "log_level":
		return p.LogLevel
	case "fast_hash":
		return p.FastHash
	case "ignore":
		return p.Ignore
	case "include":
		return p.Include
	default:
		return nil
	}
}

// runConfigShow implements `dupfind config show`.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	profileName, _ := cmd.Flags().GetString("profile")

	out := cmd.OutOrStdout()

	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: profileName,
		TargetDir:   ".",
	})
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}

	return renderResolvedConfig(out, resolved, asJSON)
}

// renderResolvedConfig writes resolved's fields and their sources to out,
// either as a tab-aligned table or as JSON. Shared by `config show` and
// `profiles show`.
func renderResolvedConfig(out io.Writer, resolved *config.ResolvedConfig, asJSON bool) error {
	if asJSON {
		fields := make(map[string]any, len(configFieldOrder))
		sourcesByField := make(map[string]string, len(configFieldOrder))
		for _, field := range configFieldOrder {
			fields[field] = configFieldValue(resolved.Profile, field)
			sourcesByField[field] = resolved.Sources[field].String()
		}
		payload := map[string]any{
			"profile": resolved.ProfileName,
			"values":  fields,
			"sources": sourcesByField,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Fprintf(out, "Active profile: %s\n\n", resolved.ProfileName)
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE\tSOURCE")
	for _, field := range configFieldOrder {
		fmt.Fprintf(tw, "%s\t%v\t%s\n", field, configFieldValue(resolved.Profile, field), resolved.Sources[field])
	}
	return tw.Flush()
}

// runConfigDiscover implements `dupfind config discover`.
func runConfigDiscover(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	repoPath, err := config.DiscoverRepoConfig(".")
	if err != nil {
		return fmt.Errorf("discovering repo config: %w", err)
	}
	globalPath, err := config.DiscoverGlobalConfig()
	if err != nil {
		return fmt.Errorf("discovering global config: %w", err)
	}

	if asJSON {
		payload := map[string]string{
			"repo_config":   repoPath,
			"global_config": globalPath,
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	fmt.Fprintf(out, "repo config:   %s\n", displayOrNotFound(repoPath))
	fmt.Fprintf(out, "global config: %s\n", displayOrNotFound(globalPath))
	return nil
}

func displayOrNotFound(path string) string {
	if path == "" {
		return "not found"
	}
	return path
}
