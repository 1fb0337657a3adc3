package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dupfind/dupfind/internal/config"
)

// profilesCmd is the parent command for all profile management subcommands.
// Running `dupfind profiles` with no subcommand prints the help text.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage dupfind configuration profiles",
	Long: `Profile management commands for dupfind.

Use these subcommands to discover and inspect your dupfind configuration:

  list     Show all available profiles from all config sources
  show     Display the fully resolved configuration for a named profile
  lint     Validate the configuration for errors and warnings
  explain  Show how a profile routes a specific path`,
	// No RunE: default Cobra behaviour will print help when no subcommand is given.
}

// profilesListCmd lists all profiles available in the current context.
var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles from all config sources",
	Long: `List all profiles that dupfind can resolve in the current directory.

Profiles are loaded from three sources (in precedence order):
  1. Built-in defaults
  2. Global config (~/.config/dupfind/config.toml)
  3. Repository config (dupfind.toml in or above the current directory)

The output shows each profile name, its source, and any parent it extends.`,
	RunE: runProfilesList,
}

// profilesShowCmd resolves and displays a named profile.
var profilesShowCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show the resolved configuration for a profile",
	Long: `Resolve the named profile (following its inheritance chain) and print the
fully merged configuration, with each field annotated by the source that
provided its value. Use --json for machine-readable output.

If no profile name is given, the active default profile is shown.`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              runProfilesShow,
	ValidArgsFunction: completeProfileNames,
}

func init() {
	profilesShowCmd.Flags().Bool("json", false, "output the resolved profile as JSON instead of a table")

	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)

	rootCmd.AddCommand(profilesCmd)
}

// ── profiles list ──────────────────────────────────────────────────────────

// profileEntry is a row in the profiles list table.
type profileEntry struct {
	name        string
	source      string
	extends     string
	description string
}

// runProfilesList implements `dupfind profiles list`.
func runProfilesList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	entries, err := collectProfileEntries()
	if err != nil {
		return fmt.Errorf("collecting profiles: %w", err)
	}

	fmt.Fprintln(out, "Available Profiles:")
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "  NAME\tSOURCE\tEXTENDS\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", e.name, e.source, e.extends, e.description)
	}
	return tw.Flush()
}

// collectProfileEntries builds the list of profile rows by querying all config
// sources. Missing or unreadable config files are silently skipped.
func collectProfileEntries() ([]profileEntry, error) {
	var entries []profileEntry

	// Built-in "default" is always present.
	entries = append(entries, profileEntry{
		name:        "default",
		source:      "built-in",
		extends:     "-",
		description: "Built-in defaults for any repository",
	})

	allProfiles, err := loadAllConfigProfiles()
	if err != nil {
		return nil, err
	}

	for _, ep := range allProfiles {
		if ep.name == "default" {
			continue
		}
		entries = append(entries, ep)
	}

	return entries, nil
}

// loadAllConfigProfiles loads profiles from global and repo config files. It
// returns deduplicated entries annotated with their source. Missing files are
// silently ignored.
func loadAllConfigProfiles() ([]profileEntry, error) {
	var entries []profileEntry
	seen := make(map[string]bool)

	addFromFile := func(path, sourceLabel string) {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			slog.Debug("skipping config file", "path", path, "err", err)
			return
		}
		for name, p := range cfg.Profile {
			if seen[name] {
				continue
			}
			seen[name] = true

			extends := "-"
			if p.Extends != nil && *p.Extends != "" {
				extends = *p.Extends
			}

			entries = append(entries, profileEntry{
				name:        name,
				source:      sourceLabel,
				extends:     extends,
				description: fmt.Sprintf("Loaded from %s", displayPath(path)),
			})
		}
	}

	globalPath, err := config.DiscoverGlobalConfig()
	if err != nil {
		slog.Debug("global config discovery failed", "err", err)
	} else if globalPath != "" {
		addFromFile(globalPath, "global")
	}

	repoPath, err := config.DiscoverRepoConfig(".")
	if err != nil {
		slog.Debug("repo config discovery failed", "err", err)
	} else if repoPath != "" {
		addFromFile(repoPath, "repo")
	}

	return entries, nil
}

// displayPath converts an absolute path to a shorter relative or tilde-prefixed
// path for display purposes.
func displayPath(path string) string {
	rel, err := filepath.Rel(".", path)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return "./" + rel
	}
	home, err := os.UserHomeDir()
	if err == nil && strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

// ── profiles show ──────────────────────────────────────────────────────────

// runProfilesShow implements `dupfind profiles show [profile]`.
func runProfilesShow(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	profileName := "default"
	if len(args) > 0 {
		profileName = args[0]
	}

	resolved, err := config.Resolve(config.ResolveOptions{
		ProfileName: profileName,
		TargetDir:   ".",
	})
	if err != nil {
		available, listErr := availableProfileNames()
		if listErr == nil && len(available) > 0 {
			return fmt.Errorf("%w\n\nAvailable profiles: %s", err, strings.Join(available, ", "))
		}
		return err
	}

	return renderResolvedConfig(cmd.OutOrStdout(), resolved, asJSON)
}

// availableProfileNames returns the names of all profiles from all config
// sources for use in error messages.
func availableProfileNames() ([]string, error) {
	entries, err := collectProfileEntries()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

// ── shell completions ──────────────────────────────────────────────────────

// completeProfileNames is a Cobra ValidArgsFunction that returns all known
// profile names from both config sources. Errors are silently swallowed so
// completions degrade gracefully.
func completeProfileNames(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names, err := availableProfileNames()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var filtered []string
	for _, n := range names {
		if strings.HasPrefix(n, toComplete) {
			filtered = append(filtered, n)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp
}
