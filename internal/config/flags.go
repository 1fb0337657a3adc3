package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// FlagValues collects all parsed global flag values from the CLI. This struct
// is populated by BindFlags and passed to ValidateFlags, then converted to a
// CLIFlags map for config.Resolve via ToCLIFlags.
type FlagValues struct {
	Path string // positional scan root, defaults to "."

	TempDir          string
	FollowSymlinks   bool
	Ignore           []string
	Include          []string
	GitTrackedOnly   bool
	RespectGitignore bool
	MinSize          int64 // bytes, parsed from minSizeRaw
	FastHash         bool

	LogFormat string
	LogLevel  string

	Verbose  bool
	Quiet    bool
	Yes      bool
	Progress bool
}

// minSizeRaw holds the raw string value for --min-size before parsing. This
// is a package-level variable because Cobra needs a string target for
// binding; it is parsed into FlagValues.MinSize during validation.
var minSizeRaw string

// BindFlags registers all global persistent flags on the given Cobra command
// and returns a FlagValues pointer that will be populated when the command is
// executed. Callers should access the returned struct after flag parsing.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	pf := cmd.PersistentFlags()
	pf.StringVar(&fv.TempDir, "temp-dir", "", "directory for sorted-run temporary files (default: OS temp dir)")
	pf.BoolVar(&fv.FollowSymlinks, "follow-symlinks", true, "follow symlinks to regular files")
	pf.StringArrayVar(&fv.Ignore, "ignore", nil, "glob pattern to exclude from the scan (repeatable)")
	pf.StringArrayVar(&fv.Include, "include", nil, "glob pattern a file must match to be scanned; --ignore still wins (repeatable)")
	pf.BoolVar(&fv.GitTrackedOnly, "git-tracked-only", false, "only scan files tracked by git")
	pf.BoolVar(&fv.RespectGitignore, "respect-gitignore", false, "also exclude paths matched by .gitignore files")
	pf.StringVar(&minSizeRaw, "min-size", "0", "skip files smaller than this size (e.g. 1KB, 4MB)")
	pf.BoolVar(&fv.FastHash, "fast-hash", false, "use xxh3 instead of Adler-32 for the pre-comparison checksum pass")
	pf.StringVar(&fv.LogFormat, "log-format", "", "log output format: text, json")
	pf.StringVar(&fv.LogLevel, "log-level", "", "minimum logged severity: debug, info, warn, error")
	pf.BoolVarP(&fv.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&fv.Quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVar(&fv.Yes, "yes", false, "skip confirmation prompts")
	pf.BoolVar(&fv.Progress, "progress", false, "show a live progress indicator instead of streaming reports")

	return fv
}

// ValidateFlags checks the parsed flag values for correctness and mutual
// exclusion, and parses --min-size. Call this from PersistentPreRunE after
// Cobra has parsed the flags and positional arguments.
//
// Environment variable overrides are intentionally not handled here: the
// DUPFIND_* layer is applied inside config.Resolve itself, so flags only
// need to report what was explicitly set on the command line (see
// ToCLIFlags). Duplicating that logic here would let the two layers
// disagree about precedence.
func ValidateFlags(fv *FlagValues, cmd *cobra.Command) error {
	if fv.Verbose && fv.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	if fv.LogFormat != "" {
		switch strings.ToLower(fv.LogFormat) {
		case "text", "json":
		default:
			return fmt.Errorf("--log-format: invalid value %q (allowed: text, json)", fv.LogFormat)
		}
	}

	if fv.LogLevel != "" {
		switch strings.ToLower(fv.LogLevel) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("--log-level: invalid value %q (allowed: debug, info, warn, error)", fv.LogLevel)
		}
	}

	size, err := ParseSize(minSizeRaw)
	if err != nil {
		return fmt.Errorf("--min-size: %w", err)
	}
	fv.MinSize = size

	if len(cmd.Flags().Args()) > 1 {
		return fmt.Errorf("expected at most one positional argument (scan root), got %d", len(cmd.Flags().Args()))
	}

	return nil
}

// ToCLIFlags converts the flags that were explicitly set on the command line
// into a flat map suitable for ResolveOptions.CLIFlags. Only explicitly
// changed flags are included, so unset flags fall through to lower-precedence
// layers (env vars, repo config, global config, defaults) instead of
// clobbering them with a zero value.
func ToCLIFlags(fv *FlagValues, cmd *cobra.Command) map[string]any {
	flat := make(map[string]any)
	changed := cmd.Flags().Changed

	if changed("temp-dir") {
		flat["temp_dir"] = fv.TempDir
	}
	if changed("follow-symlinks") {
		flat["follow_symlinks"] = fv.FollowSymlinks
	}
	if changed("ignore") {
		flat["ignore"] = fv.Ignore
	}
	if changed("include") {
		flat["include"] = fv.Include
	}
	if changed("git-tracked-only") {
		flat["git_tracked_only"] = fv.GitTrackedOnly
	}
	if changed("respect-gitignore") {
		flat["respect_gitignore"] = fv.RespectGitignore
	}
	if changed("min-size") {
		flat["min_size"] = fv.MinSize
	}
	if changed("fast-hash") {
		flat["fast_hash"] = fv.FastHash
	}
	if changed("log-format") {
		flat["log_format"] = fv.LogFormat
	}
	if changed("log-level") {
		flat["log_level"] = fv.LogLevel
	}

	return flat
}

// ParseSize parses a human-readable size string into bytes. It supports KB, MB,
// and GB suffixes (case-insensitive). Plain numbers without a suffix are treated
// as bytes. KB = 1024, MB = 1048576, GB = 1073741824.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)

	var suffix string
	var multiplier int64

	switch {
	case strings.HasSuffix(upper, "GB"):
		suffix = "GB"
		multiplier = 1024 * 1024 * 1024
	case strings.HasSuffix(upper, "MB"):
		suffix = "MB"
		multiplier = 1024 * 1024
	case strings.HasSuffix(upper, "KB"):
		suffix = "KB"
		multiplier = 1024
	default:
		// Plain number, treat as bytes
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return n, nil
	}

	numStr := strings.TrimSpace(s[:len(s)-len(suffix)])
	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		// Try float for things like "1.5MB"
		f, ferr := strconv.ParseFloat(numStr, 64)
		if ferr != nil {
			return 0, fmt.Errorf("invalid size: %q", s)
		}
		if f < 0 {
			return 0, fmt.Errorf("size must be non-negative: %q", s)
		}
		return int64(f * float64(multiplier)), nil
	}
	if n < 0 {
		return 0, fmt.Errorf("size must be non-negative: %q", s)
	}
	return n * multiplier, nil
}

// applyPositionalPath sets fv.Path from the command's positional arguments,
// defaulting to the current directory when none was given.
func applyPositionalPath(fv *FlagValues, args []string) {
	if len(args) == 0 {
		fv.Path = "."
		return
	}
	fv.Path = args[0]
}
