package config

// Config is the top-level configuration type parsed from a dupfind.toml
// file. It holds a map of named profiles keyed by profile name. Profile
// names are case-sensitive. The special name "default" is the built-in
// fallback profile.
type Config struct {
	// Profile maps profile names to their configuration. Access via
	// cfg.Profile["default"] or cfg.Profile["ci"].
	Profile map[string]*Profile `toml:"profile"`
}

// Profile defines all settings for a single named profile. Fields with
// zero values are considered unset and will be filled in by the
// merge/inheritance pipeline. The Extends field enables profile
// inheritance.
type Profile struct {
	// Extends is the name of a parent profile to inherit from. When set,
	// all unset fields in this profile are filled from the named parent.
	// A nil pointer means no inheritance.
	Extends *string `toml:"extends"`

	// TempDir is the directory used for sorted-run temporary files. Empty
	// means the OS-standard temporary location.
	TempDir string `toml:"temp_dir"`

	// FollowSymlinks controls whether symbolic links to regular files are
	// followed and reported. Directory symlinks are never followed
	// regardless of this setting.
	FollowSymlinks bool `toml:"follow_symlinks"`

	// Ignore is the list of glob patterns for files and directories to
	// skip during traversal. Patterns are evaluated with doublestar.
	Ignore []string `toml:"ignore"`

	// Include is the list of glob patterns for files to explicitly
	// include even if they would otherwise be ignored.
	Include []string `toml:"include"`

	// GitTrackedOnly restricts traversal to files tracked by Git.
	GitTrackedOnly bool `toml:"git_tracked_only"`

	// RespectGitignore additionally excludes paths matched by .gitignore
	// files encountered during traversal, composed with Ignore/Include.
	// Off by default so the default traversal matches spec.md exactly.
	RespectGitignore bool `toml:"respect_gitignore"`

	// MinSize is the minimum file size in bytes considered during a scan.
	// Files strictly smaller are skipped before reaching the collector.
	// Zero-length files are always skipped regardless of this setting.
	MinSize int64 `toml:"min_size"`

	// Workers is reserved for a future concurrent walker/collector. The
	// current pipeline is single-producer/single-consumer throughout and
	// ignores this value; it exists so Validate has a non-negative-int
	// field to reject nonsensical input on.
	Workers int `toml:"workers"`

	// LogFormat controls the structured log encoding. Valid values:
	// "text", "json".
	LogFormat string `toml:"log_format"`

	// LogLevel controls the minimum logged severity. Valid values:
	// "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`

	// FastHash switches the pre-comparison checksum pass from Adler-32 to
	// xxh3, trading Adler-32's weaker distribution (and resulting higher
	// rate of checksum collisions falling through to byte comparison) for
	// a faster, better-distributed hash on large trees.
	FastHash bool `toml:"fast_hash"`
}
