package config

import (
	"os"
	"strconv"
)

// Environment variable name constants for DUPFIND_ prefixed overrides.
const (
	// EnvProfile selects the named profile to activate.
	EnvProfile = "DUPFIND_PROFILE"
	// EnvTempDir overrides the sorted-run temporary directory.
	EnvTempDir = "DUPFIND_TEMP_DIR"
	// EnvFollowSymlinks overrides whether file symlinks are followed.
	EnvFollowSymlinks = "DUPFIND_FOLLOW_SYMLINKS"
	// EnvGitTrackedOnly overrides whether traversal is restricted to
	// git-tracked files.
	EnvGitTrackedOnly = "DUPFIND_GIT_TRACKED_ONLY"
	// EnvRespectGitignore overrides whether .gitignore files are honored
	// during traversal.
	EnvRespectGitignore = "DUPFIND_RESPECT_GITIGNORE"
	// EnvMinSize overrides the minimum file size floor, in bytes.
	EnvMinSize = "DUPFIND_MIN_SIZE"
	// EnvFastHash overrides whether the checksum pass uses xxh3 instead of
	// Adler-32.
	EnvFastHash = "DUPFIND_FAST_HASH"
	// EnvLogFormat overrides the log output format.
	EnvLogFormat = "DUPFIND_LOG_FORMAT"
	// EnvLogLevel overrides the minimum logged severity.
	EnvLogLevel = "DUPFIND_LOG_LEVEL"
)

// buildEnvMap reads DUPFIND_* environment variables and returns a flat map
// suitable for use with a koanf confmap provider. Only non-empty env vars
// that parse successfully are included. Invalid numeric/boolean values are
// silently skipped so that a bad env var does not block the entire
// resolution pipeline.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvTempDir); v != "" {
		m["temp_dir"] = v
	}
	if v := os.Getenv(EnvFollowSymlinks); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["follow_symlinks"] = b
		}
	}
	if v := os.Getenv(EnvGitTrackedOnly); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["git_tracked_only"] = b
		}
	}
	if v := os.Getenv(EnvRespectGitignore); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["respect_gitignore"] = b
		}
	}
	if v := os.Getenv(EnvMinSize); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			m["min_size"] = n
		}
	}
	if v := os.Getenv(EnvFastHash); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["fast_hash"] = b
		}
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		m["log_format"] = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		m["log_level"] = v
	}

	return m
}
