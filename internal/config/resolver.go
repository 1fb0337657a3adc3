package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	koanf "github.com/knadh/koanf/v2"
	"github.com/knadh/koanf/providers/confmap"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// ProfileName selects a named profile from loaded configs.
	// If empty, the DUPFIND_PROFILE env var is checked, then "default" is used.
	ProfileName string

	// ProfileFile is a standalone profile TOML file path (--profile-file flag).
	// When set, the repo config (dupfind.toml) is not loaded.
	ProfileFile string

	// TargetDir is the directory from which dupfind.toml is searched for,
	// walking up through its parents (see DiscoverRepoConfig).
	// Defaults to "." if empty.
	TargetDir string

	// GlobalConfigPath overrides the default ~/.config/dupfind/config.toml.
	// Useful for testing.
	GlobalConfigPath string

	// CLIFlags holds explicit CLI flag overrides (highest precedence).
	// Keys are flat Profile field names: "temp_dir", "follow_symlinks", etc.
	CLIFlags map[string]any
}

// ResolvedConfig is the result of multi-source configuration resolution.
type ResolvedConfig struct {
	// Profile is the final merged profile ready for use by the pipeline.
	Profile *Profile

	// Sources tracks which layer each field value came from.
	Sources SourceMap

	// ProfileName is the name of the resolved profile.
	ProfileName string
}

// Resolve runs the 5-layer configuration resolution pipeline:
//  1. Built-in defaults
//  2. Global config (~/.config/dupfind/config.toml)
//  3. Repository config (dupfind.toml found by DiscoverRepoConfig from
//     TargetDir upward) OR standalone profile file
//  4. Environment variables (DUPFIND_* prefix)
//  5. CLI flags (highest precedence)
//
// Missing config files are silently ignored. Invalid files return errors.
// A named profile other than "default" that no loaded config defines
// returns an error naming that profile; the profile names that are
// available are only written to the debug log.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	// Determine profile name: explicit option → DUPFIND_PROFILE env → "default".
	profileName := opts.ProfileName
	if profileName == "" {
		if v := os.Getenv(EnvProfile); v != "" {
			profileName = v
		} else {
			profileName = "default"
		}
	}

	slog.Debug("resolving config",
		"profile", profileName,
		"targetDir", opts.TargetDir,
		"profileFile", opts.ProfileFile,
	)

	k := koanf.New(".")
	sources := make(SourceMap)

	// ── Layer 1: built-in defaults ─────────────────────────────────────────
	defaultProfile := DefaultProfile()
	if err := loadLayer(k, profileToFlatMap(defaultProfile), sources, SourceDefault); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Track whether the named profile was found in at least one file layer.
	profileFound := false

	// ── Layer 2: global config ─────────────────────────────────────────────
	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath = filepath.Join(home, ".config", "dupfind", "config.toml")
		}
	}

	if globalPath != "" {
		found, err := loadFileLayer(k, globalPath, profileName, sources, SourceGlobal)
		if err != nil {
			return nil, err
		}
		if found {
			profileFound = true
		}
	}

	// ── Layer 3: repo config OR standalone profile file ────────────────────
	if opts.ProfileFile != "" {
		found, err := loadFileLayer(k, opts.ProfileFile, profileName, sources, SourceRepo)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("profile %q not found in profile file %s", profileName, opts.ProfileFile)
		}
		profileFound = true
	} else {
		targetDir := opts.TargetDir
		if targetDir == "" {
			targetDir = "."
		}
		repoConfigPath, err := DiscoverRepoConfig(targetDir)
		if err != nil {
			return nil, err
		}
		if repoConfigPath != "" {
			found, err := loadFileLayer(k, repoConfigPath, profileName, sources, SourceRepo)
			if err != nil {
				return nil, err
			}
			if found {
				profileFound = true
			}
		}
	}

	// If a non-default profile was requested but not found, return a helpful error.
	if profileName != "default" && !profileFound {
		return nil, fmt.Errorf("profile %q not found in any config file", profileName)
	}

	// ── Layer 4: environment variables ────────────────────────────────────
	envMap := buildEnvMap()
	if len(envMap) > 0 {
		if err := loadLayer(k, envMap, sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	// ── Layer 5: CLI flags ─────────────────────────────────────────────────
	if len(opts.CLIFlags) > 0 {
		if err := loadLayer(k, opts.CLIFlags, sources, SourceFlag); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	finalProfile := flatMapToProfile(k)

	slog.Debug("config resolved",
		"profile", profileName,
		"logFormat", finalProfile.LogFormat,
		"logLevel", finalProfile.LogLevel,
		"gitTrackedOnly", finalProfile.GitTrackedOnly,
	)

	return &ResolvedConfig{
		Profile:     finalProfile,
		Sources:     sources,
		ProfileName: profileName,
	}, nil
}

// loadFileLayer loads a named profile from a TOML config file, merges its
// explicitly-set fields into k, and records source attribution. Missing files
// and missing profiles are silently skipped (returns false, nil). Parse errors
// and I/O errors are returned.
func loadFileLayer(k *koanf.Koanf, path, profileName string, sources SourceMap, src Source) (bool, error) {
	flat, err := extractProfileFlat(path, profileName)
	if err != nil {
		return false, fmt.Errorf("loading config %s: %w", path, err)
	}
	if flat == nil {
		return false, nil
	}

	slog.Debug("loading profile from config",
		"profile", profileName,
		"path", path,
		"source", src.String(),
	)

	if err := loadLayer(k, flat, sources, src); err != nil {
		return false, err
	}
	return true, nil
}

// extractProfileFlat parses a TOML config file into a raw Go map and returns a
// flat koanf-compatible map containing only the fields that are explicitly
// present in the TOML for the given profile. Returns nil if the file does not
// exist or the profile is not found in the file.
func extractProfileFlat(path, profileName string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	// Parse into a raw map so we only see keys present in the TOML file.
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	profilesRaw, ok := raw["profile"].(map[string]interface{})
	if !ok {
		available := listConfigProfileNames(path)
		slog.Debug("no [profile] section in config",
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	profileRaw, ok := profilesRaw[profileName].(map[string]interface{})
	if !ok {
		available := make([]string, 0, len(profilesRaw))
		for name := range profilesRaw {
			available = append(available, name)
		}
		sort.Strings(available)
		slog.Debug("profile not found in config",
			"profile", profileName,
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	return flattenProfileRaw(profileRaw), nil
}

// listConfigProfileNames returns profile names from a TOML file, for debug
// logging. Returns nil on any error.
func listConfigProfileNames(path string) []string {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil
	}
	profiles, ok := raw["profile"].(map[string]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flattenProfileRaw converts a raw TOML profile map (as decoded by
// BurntSushi/toml into map[string]interface{}) into a flat koanf-compatible
// map. Only fields explicitly present in the raw map are included.
func flattenProfileRaw(raw map[string]interface{}) map[string]any {
	flat := make(map[string]any)

	// Scalar string fields.
	for _, key := range []string{"temp_dir", "log_format", "log_level"} {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	// Boolean fields.
	for _, key := range []string{"follow_symlinks", "git_tracked_only", "respect_gitignore", "fast_hash"} {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	// Integer fields.
	for _, key := range []string{"min_size", "workers"} {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	// Slice fields.
	for _, key := range []string{"ignore", "include"} {
		if v, ok := raw[key]; ok {
			flat[key] = rawToStringSlice(v)
		}
	}

	return flat
}

// rawToStringSlice converts a raw TOML array value ([]interface{}) into
// []string. Returns nil for unrecognised types.
func rawToStringSlice(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// loadLayer merges a flat map into k and marks every key in the map as
// originating from src. This approach correctly attributes source even when
// a later layer provides the same value as a prior layer (e.g. CLI flag
// setting the same value as an env var).
func loadLayer(k *koanf.Koanf, m map[string]any, sources SourceMap, src Source) error {
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merge layer %s: %w", src.String(), err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

// profileToFlatMap converts a Profile to a flat map for koanf's confmap
// provider. All fields are included (used for the defaults layer where every
// field has an authoritative default value).
func profileToFlatMap(p *Profile) map[string]any {
	return map[string]any{
		"temp_dir":          p.TempDir,
		"follow_symlinks":   p.FollowSymlinks,
		"git_tracked_only":  p.GitTrackedOnly,
		"respect_gitignore": p.RespectGitignore,
		"min_size":          p.MinSize,
		"workers":           p.Workers,
		"log_format":        p.LogFormat,
		"log_level":         p.LogLevel,
		"fast_hash":         p.FastHash,

		"ignore":  p.Ignore,
		"include": p.Include,
	}
}

// flatMapToProfile converts the current koanf state into a Profile struct.
func flatMapToProfile(k *koanf.Koanf) *Profile {
	return &Profile{
		TempDir:          k.String("temp_dir"),
		FollowSymlinks:   k.Bool("follow_symlinks"),
		GitTrackedOnly:   k.Bool("git_tracked_only"),
		RespectGitignore: k.Bool("respect_gitignore"),
		MinSize:          k.Int64("min_size"),
		Workers:          k.Int("workers"),
		LogFormat:        k.String("log_format"),
		LogLevel:         k.String("log_level"),
		FastHash:         k.Bool("fast_hash"),

		Ignore:  k.Strings("ignore"),
		Include: k.Strings("include"),
	}
}
