package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// validLogFormats lists the only accepted values for Profile.LogFormat.
// An empty string is valid for profiles that inherit the value from a parent.
var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
	"":     true,
}

// validLogLevels lists the only accepted values for Profile.LogLevel.
// An empty string is valid for profiles that inherit the value from a parent.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"":      true,
}

// maxInheritanceWarningDepth is the chain length above which validation emits
// a warning about deep inheritance (mirrors the resolver constant).
const maxInheritanceWarningDepth = 3

// Validate inspects every profile in cfg and returns a slice of
// ValidationErrors describing hard errors and warnings found in the
// configuration. It does not stop at the first error; all profiles are
// checked and all findings are accumulated before returning.
//
// The returned slice is nil when no issues are found. Each element carries
// a Severity field of either "error" or "warning".
//
// Validate does not modify cfg.
func Validate(cfg *Config) []ValidationError {
	if cfg == nil {
		return nil
	}

	var results []ValidationError

	for name, profile := range cfg.Profile {
		if profile == nil {
			continue
		}
		errs := validateProfile(name, profile, cfg.Profile)
		results = append(results, errs...)
	}

	if len(results) > 0 {
		slog.Debug("config validation complete",
			"total_issues", len(results),
		)
	}

	return results
}

// validateProfile checks a single named profile and returns all validation
// errors and warnings for that profile.
func validateProfile(name string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	var results []ValidationError

	field := func(f string) string {
		return fmt.Sprintf("profile.%s.%s", name, f)
	}

	// ── Hard errors ────────────────────────────────────────────────────────

	if !validLogFormats[p.LogFormat] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("log_format"),
			Message:  fmt.Sprintf("log_format %q is invalid", p.LogFormat),
			Suggest:  "Valid formats: text, json",
		})
	}

	if !validLogLevels[p.LogLevel] {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("log_level"),
			Message:  fmt.Sprintf("log_level %q is invalid", p.LogLevel),
			Suggest:  "Valid levels: debug, info, warn, error",
		})
	}

	if p.MinSize < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("min_size"),
			Message:  fmt.Sprintf("min_size %d is negative", p.MinSize),
			Suggest:  "Set min_size to a non-negative byte count or remove it to use the default",
		})
	}

	if p.Workers < 0 {
		results = append(results, ValidationError{
			Severity: "error",
			Field:    field("workers"),
			Message:  fmt.Sprintf("workers %d is negative", p.Workers),
			Suggest:  "Set workers to a non-negative integer or remove it to use the default",
		})
	}

	// glob pattern validity
	results = append(results, validateGlobPatterns(name, p)...)

	// temp_dir writability
	results = append(results, validateTempDir(name, p)...)

	// circular inheritance
	if p.Extends != nil && *p.Extends != "" {
		if _, err := ResolveProfile(name, allProfiles); err != nil {
			if strings.Contains(err.Error(), "circular") {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    field("extends"),
					Message:  err.Error(),
					Suggest:  "Remove or restructure the extends chain to eliminate the cycle",
				})
			} else {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    field("extends"),
					Message:  fmt.Sprintf("extends %q: %s", *p.Extends, err.Error()),
					Suggest:  fmt.Sprintf("Define a profile named %q or update the extends value", *p.Extends),
				})
			}
		}
	}

	// ── Warnings ───────────────────────────────────────────────────────────

	// include entries that also appear in ignore (contradictory).
	results = append(results, warnIncludeInIgnore(name, p)...)

	// Inheritance depth > 3.
	results = append(results, warnDeepInheritance(name, p, allProfiles)...)

	return results
}

// validateGlobPatterns validates the Ignore and Include pattern lists and
// returns errors for any syntactically invalid glob pattern.
func validateGlobPatterns(profileName string, p *Profile) []ValidationError {
	var results []ValidationError

	field := func(f string) string {
		return fmt.Sprintf("profile.%s.%s", profileName, f)
	}

	type patternList struct {
		fieldPath string
		patterns  []string
	}

	lists := []patternList{
		{field("ignore"), p.Ignore},
		{field("include"), p.Include},
	}

	for _, list := range lists {
		for i, pattern := range list.patterns {
			if err := validateGlobPattern(pattern); err != nil {
				results = append(results, ValidationError{
					Severity: "error",
					Field:    fmt.Sprintf("%s[%d]", list.fieldPath, i),
					Message:  fmt.Sprintf("invalid glob pattern %q: %s", pattern, err.Error()),
					Suggest:  "Use doublestar glob syntax, e.g. \"**/*.go\" or \"src/**\"",
				})
			}
		}
	}

	return results
}

// validateGlobPattern checks whether pattern is syntactically valid according
// to the doublestar library. It uses doublestar.ValidatePattern which returns
// false for malformed patterns (e.g. unclosed character classes or alternations).
func validateGlobPattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("syntax error in pattern %q", pattern)
	}
	return nil
}

// validateTempDir checks that a non-empty TempDir either already exists as a
// writable directory, or has a writable parent so it can be created on the
// first sorted-run write.
func validateTempDir(profileName string, p *Profile) []ValidationError {
	if p.TempDir == "" {
		return nil
	}

	field := fmt.Sprintf("profile.%s.temp_dir", profileName)

	info, err := os.Stat(p.TempDir)
	if err == nil {
		if !info.IsDir() {
			return []ValidationError{{
				Severity: "error",
				Field:    field,
				Message:  fmt.Sprintf("temp_dir %q exists but is not a directory", p.TempDir),
				Suggest:  "Point temp_dir at a directory, or remove the setting to use the OS temp dir",
			}}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return []ValidationError{{
			Severity: "warning",
			Field:    field,
			Message:  fmt.Sprintf("temp_dir %q could not be checked: %s", p.TempDir, err.Error()),
		}}
	}

	parent := filepath.Dir(p.TempDir)
	if parentInfo, perr := os.Stat(parent); perr != nil || !parentInfo.IsDir() {
		return []ValidationError{{
			Severity: "error",
			Field:    field,
			Message:  fmt.Sprintf("temp_dir %q does not exist and its parent %q is not a usable directory", p.TempDir, parent),
			Suggest:  "Create the parent directory first, or choose a different temp_dir",
		}}
	}

	return nil
}

// warnIncludeInIgnore returns warnings for include entries that also appear
// verbatim in ignore (a pattern cannot both include and exclude the same
// path; discovery.PatternFilter silently lets the exclude win).
func warnIncludeInIgnore(profileName string, p *Profile) []ValidationError {
	if len(p.Include) == 0 || len(p.Ignore) == 0 {
		return nil
	}

	ignoreSet := make(map[string]bool, len(p.Ignore))
	for _, ig := range p.Ignore {
		ignoreSet[ig] = true
	}

	var results []ValidationError
	for i, inc := range p.Include {
		if ignoreSet[inc] {
			results = append(results, ValidationError{
				Severity: "warning",
				Field:    fmt.Sprintf("profile.%s.include[%d]", profileName, i),
				Message:  fmt.Sprintf("include pattern %q also appears in ignore", inc),
				Suggest:  fmt.Sprintf("Remove %q from ignore or from include", inc),
			})
		}
	}

	return results
}

// warnDeepInheritance returns a warning when the inheritance chain for the
// profile exceeds maxInheritanceWarningDepth levels.
func warnDeepInheritance(profileName string, p *Profile, allProfiles map[string]*Profile) []ValidationError {
	if p.Extends == nil || *p.Extends == "" {
		return nil
	}

	resolution, err := ResolveProfile(profileName, allProfiles)
	if err != nil {
		// Errors are already reported elsewhere (e.g. circular inheritance).
		return nil
	}

	depth := len(resolution.Chain)
	if depth <= maxInheritanceWarningDepth {
		return nil
	}

	return []ValidationError{
		{
			Severity: "warning",
			Field:    fmt.Sprintf("profile.%s.extends", profileName),
			Message: fmt.Sprintf(
				"inheritance chain is %d levels deep (%s)",
				depth,
				strings.Join(resolution.Chain, " -> "),
			),
			Suggest: "Flatten the inheritance chain to 3 levels or fewer for maintainability",
		},
	}
}

// Lint runs all Validate checks and additionally performs deeper static
// analysis of the configuration. It returns a slice of LintResult values that
// embed ValidationError for unified severity/field/message access.
//
// Lint-only checks include:
//   - Duplicate ignore entries: a pattern that appears more than once in
//     the same list. Only exact repeats are flagged; a pattern covered by
//     a broader one is not detected.
//   - Complexity score: profiles with many non-default fields set are
//     flagged to encourage splitting into focused sub-profiles.
//
// The returned slice is nil when no issues are found.
func Lint(cfg *Config) []LintResult {
	if cfg == nil {
		return nil
	}

	var results []LintResult

	// Include all Validate results as LintResults (Code left empty for these).
	for _, ve := range Validate(cfg) {
		results = append(results, LintResult{ValidationError: ve})
	}

	for name, profile := range cfg.Profile {
		if profile == nil {
			continue
		}
		results = append(results, lintProfile(name, profile)...)
	}

	return results
}

// lintProfile performs the deeper lint-only analysis for a single profile.
func lintProfile(profileName string, p *Profile) []LintResult {
	var results []LintResult

	results = append(results, lintDuplicateIgnorePatterns(profileName, p)...)
	results = append(results, lintComplexity(profileName, p)...)

	return results
}

// lintDuplicateIgnorePatterns detects exact-string duplicate entries within
// the ignore list. Doublestar has no notion of one pattern subsuming
// another in general, so only exact duplicates are flagged.
func lintDuplicateIgnorePatterns(profileName string, p *Profile) []LintResult {
	var results []LintResult

	seen := make(map[string]int) // pattern -> first index
	for i, pattern := range p.Ignore {
		if first, ok := seen[pattern]; ok {
			results = append(results, LintResult{
				ValidationError: ValidationError{
					Severity: "warning",
					Field:    fmt.Sprintf("profile.%s.ignore[%d]", profileName, i),
					Message:  fmt.Sprintf("pattern %q duplicates ignore[%d]", pattern, first),
					Suggest:  "Remove the duplicate entry",
				},
				Code: "duplicate-ignore-pattern",
			})
			continue
		}
		seen[pattern] = i
	}

	return results
}

// complexityThreshold is the number of non-default fields above which a
// profile is considered overly complex.
const complexityThreshold = 5

// lintComplexity computes the number of non-zero/non-empty fields in a profile
// and emits a warning when the count exceeds complexityThreshold.
func lintComplexity(profileName string, p *Profile) []LintResult {
	score := profileComplexityScore(p)
	if score <= complexityThreshold {
		return nil
	}

	return []LintResult{
		{
			ValidationError: ValidationError{
				Severity: "warning",
				Field:    fmt.Sprintf("profile.%s", profileName),
				Message:  fmt.Sprintf("profile has a complexity score of %d (threshold: %d)", score, complexityThreshold),
				Suggest:  "Consider splitting into multiple profiles connected via extends to improve maintainability",
			},
			Code: "complexity",
		},
	}
}

// profileComplexityScore counts the number of non-empty / non-zero fields in
// the profile. Scalar fields each count as 1; each non-empty slice counts as 1.
func profileComplexityScore(p *Profile) int {
	score := 0

	if p.TempDir != "" {
		score++
	}
	if len(p.Ignore) > 0 {
		score++
	}
	if len(p.Include) > 0 {
		score++
	}
	if p.GitTrackedOnly {
		score++
	}
	if p.RespectGitignore {
		score++
	}
	if p.FastHash {
		score++
	}
	if p.MinSize != 0 {
		score++
	}
	if p.Workers != 0 {
		score++
	}
	if p.LogFormat != "" {
		score++
	}
	if p.LogLevel != "" {
		score++
	}

	return score
}
