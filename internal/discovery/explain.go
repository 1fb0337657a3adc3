package discovery

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExplainOptions mirrors the subset of config.Profile that affects routing
// decisions, passed in explicitly so this package stays independent of the
// config package.
type ExplainOptions struct {
	Root             string
	Ignore           []string
	Include          []string
	RespectGitignore bool
	GitTrackedOnly   bool
	MinSize          int64
}

// ExplainStep is one rule evaluated while routing a path.
type ExplainStep struct {
	Rule    string
	Outcome string
}

// ExplainResult is the full routing trace for a single path.
type ExplainResult struct {
	Path       string
	Scanned    bool
	ExcludedBy string
	Steps      []ExplainStep
}

// Explain simulates the walker's routing decision for a single path relative
// to opts.Root, without performing a full tree walk. It reports whether the
// path would be scanned, ignored, or excluded, and the rule responsible.
func Explain(opts ExplainOptions, relPath string) (ExplainResult, error) {
	absPath := filepath.Join(opts.Root, relPath)
	info, statErr := os.Stat(absPath)
	isDir := statErr == nil && info.IsDir()

	result := ExplainResult{Path: relPath}

	defaultIgnorer := NewDefaultIgnoreMatcher()
	if defaultIgnorer.IsIgnored(relPath, isDir) {
		result.Steps = append(result.Steps, ExplainStep{Rule: "default ignore", Outcome: "matched"})
		result.ExcludedBy = "default ignore pattern"
		return result, nil
	}
	result.Steps = append(result.Steps, ExplainStep{Rule: "default ignore", Outcome: "no match"})

	dupfindignore, err := NewDupfindignoreMatcher(opts.Root)
	if err != nil {
		return result, fmt.Errorf("loading .dupfindignore: %w", err)
	}
	if dupfindignore.IsIgnored(relPath, isDir) {
		result.Steps = append(result.Steps, ExplainStep{Rule: ".dupfindignore", Outcome: "matched"})
		result.ExcludedBy = ".dupfindignore pattern"
		return result, nil
	}
	result.Steps = append(result.Steps, ExplainStep{Rule: ".dupfindignore", Outcome: "no match"})

	if opts.RespectGitignore {
		gitignoreMatcher, err := NewGitignoreMatcher(opts.Root)
		if err != nil {
			return result, fmt.Errorf("loading .gitignore: %w", err)
		}
		if gitignoreMatcher.IsIgnored(relPath, isDir) {
			result.Steps = append(result.Steps, ExplainStep{Rule: ".gitignore", Outcome: "matched"})
			result.ExcludedBy = ".gitignore pattern"
			return result, nil
		}
		result.Steps = append(result.Steps, ExplainStep{Rule: ".gitignore", Outcome: "no match"})
	}

	filter := NewPatternFilter(PatternFilterOptions{Includes: opts.Include, Excludes: opts.Ignore})
	if filter.HasFilters() && !filter.Matches(relPath) {
		result.Steps = append(result.Steps, ExplainStep{Rule: "include/exclude patterns", Outcome: "excluded"})
		result.ExcludedBy = "--ignore/--include pattern"
		return result, nil
	}
	result.Steps = append(result.Steps, ExplainStep{Rule: "include/exclude patterns", Outcome: "passed"})

	if opts.GitTrackedOnly {
		tracked, err := GitTrackedFiles(opts.Root)
		if err != nil {
			return result, fmt.Errorf("listing git-tracked files: %w", err)
		}
		if !tracked[filepath.ToSlash(relPath)] {
			result.Steps = append(result.Steps, ExplainStep{Rule: "git-tracked-only", Outcome: "not tracked"})
			result.ExcludedBy = "not tracked by git"
			return result, nil
		}
		result.Steps = append(result.Steps, ExplainStep{Rule: "git-tracked-only", Outcome: "tracked"})
	}

	if !isDir {
		if statErr != nil {
			result.Steps = append(result.Steps, ExplainStep{Rule: "stat", Outcome: statErr.Error()})
			result.ExcludedBy = "unreadable"
			return result, nil
		}
		if info.Size() == 0 {
			result.Steps = append(result.Steps, ExplainStep{Rule: "size", Outcome: "empty file"})
			result.ExcludedBy = "zero-length file"
			return result, nil
		}
		if opts.MinSize > 0 && info.Size() < opts.MinSize {
			result.Steps = append(result.Steps, ExplainStep{Rule: "min-size", Outcome: fmt.Sprintf("%d < %d", info.Size(), opts.MinSize)})
			result.ExcludedBy = "below --min-size"
			return result, nil
		}
		result.Steps = append(result.Steps, ExplainStep{Rule: "size", Outcome: "eligible"})
	}

	result.Scanned = true
	return result, nil
}
