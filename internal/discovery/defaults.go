package discovery

import (
	"log/slog"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnorePatterns contains the built-in ignore patterns applied
// unless explicitly overridden. Duplicate scanning has no use for
// version-control metadata or machine-generated build output, so these
// directories are skipped by default even though they occasionally hide
// byte-identical files (e.g. vendored dependencies).
var DefaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	"dist/",
	"build/",
	".next/",
	"target/",
	"vendor/",
	".dupfind/",
}

// DefaultIgnoreMatcher compiles DefaultIgnorePatterns into a matcher that
// implements the Ignorer interface. It uses the same sabhiram/go-gitignore
// library as GitignoreMatcher for consistent pattern evaluation.
type DefaultIgnoreMatcher struct {
	matcher *gitignore.GitIgnore
	logger  *slog.Logger
}

// NewDefaultIgnoreMatcher creates a new DefaultIgnoreMatcher by compiling all
// DefaultIgnorePatterns. This function does not return an error because the
// default patterns are compile-time constants that are always valid.
func NewDefaultIgnoreMatcher() *DefaultIgnoreMatcher {
	compiled := gitignore.CompileIgnoreLines(DefaultIgnorePatterns...)

	logger := slog.Default().With("component", "default-ignore")
	logger.Debug("default ignore matcher initialized",
		"pattern_count", len(DefaultIgnorePatterns),
	)

	return &DefaultIgnoreMatcher{
		matcher: compiled,
		logger:  logger,
	}
}

// IsIgnored reports whether the given path matches any of the default ignore
// patterns. The path must be relative to the scan root (using forward
// slashes or OS-native separators). The isDir parameter indicates whether the
// path represents a directory, which is needed for directory-only patterns.
func (d *DefaultIgnoreMatcher) IsIgnored(path string, isDir bool) bool {
	normalizedPath := filepath.ToSlash(path)
	normalizedPath = strings.TrimPrefix(normalizedPath, "./")

	if normalizedPath == "" || normalizedPath == "." {
		return false
	}

	matchPath := normalizedPath
	if isDir && !strings.HasSuffix(matchPath, "/") {
		matchPath += "/"
	}

	if d.matcher.MatchesPath(matchPath) {
		d.logger.Debug("path matched default ignore", "path", normalizedPath)
		return true
	}

	return false
}

// PatternCount returns the number of default ignore patterns.
func (d *DefaultIgnoreMatcher) PatternCount() int {
	return len(DefaultIgnorePatterns)
}

// Compile-time interface compliance check.
var _ Ignorer = (*DefaultIgnoreMatcher)(nil)
