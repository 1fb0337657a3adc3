// Package discovery implements single-threaded directory traversal and
// ignore/filter pattern matching for the file discovery stage.
package discovery

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dupfind/dupfind/internal/classifier"
	"github.com/dupfind/dupfind/internal/sortedrun"
)

// WalkerConfig holds configuration for a single traversal.
type WalkerConfig struct {
	// Root is the target directory to walk. Must already be resolved to an
	// absolute, existing directory; Walk does not re-validate it.
	Root string

	// GitignoreMatcher handles .gitignore pattern matching.
	GitignoreMatcher Ignorer

	// DupfindignoreMatcher handles .dupfindignore pattern matching.
	DupfindignoreMatcher Ignorer

	// DefaultIgnorer handles built-in default ignore patterns.
	DefaultIgnorer Ignorer

	// PatternFilter applies include/exclude glob filtering.
	PatternFilter *PatternFilter

	// GitTrackedOnly restricts traversal to files tracked by Git.
	GitTrackedOnly bool

	// FollowFileSymlinks controls whether symbolic links to regular files
	// are followed and reported. Directory symlinks are never followed,
	// regardless of this setting, to prevent cycles. Defaults to true.
	FollowFileSymlinks bool

	// MinSize is the minimum file size in bytes considered during the
	// walk. Files strictly smaller are skipped before reaching the
	// collector. Zero means no floor beyond the always-applied
	// zero-length skip.
	MinSize int64
}

// Stats accumulates counters describing a completed walk.
type Stats struct {
	Visited        int
	Pushed         int
	SkippedEmpty   int
	SkippedIgnored int
	SkippedUnread  int
	SkippedOther   int
	SkippedMinSize int
}

// Walker performs a depth-first, single-threaded traversal of a directory
// tree, pushing one (length\inodeId, path) entry per eligible regular file
// into the supplied SortedCollector.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a new Walker.
func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{logger: logger.With("component", "walker")}
}

// Walk traverses cfg.Root and pushes one entry per eligible regular file
// into collector. It returns traversal statistics. A non-nil error means
// the traversal was aborted; any entries already pushed remain in
// collector's in-memory run or on-disk sorted file.
func (w *Walker) Walk(cfg WalkerConfig, collector *sortedrun.Collector) (Stats, error) {
	var stats Stats

	composite := NewCompositeIgnorer(cfg.DefaultIgnorer, cfg.GitignoreMatcher, cfg.DupfindignoreMatcher)

	var gitTracked map[string]bool
	if cfg.GitTrackedOnly {
		tracked, err := GitTrackedFiles(cfg.Root)
		if err != nil {
			return stats, fmt.Errorf("walker: loading git-tracked files: %w", err)
		}
		gitTracked = tracked
	}

	err := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Debug("walk error, skipping", "path", path, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(cfg.Root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		isDir := d.IsDir()

		if isDir && d.Name() == ".git" {
			return fs.SkipDir
		}

		if composite.IsIgnored(relPath, isDir) {
			if isDir {
				return fs.SkipDir
			}
			stats.SkippedIgnored++
			return nil
		}

		// Directory symlinks are never followed, per the cycle-prevention
		// policy: filepath.WalkDir itself does not descend into symlinked
		// directories, so no special handling is needed here beyond not
		// overriding that behavior.
		if isDir {
			return nil
		}

		isSymlink := d.Type()&os.ModeSymlink != 0
		targetPath := path
		if isSymlink {
			if !cfg.FollowFileSymlinks {
				stats.SkippedOther++
				return nil
			}
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				w.logger.Debug("dangling or unresolvable symlink, skipping", "path", relPath, "error", err)
				stats.SkippedUnread++
				return nil
			}
			info, err := os.Stat(resolved)
			if err != nil || info.IsDir() {
				// Symlink resolves to a directory or is otherwise unusable
				// as a file; directory symlinks are never followed.
				stats.SkippedOther++
				return nil
			}
			targetPath = resolved
		}

		if cfg.GitTrackedOnly && gitTracked != nil && !gitTracked[relPath] {
			stats.SkippedIgnored++
			return nil
		}

		if cfg.PatternFilter != nil && cfg.PatternFilter.HasFilters() && !cfg.PatternFilter.Matches(relPath) {
			stats.SkippedIgnored++
			return nil
		}

		stats.Visited++

		info, err := os.Stat(targetPath)
		if err != nil {
			w.logger.Debug("stat failed, skipping", "path", relPath, "error", err)
			stats.SkippedUnread++
			return nil
		}
		if !info.Mode().IsRegular() {
			stats.SkippedOther++
			return nil
		}
		if info.Size() == 0 {
			stats.SkippedEmpty++
			return nil
		}
		if cfg.MinSize > 0 && info.Size() < cfg.MinSize {
			stats.SkippedMinSize++
			return nil
		}
		if !isReadable(targetPath) {
			stats.SkippedUnread++
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}

		inodeID := inodeIdentity(info)
		key := classifier.FileKey(info.Size(), inodeID)
		if err := collector.Push(key, absPath); err != nil {
			return fmt.Errorf("pushing %s: %w", absPath, err)
		}
		stats.Pushed++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walker: traversing %s: %w", cfg.Root, err)
	}
	return stats, nil
}

// isReadable reports whether the process can open path for reading. A
// failed open here is treated as "unreadable", matching the walker's
// mandate to skip files the process cannot read.
func isReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
