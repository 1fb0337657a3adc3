// Package driver wires the discovery, sorted-run, and classification stages
// into a single scan: walk the target directory, run the length/inode pass,
// run the checksum/content pass, and report findings as they are confirmed.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/dupfind/dupfind/internal/checksum"
	"github.com/dupfind/dupfind/internal/classifier"
	"github.com/dupfind/dupfind/internal/comparator"
	"github.com/dupfind/dupfind/internal/config"
	"github.com/dupfind/dupfind/internal/discovery"
	"github.com/dupfind/dupfind/internal/pipeline"
	"github.com/dupfind/dupfind/internal/sortedrun"
)

// Run performs a complete duplicate scan of root under profile, reporting
// each hard-link and duplicate finding to sink as it is produced, and
// returns summary statistics for the run.
//
// Only a missing or non-directory root is treated as a fatal input error,
// returned as a *pipeline.DupError. Every other failure encountered during
// traversal or classification is logged and reflected in the returned
// Stats; the run still completes with ExitSuccess, per the exit-code
// contract described in package pipeline. An interrupt delivered while the
// scan is running cancels the context passed to the next stage boundary
// rather than aborting mid-file, so a cancelled run still cleans up its
// temporary sorted files before returning.
func Run(ctx context.Context, root string, profile *config.Profile, sink classifier.Sink, logger *slog.Logger) (*pipeline.Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "driver")

	absRoot, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	tempDir := sortedrun.TempDirOrDefault(profile.TempDir)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("driver: preparing temp dir %s: %w", tempDir, err)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	stats := &pipeline.Stats{}
	var cleanup []string

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		paths, runErr := execute(gctx, absRoot, profile, tempDir, sink, stats, logger)
		cleanup = paths
		return runErr
	})

	if err := g.Wait(); err != nil {
		logger.Warn("scan ended early", "error", err)
	}

	for _, p := range cleanup {
		sortedrun.Remove(p, logger)
	}

	logger.Info("scan complete",
		"files_visited", stats.FilesVisited,
		"files_pushed", stats.FilesPushed,
		"files_skipped", stats.FilesSkipped,
		"hard_link_reports", stats.HardLinkReports,
		"dup_reports", stats.DupReports,
	)

	return stats, nil
}

// resolveRoot validates that root exists and is a directory, returning its
// absolute form. This is the only failure mode that produces a
// *pipeline.DupError.
func resolveRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", pipeline.NewInputError(fmt.Sprintf("resolving path %q", root), err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return "", pipeline.NewInputError(fmt.Sprintf("path %q does not exist", root), err)
	}
	if !info.IsDir() {
		return "", pipeline.NewInputError(fmt.Sprintf("path %q is not a directory", root), nil)
	}
	return absRoot, nil
}

// execute runs the discovery and two classification passes in sequence,
// returning the list of temporary sorted-run files the caller must clean
// up regardless of whether an error occurred.
func execute(ctx context.Context, root string, profile *config.Profile, tempDir string, sink classifier.Sink, stats *pipeline.Stats, logger *slog.Logger) ([]string, error) {
	var cleanup []string

	ignorers := buildIgnorers(root, profile, logger)
	filter := discovery.NewPatternFilter(discovery.PatternFilterOptions{
		Includes: profile.Include,
		Excludes: profile.Ignore,
	})

	walker := discovery.NewWalker(logger)
	firstPass := sortedrun.New(tempDir, logger)

	walkStats, err := walker.Walk(discovery.WalkerConfig{
		Root:                 root,
		GitignoreMatcher:     ignorers.gitignore,
		DupfindignoreMatcher: ignorers.dupfindignore,
		DefaultIgnorer:       ignorers.defaults,
		PatternFilter:        filter,
		GitTrackedOnly:       profile.GitTrackedOnly,
		FollowFileSymlinks:   profile.FollowSymlinks,
		MinSize:              profile.MinSize,
	}, firstPass)

	stats.FilesVisited += walkStats.Visited
	stats.FilesPushed += walkStats.Pushed
	stats.FilesSkipped += walkStats.SkippedEmpty + walkStats.SkippedIgnored +
		walkStats.SkippedUnread + walkStats.SkippedOther + walkStats.SkippedMinSize

	if err != nil {
		logger.Error("walk failed", "error", err)
		return cleanup, err
	}
	if ctx.Err() != nil {
		logger.Info("scan cancelled after discovery stage")
		return cleanup, ctx.Err()
	}

	firstSorted, ok, err := firstPass.Finish()
	if err != nil {
		logger.Error("flushing discovery run failed", "error", err)
		return cleanup, err
	}
	if !ok {
		logger.Info("no eligible files found")
		return cleanup, nil
	}
	cleanup = append(cleanup, firstSorted)

	chk := checksum.NewEngine()
	if profile.FastHash {
		chk = checksum.NewFastEngine()
	}
	cls := classifier.New(comparator.New(logger), chk, logger)
	counted := &countingSink{sink: sink, stats: stats}

	secondPass := sortedrun.New(tempDir, logger)
	if err := cls.PassOne(firstSorted, counted, secondPass); err != nil {
		logger.Error("pass one failed", "error", err)
		return cleanup, err
	}
	if ctx.Err() != nil {
		logger.Info("scan cancelled after pass one")
		return cleanup, ctx.Err()
	}

	secondSorted, ok, err := secondPass.Finish()
	if err != nil {
		logger.Error("flushing checksum run failed", "error", err)
		return cleanup, err
	}
	if !ok {
		return cleanup, nil
	}
	cleanup = append(cleanup, secondSorted)

	if err := cls.PassTwo(secondSorted, counted); err != nil {
		logger.Error("pass two failed", "error", err)
		return cleanup, err
	}

	return cleanup, nil
}

// ignorerSet bundles the Ignorer instances a single run needs. Any field
// may be a nil interface value; discovery.NewCompositeIgnorer skips nils.
type ignorerSet struct {
	defaults      discovery.Ignorer
	gitignore     discovery.Ignorer
	dupfindignore discovery.Ignorer
}

// buildIgnorers constructs the ignore matchers for a run. .dupfindignore
// is always honored; .gitignore is only loaded when the profile opts in,
// since that keeps the default traversal matching the baseline scan
// exactly.
func buildIgnorers(root string, profile *config.Profile, logger *slog.Logger) ignorerSet {
	set := ignorerSet{defaults: discovery.NewDefaultIgnoreMatcher()}

	if m, err := discovery.NewDupfindignoreMatcher(root); err != nil {
		logger.Warn("failed loading .dupfindignore files", "error", err)
	} else {
		set.dupfindignore = m
	}

	if profile.RespectGitignore {
		if m, err := discovery.NewGitignoreMatcher(root); err != nil {
			logger.Warn("failed loading .gitignore files", "error", err)
		} else {
			set.gitignore = m
		}
	}

	return set
}

// countingSink wraps a Sink, tallying report kinds into Stats before
// forwarding.
type countingSink struct {
	sink  classifier.Sink
	stats *pipeline.Stats
}

func (c *countingSink) Report(r classifier.Report) {
	if r.Kind == classifier.KindHardLink {
		c.stats.HardLinkReports++
	} else {
		c.stats.DupReports++
	}
	c.sink.Report(r)
}
