// Package sortedrun implements an external-memory sorted multiset keyed by
// string. It accumulates entries in memory up to a cap, then flushes them
// to an on-disk sorted file, merging with any sorted file already produced
// by a prior flush.
package sortedrun

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MaxMapSize is the number of entries the in-memory run may hold before a
// flush is forced.
const MaxMapSize = 100_000

// Collector accumulates (key, path) entries and maintains a single growing
// on-disk sorted file. It is not safe for concurrent use; the pipeline this
// package supports is single-producer, single-consumer.
type Collector struct {
	tempDir string
	logger  *slog.Logger

	run     map[string][]string
	runSize int

	sortedFile string
	flushCount int
}

// New constructs a Collector that writes its temporary files under tempDir.
// tempDir must already exist.
func New(tempDir string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		tempDir: tempDir,
		logger:  logger.With("component", "sorted-collector"),
		run:     make(map[string][]string),
	}
}

// Push appends path under key to the in-memory run. If the run has reached
// MaxMapSize entries, it is flushed to disk before path is inserted.
func (c *Collector) Push(key, path string) error {
	if c.runSize >= MaxMapSize {
		if err := c.flush(); err != nil {
			return err
		}
	}
	c.run[key] = append(c.run[key], path)
	c.runSize++
	return nil
}

// Finish flushes any remaining in-memory entries and returns the path to
// the on-disk sorted file, or ("", false) if nothing was ever pushed.
func (c *Collector) Finish() (string, bool, error) {
	if c.runSize > 0 {
		if err := c.flush(); err != nil {
			return "", false, err
		}
	}
	return c.SortedFile()
}

// SortedFile returns the current on-disk sorted file, or ("", false) if
// none has been produced yet.
func (c *Collector) SortedFile() (string, bool) {
	if c.sortedFile == "" {
		return "", false
	}
	return c.sortedFile, true
}

// flush writes the in-memory run to disk, merging with any existing sorted
// file, and clears the in-memory run.
func (c *Collector) flush() error {
	sortedKeys := make([]string, 0, len(c.run))
	for k := range c.run {
		sortedKeys = append(sortedKeys, k)
	}
	sort.Strings(sortedKeys)

	newFile, err := c.newTempFile()
	if err != nil {
		return fmt.Errorf("sortedrun: creating temp file: %w", err)
	}

	if c.sortedFile == "" {
		if err := writeRun(newFile, sortedKeys, c.run); err != nil {
			newFile.Close()
			os.Remove(newFile.Name())
			c.logger.Warn("failed writing initial sorted run, collector left empty", "error", err)
			return nil
		}
		if err := newFile.Close(); err != nil {
			return fmt.Errorf("sortedrun: closing %s: %w", newFile.Name(), err)
		}
		c.sortedFile = newFile.Name()
		c.resetRun()
		c.flushCount++
		return nil
	}

	oldPath := c.sortedFile
	if err := mergeInto(newFile, oldPath, sortedKeys, c.run); err != nil {
		newFile.Close()
		os.Remove(newFile.Name())
		return fmt.Errorf("sortedrun: merging: %w", err)
	}
	if err := newFile.Close(); err != nil {
		return fmt.Errorf("sortedrun: closing %s: %w", newFile.Name(), err)
	}
	if err := os.Remove(oldPath); err != nil {
		c.logger.Warn("failed removing superseded sorted run", "path", oldPath, "error", err)
	}
	c.sortedFile = newFile.Name()
	c.resetRun()
	c.flushCount++
	return nil
}

func (c *Collector) resetRun() {
	c.run = make(map[string][]string)
	c.runSize = 0
}

func (c *Collector) newTempFile() (*os.File, error) {
	return os.CreateTemp(c.tempDir, "dupfind-run-*.sorted")
}

// writeRun writes the in-memory run to w in ascending key order, one
// key:path line per path, flattening each key's path list in insertion
// order.
func writeRun(w *os.File, sortedKeys []string, run map[string][]string) error {
	bw := bufio.NewWriter(w)
	for _, key := range sortedKeys {
		for _, path := range run[key] {
			if _, err := fmt.Fprintf(bw, "%s:%s\n", key, path); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// mergeInto performs a linear two-way merge of the existing sorted file at
// oldPath with the in-memory run, writing the result to w. On a tie between
// the next in-memory key and the next on-disk key, the on-disk line is
// emitted first; this preserves the temporal order of equal keys pushed
// across flush boundaries.
func mergeInto(w *os.File, oldPath string, sortedKeys []string, run map[string][]string) error {
	oldFile, err := os.Open(oldPath)
	if err != nil {
		return fmt.Errorf("opening existing sorted run %s: %w", oldPath, err)
	}
	defer oldFile.Close()

	scanner := bufio.NewScanner(oldFile)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	bw := bufio.NewWriter(w)

	var diskLine string
	var diskKey string
	haveDisk := advanceDisk(scanner, &diskLine, &diskKey)

	ki := 0
	for haveDisk && ki < len(sortedKeys) {
		runKey := sortedKeys[ki]
		if runKey >= diskKey {
			if _, err := fmt.Fprintln(bw, diskLine); err != nil {
				return err
			}
			haveDisk = advanceDisk(scanner, &diskLine, &diskKey)
			continue
		}
		if err := writeRunKey(bw, runKey, run); err != nil {
			return err
		}
		ki++
	}

	for haveDisk {
		if _, err := fmt.Fprintln(bw, diskLine); err != nil {
			return err
		}
		haveDisk = advanceDisk(scanner, &diskLine, &diskKey)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading existing sorted run %s: %w", oldPath, err)
	}

	for ; ki < len(sortedKeys); ki++ {
		if err := writeRunKey(bw, sortedKeys[ki], run); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeRunKey(bw *bufio.Writer, key string, run map[string][]string) error {
	for _, path := range run[key] {
		if _, err := fmt.Fprintf(bw, "%s:%s\n", key, path); err != nil {
			return err
		}
	}
	return nil
}

func advanceDisk(scanner *bufio.Scanner, line, key *string) bool {
	if !scanner.Scan() {
		*line = ""
		*key = ""
		return false
	}
	*line = scanner.Text()
	idx := strings.IndexByte(*line, ':')
	if idx < 0 {
		*key = *line
	} else {
		*key = (*line)[:idx]
	}
	return true
}

// SplitLine splits a sorted-file line of the form "key:path" into its key
// and path components.
func SplitLine(line string) (key, path string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], line[idx+1:], true
}

// Open opens a sorted file for sequential line-by-line reading.
func Open(path string) (*bufio.Scanner, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sorted file %s: %w", path, err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return scanner, f, nil
}

// Remove best-effort deletes the given sorted file, logging failures rather
// than propagating them. Cleanup of temporary files is the driver's
// responsibility per the lifecycle contract of Collector.
func Remove(path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("failed removing sorted file", "path", path, "error", err)
	}
}

// TempDirOrDefault returns dir if non-empty, otherwise the OS default
// temporary directory joined with a dupfind-specific subdirectory name.
func TempDirOrDefault(dir string) string {
	if dir != "" {
		return dir
	}
	return filepath.Join(os.TempDir(), "dupfind")
}
