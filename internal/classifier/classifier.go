// Package classifier implements the two-pass duplicate classification
// described for the core pipeline: a cheap length/inode pass that narrows
// candidates and forwards mid-size clusters to a checksum pass, followed by
// a checksum/content pass that confirms true duplicates.
package classifier

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dupfind/dupfind/internal/checksum"
	"github.com/dupfind/dupfind/internal/comparator"
	"github.com/dupfind/dupfind/internal/sortedrun"
)

// MinCountChecksum is the value of the length/inode pass's per-cluster
// counter at which it switches from direct pairwise comparison to
// checksum-based filtering. The counter is 0 for a cluster's first member,
// so a cluster is forwarded to the checksum pass only once it reaches
// MinCountChecksum+2 members; smaller clusters are resolved by a pairwise
// byte compare, which is cheaper than hashing, while larger ones are hashed
// first to avoid O(n^2) full-content compares.
const MinCountChecksum = 3

// Report is a single duplicate or hard-link finding. For a duplicate, A is
// the earlier-seen representative and B the later path; for a hard link, A
// is the later path and B the earlier one it links to.
type Report struct {
	// Kind is either "Hard Links" or "Dup  Files", matching the two report
	// line prefixes.
	Kind string
	A, B string
}

// String renders the report as the bit-exact output line.
func (r Report) String() string {
	if r.Kind == KindHardLink {
		return fmt.Sprintf("Hard Links: %s  =  %s", r.A, r.B)
	}
	return fmt.Sprintf("Dup  Files: %s  =  %s", r.A, r.B)
}

const (
	// KindHardLink marks two paths that share inode identity.
	KindHardLink = "Hard Links"
	// KindDup marks two paths confirmed byte-identical.
	KindDup = "Dup  Files"
)

// Sink receives reports as they are produced, in discovery order.
type Sink interface {
	Report(r Report)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Report)

// Report implements Sink.
func (f SinkFunc) Report(r Report) { f(r) }

// Classifier runs both passes of duplicate classification.
type Classifier struct {
	cmp    *comparator.Comparator
	chk    *checksum.Engine
	logger *slog.Logger
}

// New returns a Classifier using cmp for content comparison and chk for
// checksumming. A nil cmp or chk falls back to a default-constructed
// instance.
func New(cmp *comparator.Comparator, chk *checksum.Engine, logger *slog.Logger) *Classifier {
	if cmp == nil {
		cmp = comparator.New(logger)
	}
	if chk == nil {
		chk = checksum.NewEngine()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{cmp: cmp, chk: chk, logger: logger.With("component", "classifier")}
}

// PassOne scans the sorted length\inode file at sortedPath, emitting
// hard-link reports directly to sink and forwarding clusters that need
// content confirmation into next (a SortedCollector keyed adler32\length).
// Clusters of at most MinCountChecksum+1 members are resolved entirely
// within this pass via pairwise content comparison.
func (c *Classifier) PassOne(sortedPath string, sink Sink, next *sortedrun.Collector) error {
	scanner, f, err := sortedrun.Open(sortedPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		prevKey   string
		prevName  string
		prevLen   string
		groupList []string
		groupCount int
		havePrev  bool
	)

	closeCluster := func() error {
		c.closePairwiseCluster(groupList, sink)
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		key, name, ok := sortedrun.SplitLine(line)
		if !ok {
			continue
		}
		length := lengthPortion(key)

		if havePrev && key == prevKey {
			// Same length and same inode: a hard link of the cluster's
			// representative. No bookkeeping update; later lines with the
			// same key still compare against the original representative.
			sink.Report(Report{Kind: KindHardLink, A: name, B: prevName})
			continue
		}

		if havePrev && length == prevLen {
			switch {
			case groupCount < MinCountChecksum:
				groupList = append(groupList, name)
			case groupCount == MinCountChecksum:
				for _, p := range append(append([]string{}, groupList...), name) {
					if err := c.pushChecksummed(p, length, next); err != nil {
						return err
					}
				}
				groupList = nil
			default:
				if err := c.pushChecksummed(name, length, next); err != nil {
					return err
				}
			}
			groupCount++
			prevKey = key
			prevName = name
			continue
		}

		if havePrev {
			if err := closeCluster(); err != nil {
				return err
			}
		}
		groupList = []string{name}
		groupCount = 0
		prevLen = length
		prevKey = key
		prevName = name
		havePrev = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("classifier: reading %s: %w", sortedPath, err)
	}

	if havePrev {
		if err := closeCluster(); err != nil {
			return err
		}
	}
	return nil
}

// pushChecksummed computes the checksum of path with the classifier's
// engine (Adler-32, or xxh3 for a fast engine) and forwards
// (checksum\length, path) into next. A checksum failure is logged and the
// path is dropped from the second pass, consistent with treating I/O
// failure during checksum/compare as "not equal" rather than aborting.
func (c *Classifier) pushChecksummed(path, length string, next *sortedrun.Collector) error {
	sum, err := c.chk.Of(path)
	if err != nil {
		c.logger.Warn("checksum failed, excluding from second pass", "path", path, "error", err)
		return nil
	}
	key := fmt.Sprintf("%d\\%s", sum, length)
	return next.Push(key, path)
}

// PassTwo scans the sorted checksum\length file at sortedPath, confirming
// content equality within each group via short-circuit comparison against
// already-seen representatives, falling back to a full pairwise closure
// when a group ends without a short-circuit match for every member.
func (c *Classifier) PassTwo(sortedPath string, sink Sink) error {
	scanner, f, err := sortedrun.Open(sortedPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		prevKey   string
		groupList []string
		havePrev  bool
	)

	for scanner.Scan() {
		line := scanner.Text()
		key, name, ok := sortedrun.SplitLine(line)
		if !ok {
			continue
		}

		if havePrev && key == prevKey {
			matched := false
			for _, existing := range groupList {
				if existing == "" {
					continue
				}
				if c.cmp.Compare(existing, name) == 0 {
					sink.Report(Report{Kind: KindDup, A: existing, B: name})
					matched = true
					break
				}
			}
			if !matched {
				groupList = append(groupList, name)
			}
			continue
		}

		if havePrev {
			c.closePairwiseCluster(groupList, sink)
		}
		groupList = []string{name}
		prevKey = key
		havePrev = true
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("classifier: reading %s: %w", sortedPath, err)
	}

	if havePrev {
		c.closePairwiseCluster(groupList, sink)
	}
	return nil
}

// closePairwiseCluster performs an O(n^2) pairwise content comparison over
// the non-null members of group, emitting a Dup report for every equal pair
// and nulling out the dominated (higher-indexed) member so it is never
// re-reported. The lowest-indexed representative in any equal run stays
// alive throughout.
func (c *Classifier) closePairwiseCluster(group []string, sink Sink) {
	for i := 0; i < len(group); i++ {
		if group[i] == "" {
			continue
		}
		for j := i + 1; j < len(group); j++ {
			if group[j] == "" {
				continue
			}
			if c.cmp.Compare(group[i], group[j]) == 0 {
				sink.Report(Report{Kind: KindDup, A: group[i], B: group[j]})
				group[j] = ""
			}
		}
	}
}

// lengthPortion extracts the length (first) field from a pass-one key of
// the form "<length>\<inodeId>".
func lengthPortion(key string) string {
	idx := strings.IndexByte(key, '\\')
	if idx < 0 {
		return key
	}
	return key[:idx]
}

// FileKey builds the pass-one key "<length>\<inodeId>" from a byte length
// and an opaque inode identity string.
func FileKey(length int64, inodeID string) string {
	return strconv.FormatInt(length, 10) + "\\" + inodeID
}
