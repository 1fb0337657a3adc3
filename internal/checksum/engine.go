// Package checksum computes streaming content fingerprints used as a
// medium-selectivity pre-filter before byte-exact comparison.
package checksum

import (
	"fmt"
	"hash"
	"hash/adler32"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// StreamBufferSize is the buffer used while streaming a file through the
// checksum. 4 KiB keeps memory flat regardless of file size while still
// amortizing the syscall cost of small reads.
const StreamBufferSize = 4096

// algorithm selects the hash.Hash implementation an Engine streams files
// through.
type algorithm int

const (
	algorithmAdler32 algorithm = iota
	algorithmXXH3
)

// Engine streams a file's content through a configurable hash. A single
// Engine value can be reused across calls to Of; each call opens a fresh
// hash.Hash, so the type carries no cross-call state worth preserving.
type Engine struct {
	buf []byte
	alg algorithm
}

// NewEngine returns an Engine that checksums with Adler-32, with its read
// buffer pre-allocated.
func NewEngine() *Engine {
	return &Engine{buf: make([]byte, StreamBufferSize), alg: algorithmAdler32}
}

// NewFastEngine returns an Engine that checksums with xxh3 instead of
// Adler-32. xxh3 is better-distributed and faster on large files at the
// cost of truncating its 64-bit digest down to the uint32 Of returns;
// callers opt in via --fast-hash / Profile.FastHash on trees where that
// trade pays off.
func NewFastEngine() *Engine {
	return &Engine{buf: make([]byte, StreamBufferSize), alg: algorithmXXH3}
}

// newHash returns a fresh hash.Hash for e's configured algorithm.
func (e *Engine) newHash() hash.Hash {
	if e.alg == algorithmXXH3 {
		return xxh3.New()
	}
	return adler32.New()
}

// Of streams path through the configured checksum and returns the result.
// xxh3's 64-bit digest is truncated to its low 32 bits; this is acceptable
// because the checksum is only ever used as a pre-filter ahead of a
// byte-exact comparison, never as a standalone identity.
func (e *Engine) Of(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("checksum: opening %s: %w", path, err)
	}
	defer f.Close()

	h := e.newHash()
	if _, err := io.CopyBuffer(h, f, e.buf); err != nil {
		return 0, fmt.Errorf("checksum: reading %s: %w", path, err)
	}

	if h64, ok := h.(interface{ Sum64() uint64 }); ok {
		return uint32(h64.Sum64()), nil
	}
	return h.(interface{ Sum32() uint32 }).Sum32(), nil
}

// Of is a package-level convenience for one-off Adler-32 checksums where
// reusing an Engine's buffer across calls does not matter.
func Of(path string) (uint32, error) {
	return NewEngine().Of(path)
}
