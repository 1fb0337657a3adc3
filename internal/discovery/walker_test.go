package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dupfind/dupfind/internal/sortedrun"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestWalkerSkipsEmptyFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "empty"), nil)
	writeTestFile(t, filepath.Join(root, "nonempty"), []byte("x"))

	collector := sortedrun.New(t.TempDir(), nil)
	w := NewWalker(nil)
	stats, err := w.Walk(WalkerConfig{Root: root, FollowFileSymlinks: true}, collector)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pushed)
	require.Equal(t, 1, stats.SkippedEmpty)
}

func TestWalkerSkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "locked")
	writeTestFile(t, path, []byte("secret"))
	require.NoError(t, os.Chmod(path, 0o000))
	defer os.Chmod(path, 0o644)

	if os.Geteuid() == 0 {
		t.Skip("running as root, permission bits do not restrict access")
	}

	collector := sortedrun.New(t.TempDir(), nil)
	w := NewWalker(nil)
	stats, err := w.Walk(WalkerConfig{Root: root, FollowFileSymlinks: true}, collector)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Pushed)
	require.Equal(t, 1, stats.SkippedUnread)
}

func TestWalkerRespectsDefaultIgnores(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "vendor", "lib.go"), []byte("vendored"))
	writeTestFile(t, filepath.Join(root, "main.go"), []byte("package main"))

	collector := sortedrun.New(t.TempDir(), nil)
	w := NewWalker(nil)
	stats, err := w.Walk(WalkerConfig{
		Root:           root,
		DefaultIgnorer: NewDefaultIgnoreMatcher(),
	}, collector)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pushed)
}

func TestWalkerFollowsFileSymlinksWhenEnabled(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "real.txt")
	writeTestFile(t, target, []byte("content"))
	link := filepath.Join(root, "link.txt")
	require.NoError(t, os.Symlink(target, link))

	collector := sortedrun.New(t.TempDir(), nil)
	w := NewWalker(nil)
	stats, err := w.Walk(WalkerConfig{Root: root, FollowFileSymlinks: true}, collector)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Pushed)
}

func TestWalkerNeverFollowsDirectorySymlinks(t *testing.T) {
	root := t.TempDir()
	real := filepath.Join(root, "real")
	writeTestFile(t, filepath.Join(real, "a.txt"), []byte("a"))
	require.NoError(t, os.Symlink(real, filepath.Join(root, "link")))

	collector := sortedrun.New(t.TempDir(), nil)
	w := NewWalker(nil)
	stats, err := w.Walk(WalkerConfig{Root: root, FollowFileSymlinks: true}, collector)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pushed)
}

func TestWalkerPushesHardLinkPairUnderSameKey(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	writeTestFile(t, a, []byte("x"))
	require.NoError(t, os.Link(a, b))

	tmpDir := t.TempDir()
	collector := sortedrun.New(tmpDir, nil)
	w := NewWalker(nil)
	stats, err := w.Walk(WalkerConfig{Root: root, FollowFileSymlinks: true}, collector)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Pushed)

	path, ok, err := collector.Finish()
	require.NoError(t, err)
	require.True(t, ok)

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	key0, _, _ := sortedrun.SplitLine(lines[0])
	key1, _, _ := sortedrun.SplitLine(lines[1])
	require.Equal(t, key0, key1)
}
