package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dupfind/dupfind/internal/classifier"
	"github.com/dupfind/dupfind/internal/config"
	"github.com/dupfind/dupfind/internal/pipeline"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

type collectingSink struct {
	reports []classifier.Report
}

func (s *collectingSink) Report(r classifier.Report) {
	s.reports = append(s.reports, r)
}

func testProfile(tempDir string) *config.Profile {
	p := config.DefaultProfile()
	p.TempDir = tempDir
	return p
}

func TestRun_RejectsMissingRoot(t *testing.T) {
	sink := &collectingSink{}
	stats, err := Run(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), testProfile(t.TempDir()), sink, nil)
	require.Error(t, err)
	assert.Nil(t, stats)

	var dupErr *pipeline.DupError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, int(pipeline.ExitInputError), dupErr.Code)
}

func TestRun_RejectsNonDirectoryRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notadir")
	writeFile(t, file, []byte("x"))

	sink := &collectingSink{}
	stats, err := Run(context.Background(), file, testProfile(t.TempDir()), sink, nil)
	require.Error(t, err)
	assert.Nil(t, stats)

	var dupErr *pipeline.DupError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, int(pipeline.ExitInputError), dupErr.Code)
}

func TestRun_EmptyDirectoryProducesNoReports(t *testing.T) {
	root := t.TempDir()
	sink := &collectingSink{}

	stats, err := Run(context.Background(), root, testProfile(t.TempDir()), sink, nil)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Empty(t, sink.reports)
	assert.Equal(t, 0, stats.FilesPushed)
}

func TestRun_FindsDuplicateFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("identical content"))
	writeFile(t, filepath.Join(root, "b.txt"), []byte("identical content"))
	writeFile(t, filepath.Join(root, "c.txt"), []byte("different content"))

	sink := &collectingSink{}
	stats, err := Run(context.Background(), root, testProfile(t.TempDir()), sink, nil)
	require.NoError(t, err)

	require.Len(t, sink.reports, 1)
	assert.Equal(t, classifier.KindDup, sink.reports[0].Kind)
	assert.Equal(t, 1, stats.DupReports)
	assert.Equal(t, 3, stats.FilesPushed)
}

func TestRun_RespectsMinSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("small"))
	writeFile(t, filepath.Join(root, "b.txt"), []byte("small"))

	profile := testProfile(t.TempDir())
	profile.MinSize = 1024

	sink := &collectingSink{}
	stats, err := Run(context.Background(), root, profile, sink, nil)
	require.NoError(t, err)
	assert.Empty(t, sink.reports)
	assert.Equal(t, 0, stats.FilesPushed)
}

func TestRun_RespectsDefaultIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), []byte("dup"))
	writeFile(t, filepath.Join(root, "src", "index.js"), []byte("dup"))

	sink := &collectingSink{}
	stats, err := Run(context.Background(), root, testProfile(t.TempDir()), sink, nil)
	require.NoError(t, err)
	assert.Empty(t, sink.reports)
	assert.Equal(t, 1, stats.FilesPushed)
}

func TestRun_CleansUpTemporarySortedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), []byte("identical"))
	writeFile(t, filepath.Join(root, "b.txt"), []byte("identical"))

	tempDir := t.TempDir()
	sink := &collectingSink{}
	_, err := Run(context.Background(), root, testProfile(tempDir), sink, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no sorted-run temp files should remain after a completed scan")
}
