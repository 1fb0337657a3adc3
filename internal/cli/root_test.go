package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dupfind/dupfind/internal/pipeline"
)

func TestRootCommandUse(t *testing.T) {
	assert.Equal(t, "dupfind [path]", rootCmd.Use)
}

func TestRootCommandSilenceUsage(t *testing.T) {
	assert.True(t, rootCmd.SilenceUsage, "SilenceUsage must be true to avoid printing usage on errors")
}

func TestRootCommandSilenceErrors(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors, "SilenceErrors must be true for manual error handling")
}

func TestRootCommandHasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag, "root command must have --verbose persistent flag")
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRootCommandHasQuietFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, flag, "root command must have --quiet persistent flag")
	assert.Equal(t, "q", flag.Shorthand)
}

func TestRootCommandHasScanFlags(t *testing.T) {
	names := []string{
		"temp-dir", "follow-symlinks", "ignore", "include",
		"git-tracked-only", "respect-gitignore", "min-size", "fast-hash",
		"log-format", "log-level", "yes", "progress",
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(name)
			require.NotNil(t, flag, "root command must have --%s persistent flag", name)
		})
	}
}

func TestRootCommandAcceptsAtMostOnePositionalArg(t *testing.T) {
	assert.NoError(t, rootCmd.Args(rootCmd, []string{"."}))
	assert.Error(t, rootCmd.Args(rootCmd, []string{".", "extra"}))
}

func TestExecuteWithHelp(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)
	assert.Contains(t, buf.String(), "Find duplicate files")
}

func TestExecuteHelpShowsAllFlags(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)

	output := buf.String()
	expectedFlags := []string{
		"--temp-dir", "--follow-symlinks", "--ignore", "--include",
		"--git-tracked-only", "--respect-gitignore", "--min-size", "--fast-hash",
		"--log-format", "--log-level", "--verbose", "--quiet", "--yes", "--progress",
	}
	for _, flag := range expectedFlags {
		assert.Contains(t, output, flag, "help output should show %s flag", flag)
	}
}

func TestExecuteWithNoArgsScansWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	rootCmd.SetArgs([]string{})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)
}

func TestExecuteWithMissingPathReturnsInputErrorCode(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	rootCmd.SetArgs([]string{missing})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	code := Execute()
	assert.Equal(t, int(pipeline.ExitInputError), code)
}

func TestExecuteWithUnknownFlag(t *testing.T) {
	rootCmd.SetArgs([]string{"--nonexistent-flag"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	defer rootCmd.SetErr(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)
}

func TestRootCmdReturnsCommand(t *testing.T) {
	cmd := RootCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "dupfind [path]", cmd.Use)
}

func TestGlobalFlagsReturnsValues(t *testing.T) {
	fv := GlobalFlags()
	require.NotNil(t, fv, "GlobalFlags() should return non-nil FlagValues")
}

func TestApplyPositionalPathDefault(t *testing.T) {
	fv := GlobalFlags()
	applyPositionalPath(fv, nil)
	assert.Equal(t, ".", fv.Path)
}

func TestApplyPositionalPathExplicit(t *testing.T) {
	fv := GlobalFlags()
	applyPositionalPath(fv, []string{"/some/dir"})
	assert.Equal(t, "/some/dir", fv.Path)
}

func TestExtractExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error returns ExitSuccess",
			err:  nil,
			want: int(pipeline.ExitSuccess),
		},
		{
			name: "generic error still returns ExitSuccess",
			err:  errors.New("something went wrong"),
			want: int(pipeline.ExitSuccess),
		},
		{
			name: "DupError carries its own code",
			err:  pipeline.NewInputError("bad path", errors.New("cause")),
			want: int(pipeline.ExitInputError),
		},
		{
			name: "wrapped DupError preserves exit code",
			err:  fmt.Errorf("command failed: %w", pipeline.NewInputError("bad path", nil)),
			want: int(pipeline.ExitInputError),
		},
		{
			name: "deeply wrapped DupError preserves exit code",
			err:  fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", pipeline.NewInputError("bad path", nil))),
			want: int(pipeline.ExitInputError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractExitCode(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractExitCode_NilReturnsSuccess(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, extractExitCode(nil))
}
