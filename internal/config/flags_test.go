package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCommand creates a fresh Cobra command with flags bound for testing.
// Using a fresh command avoids shared state between tests.
func newTestCommand() (*cobra.Command, *FlagValues) {
	cmd := &cobra.Command{
		Use:           "test",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fv := BindFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		applyPositionalPath(fv, args)
		return nil
	}
	return cmd, fv
}

func TestFlagDefaults(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, ".", fv.Path)
	assert.Equal(t, "", fv.TempDir)
	assert.True(t, fv.FollowSymlinks)
	assert.Nil(t, fv.Ignore)
	assert.Nil(t, fv.Include)
	assert.False(t, fv.GitTrackedOnly)
	assert.False(t, fv.RespectGitignore)
	assert.Equal(t, "", fv.LogFormat)
	assert.Equal(t, "", fv.LogLevel)
	assert.False(t, fv.Verbose)
	assert.False(t, fv.Quiet)
	assert.False(t, fv.Yes)
	assert.False(t, fv.FastHash)

	err := ValidateFlags(fv, cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fv.MinSize)
}

func TestFastHashFlag(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--fast-hash"})
	require.NoError(t, cmd.Execute())

	assert.True(t, fv.FastHash)
}

func TestToCLIFlags_FastHash(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--fast-hash"})
	require.NoError(t, cmd.Execute())
	require.NoError(t, ValidateFlags(fv, cmd))

	flat := ToCLIFlags(fv, cmd)
	assert.Equal(t, true, flat["fast_hash"])
}

func TestToCLIFlags_FastHashOmittedWhenUnset(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	require.NoError(t, ValidateFlags(fv, cmd))

	flat := ToCLIFlags(fv, cmd)
	_, ok := flat["fast_hash"]
	assert.False(t, ok, "unset --fast-hash must not appear in the CLI flags map")
}

func TestPositionalPathDefault(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, ".", fv.Path)
}

func TestPositionalPathExplicit(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"/some/repo"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "/some/repo", fv.Path)
}

func TestPositionalPathRejectsMultipleArgs(t *testing.T) {
	cmd, _ := newTestCommand()
	cmd.SetArgs([]string{"/a", "/b"})
	require.Error(t, cmd.Execute())
}

func TestVerboseQuietMutualExclusion(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--verbose", "--quiet"})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLogFormatInvalid(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--log-format", "xyz"})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-format")
	assert.Contains(t, err.Error(), "xyz")
}

func TestLogFormatValidValues(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		t.Run(format, func(t *testing.T) {
			cmd, fv := newTestCommand()
			cmd.SetArgs([]string{"--log-format", format})
			require.NoError(t, cmd.Execute())

			err := ValidateFlags(fv, cmd)
			require.NoError(t, err)
			assert.Equal(t, format, fv.LogFormat)
		})
	}
}

func TestLogLevelInvalid(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--log-level", "verbose"})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level")
}

func TestLogLevelValidValues(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			cmd, fv := newTestCommand()
			cmd.SetArgs([]string{"--log-level", level})
			require.NoError(t, cmd.Execute())

			err := ValidateFlags(fv, cmd)
			require.NoError(t, err)
			assert.Equal(t, level, fv.LogLevel)
		})
	}
}

func TestIgnoreIncludePatterns(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{
		"--ignore", "vendor/**",
		"--ignore", "node_modules/**",
		"--include", "**/*.go",
	})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/**", "node_modules/**"}, fv.Ignore)
	assert.Equal(t, []string{"**/*.go"}, fv.Include)
}

func TestBooleanFlags(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{
		"--git-tracked-only",
		"--respect-gitignore",
		"--yes",
	})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.NoError(t, err)

	assert.True(t, fv.GitTrackedOnly)
	assert.True(t, fv.RespectGitignore)
	assert.True(t, fv.Yes)
}

func TestFollowSymlinksCanBeDisabled(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--follow-symlinks=false"})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.NoError(t, err)
	assert.False(t, fv.FollowSymlinks)
}

func TestMinSizeDefault(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fv.MinSize)
}

func TestMinSize500KB(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--min-size", "500KB"})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.NoError(t, err)
	assert.Equal(t, int64(500*1024), fv.MinSize)
}

func TestMinSizeInvalid(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--min-size", "not-a-size"})
	require.NoError(t, cmd.Execute())

	err := ValidateFlags(fv, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min-size")
}

// --- ToCLIFlags ---

func TestToCLIFlags_OnlyIncludesChangedFlags(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--log-level", "debug", "--git-tracked-only"})
	require.NoError(t, cmd.Execute())
	require.NoError(t, ValidateFlags(fv, cmd))

	flat := ToCLIFlags(fv, cmd)
	assert.Equal(t, "debug", flat["log_level"])
	assert.Equal(t, true, flat["git_tracked_only"])
	_, hasTempDir := flat["temp_dir"]
	assert.False(t, hasTempDir)
	_, hasLogFormat := flat["log_format"]
	assert.False(t, hasLogFormat)
}

func TestToCLIFlags_EmptyWhenNothingSet(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	require.NoError(t, ValidateFlags(fv, cmd))

	flat := ToCLIFlags(fv, cmd)
	assert.Empty(t, flat)
}

func TestToCLIFlags_IgnoreAndMinSize(t *testing.T) {
	cmd, fv := newTestCommand()
	cmd.SetArgs([]string{"--ignore", "dist/**", "--min-size", "1KB"})
	require.NoError(t, cmd.Execute())
	require.NoError(t, ValidateFlags(fv, cmd))

	flat := ToCLIFlags(fv, cmd)
	assert.Equal(t, []string{"dist/**"}, flat["ignore"])
	assert.Equal(t, int64(1024), flat["min_size"])
}

// --- ParseSize tests ---

func TestParseSizeKB(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"500KB", 500 * 1024},
		{"500kb", 500 * 1024},
		{"500Kb", 500 * 1024},
		{"1KB", 1024},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseSizeMB(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1MB", 1 * 1024 * 1024},
		{"2MB", 2 * 1024 * 1024},
		{"1mb", 1 * 1024 * 1024},
		{"2mb", 2 * 1024 * 1024},
		{"1Mb", 1 * 1024 * 1024},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseSizeGB(t *testing.T) {
	result, err := ParseSize("1GB")
	require.NoError(t, err)
	assert.Equal(t, int64(1024*1024*1024), result)
}

func TestParseSizePlainBytes(t *testing.T) {
	result, err := ParseSize("4096")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), result)
}

func TestParseSizeEmpty(t *testing.T) {
	_, err := ParseSize("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParseSizeInvalid(t *testing.T) {
	_, err := ParseSize("abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid size")
}

func TestParseSizeNegative(t *testing.T) {
	_, err := ParseSize("-5MB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}
