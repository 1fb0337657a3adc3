package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEnvMap_Empty(t *testing.T) {
	clearDupfindEnv(t)

	m := buildEnvMap()
	assert.Empty(t, m)
}

func TestBuildEnvMap_TempDir(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvTempDir, "/var/tmp/dupfind")

	m := buildEnvMap()
	assert.Equal(t, "/var/tmp/dupfind", m["temp_dir"])
}

func TestBuildEnvMap_FollowSymlinks(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvFollowSymlinks, "false")

	m := buildEnvMap()
	assert.Equal(t, false, m["follow_symlinks"])
}

func TestBuildEnvMap_FollowSymlinks_Invalid(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvFollowSymlinks, "maybe")

	m := buildEnvMap()
	_, ok := m["follow_symlinks"]
	assert.False(t, ok, "invalid DUPFIND_FOLLOW_SYMLINKS must not appear in the map")
}

func TestBuildEnvMap_GitTrackedOnly(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvGitTrackedOnly, "true")

	m := buildEnvMap()
	assert.Equal(t, true, m["git_tracked_only"])
}

func TestBuildEnvMap_RespectGitignore(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvRespectGitignore, "true")

	m := buildEnvMap()
	assert.Equal(t, true, m["respect_gitignore"])
}

func TestBuildEnvMap_RespectGitignore_Invalid(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvRespectGitignore, "sometimes")

	m := buildEnvMap()
	_, ok := m["respect_gitignore"]
	assert.False(t, ok, "invalid DUPFIND_RESPECT_GITIGNORE must not appear in the map")
}

func TestBuildEnvMap_MinSize(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvMinSize, "4096")

	m := buildEnvMap()
	assert.Equal(t, int64(4096), m["min_size"])
}

func TestBuildEnvMap_MinSize_Invalid(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvMinSize, "not-a-number")

	m := buildEnvMap()
	_, ok := m["min_size"]
	assert.False(t, ok, "invalid DUPFIND_MIN_SIZE must not appear in the map")
}

func TestBuildEnvMap_FastHash(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvFastHash, "true")

	m := buildEnvMap()
	assert.Equal(t, true, m["fast_hash"])
}

func TestBuildEnvMap_FastHash_Invalid(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvFastHash, "maybe")

	m := buildEnvMap()
	_, ok := m["fast_hash"]
	assert.False(t, ok, "invalid DUPFIND_FAST_HASH must not appear in the map")
}

func TestBuildEnvMap_LogFormat(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvLogFormat, "json")

	m := buildEnvMap()
	assert.Equal(t, "json", m["log_format"])
}

func TestBuildEnvMap_LogLevel(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvLogLevel, "debug")

	m := buildEnvMap()
	assert.Equal(t, "debug", m["log_level"])
}

// TestBuildEnvMap_Profile_NotInMap verifies that DUPFIND_PROFILE does not
// appear in the profile map -- it is handled separately during profile
// selection, not merged as a profile field.
func TestBuildEnvMap_Profile_NotInMap(t *testing.T) {
	clearDupfindEnv(t)
	t.Setenv(EnvProfile, "ci")

	m := buildEnvMap()
	_, ok := m["profile"]
	assert.False(t, ok, "DUPFIND_PROFILE must not appear in the profile map")
}

func TestBuildEnvMap_AllFields(t *testing.T) {
	clearDupfindEnv(t)

	t.Setenv(EnvTempDir, "/tmp/dupfind-run")
	t.Setenv(EnvFollowSymlinks, "true")
	t.Setenv(EnvGitTrackedOnly, "true")
	t.Setenv(EnvRespectGitignore, "true")
	t.Setenv(EnvMinSize, "2048")
	t.Setenv(EnvFastHash, "true")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogLevel, "warn")

	m := buildEnvMap()

	assert.Equal(t, "/tmp/dupfind-run", m["temp_dir"])
	assert.Equal(t, true, m["follow_symlinks"])
	assert.Equal(t, true, m["git_tracked_only"])
	assert.Equal(t, true, m["respect_gitignore"])
	assert.Equal(t, int64(2048), m["min_size"])
	assert.Equal(t, true, m["fast_hash"])
	assert.Equal(t, "json", m["log_format"])
	assert.Equal(t, "warn", m["log_level"])
}

// clearDupfindEnv unsets all DUPFIND_* environment variables for the
// duration of the test, restoring them on cleanup via t.Setenv semantics.
func clearDupfindEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvProfile, EnvTempDir, EnvFollowSymlinks,
		EnvGitTrackedOnly, EnvRespectGitignore, EnvMinSize,
		EnvFastHash, EnvLogFormat, EnvLogLevel,
	} {
		t.Setenv(name, "")
	}
}
