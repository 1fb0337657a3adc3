package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCommandsRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"config", "show"})
	require.NoError(t, err)
	assert.Equal(t, "show", cmd.Use)

	cmd, _, err = rootCmd.Find([]string{"config", "discover"})
	require.NoError(t, err)
	assert.Equal(t, "discover", cmd.Use)
}

func TestConfigShowPrintsResolvedFields(t *testing.T) {
	changeDirForTest(t, t.TempDir())

	rootCmd.SetArgs([]string{"config", "show"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	require.Equal(t, 0, Execute())

	out := buf.String()
	assert.Contains(t, out, "Active profile: default")
	assert.Contains(t, out, "log_format")
	assert.Contains(t, out, "min_size")
	assert.Contains(t, out, "fast_hash")
}

func TestConfigShowJSONIncludesSources(t *testing.T) {
	changeDirForTest(t, t.TempDir())

	rootCmd.SetArgs([]string{"config", "show", "--json"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	require.Equal(t, 0, Execute())

	var payload struct {
		Profile string            `json:"profile"`
		Values  map[string]any    `json:"values"`
		Sources map[string]string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.Equal(t, "default", payload.Profile)
	assert.Equal(t, "default", payload.Sources["log_format"])
	assert.Contains(t, payload.Values, "workers")
}

func TestConfigShowRespectsRepoConfigOverride(t *testing.T) {
	dir := t.TempDir()
	changeDirForTest(t, dir)

	toml := "[profile.default]\nlog_format = \"json\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dupfind.toml"), []byte(toml), 0o644))

	rootCmd.SetArgs([]string{"config", "show", "--json"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	require.Equal(t, 0, Execute())

	var payload struct {
		Values  map[string]any    `json:"values"`
		Sources map[string]string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.Equal(t, "json", payload.Values["log_format"])
	assert.Equal(t, "repo", payload.Sources["log_format"])
}

func TestConfigDiscoverReportsNotFoundWhenAbsent(t *testing.T) {
	changeDirForTest(t, t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	rootCmd.SetArgs([]string{"config", "discover"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	require.Equal(t, 0, Execute())
	assert.Contains(t, buf.String(), "not found")
}

func TestConfigDiscoverFindsRepoConfig(t *testing.T) {
	dir := t.TempDir()
	changeDirForTest(t, dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dupfind.toml"), []byte("[profile.default]\n"), 0o644))

	rootCmd.SetArgs([]string{"config", "discover", "--json"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	require.Equal(t, 0, Execute())

	var payload struct {
		RepoConfig   string `json:"repo_config"`
		GlobalConfig string `json:"global_config"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Contains(t, payload.RepoConfig, "dupfind.toml")
	assert.Empty(t, payload.GlobalConfig)
}
