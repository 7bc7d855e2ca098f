package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlateHomeOverridesEverything(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SLATE_HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "/should/not/matter")
	t.Setenv("XDG_STATE_HOME", "/should/not/matter")
	t.Setenv("XDG_RUNTIME_DIR", "/should/not/matter")

	assert.Equal(t, filepath.Join(home, "config", "slate"), ConfigDir())
	assert.Equal(t, filepath.Join(home, "state", "slate"), StateDir())
	assert.Equal(t, filepath.Join(home, "run"), RuntimeDir())
}

func TestXDGResolution(t *testing.T) {
	t.Setenv("SLATE_HOME", "")
	os.Unsetenv("SLATE_HOME")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	assert.Equal(t, "/xdg/config/slate", ConfigDir())
	assert.Equal(t, "/xdg/state/slate", StateDir())
	assert.Equal(t, "/xdg/state/slate/logs", LogDir())
	assert.Equal(t, "/run/user/1000/slate", RuntimeDir())
	assert.Equal(t, "/run/user/1000/slate/time.sock", SocketPath("time"))
	assert.Equal(t, "/run/user/1000/slate/time.lock", LockPath("time"))
	assert.Equal(t, "/xdg/state/slate/logs/metrics.log", LogFile("metrics"))
}

func TestRuntimeDirFallsBackToTmp(t *testing.T) {
	t.Setenv("SLATE_HOME", "")
	os.Unsetenv("SLATE_HOME")
	t.Setenv("XDG_RUNTIME_DIR", "")
	os.Unsetenv("XDG_RUNTIME_DIR")

	assert.Equal(t, filepath.Join(os.TempDir(), "slate"), RuntimeDir())
}

func TestEnsureDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SLATE_HOME", home)

	require.NoError(t, EnsureDirs())

	for _, dir := range []string{ConfigDir(), StateDir(), LogDir(), RuntimeDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}
