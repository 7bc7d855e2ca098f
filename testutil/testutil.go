// Package testutil holds shared helpers for slate's tests: fake sysfs
// trees, isolated runtime directories, and socket readiness waits.
package testutil

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// IsolateRuntime points the XDG runtime and state directories at a
// per-test temp dir so daemons in tests never touch real sockets. A
// SLATE_HOME inherited from the environment would override all of them,
// so it is cleared too.
func IsolateRuntime(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SLATE_HOME", "")
	os.Unsetenv("SLATE_HOME")
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

// CreateBatteryDir builds a fake power-supply device directory with the
// given attribute files.
func CreateBatteryDir(t *testing.T, root, name string, attrs map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for attr, value := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, attr), []byte(value+"\n"), 0644))
	}
	return dir
}

// CreateBacklightDir builds a fake backlight device directory.
func CreateBacklightDir(t *testing.T, root, name string, brightness, max int) string {
	t.Helper()
	return CreateBatteryDir(t, root, name, map[string]string{
		"actual_brightness": strconv.Itoa(brightness),
		"max_brightness":    strconv.Itoa(max),
	})
}

// WaitForSocket blocks until something accepts on the unix socket path.
func WaitForSocket(t *testing.T, path string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("unix", path, 100*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("socket %s did not come up within %v", path, timeout)
}
