// Package paths provides XDG-compliant path resolution for slate.
//
// Resolution order:
// 1. SLATE_HOME (portable root) → $SLATE_HOME/{config,state,run}
// 2. XDG env vars → $XDG_*_HOME/slate (or $XDG_RUNTIME_DIR/slate)
// 3. Platform defaults → ~/.config/slate, ~/.local/state/slate, /tmp/slate
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// getConfigHome returns the base config home directory.
func getConfigHome() string {
	if slateHome := os.Getenv("SLATE_HOME"); slateHome != "" {
		return filepath.Join(slateHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

// getStateHome returns the base state home directory.
func getStateHome() string {
	if slateHome := os.Getenv("SLATE_HOME"); slateHome != "" {
		return filepath.Join(slateHome, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the slate configuration directory.
// Used for config files like slate.yml / slate.toml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "slate")
}

// StateDir returns the slate state directory.
// Used for logs and other runtime state that outlives a session.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "slate")
}

// LogDir returns the directory daemon log files are written to.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// RuntimeDir returns the slate runtime directory for sockets and lock files.
// Uses XDG_RUNTIME_DIR when available, falls back to /tmp so the daemons can
// still run on systems without a session manager.
func RuntimeDir() string {
	if slateHome := os.Getenv("SLATE_HOME"); slateHome != "" {
		return filepath.Join(slateHome, "run")
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "slate")
	}
	return filepath.Join(os.TempDir(), "slate")
}

// SocketPath returns the unix socket path for a named daemon
// ("time", "display", "metrics").
func SocketPath(daemon string) string {
	return filepath.Join(RuntimeDir(), fmt.Sprintf("%s.sock", daemon))
}

// LockPath returns the advisory lock file path for a named daemon.
func LockPath(daemon string) string {
	return filepath.Join(RuntimeDir(), fmt.Sprintf("%s.lock", daemon))
}

// LogFile returns the log file path for a component.
func LogFile(component string) string {
	dir := LogDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, component+".log")
}

// EnsureDirs creates all slate directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		StateDir(),
		LogDir(),
		RuntimeDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
