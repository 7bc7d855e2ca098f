package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *SlateError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *SlateError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// AlreadyRunning creates an error for a daemon that is already serving its socket
func AlreadyRunning(daemon, socket string) *SlateError {
	return New(ErrCodeAlreadyRunning, fmt.Sprintf("daemon '%s' is already running", daemon)).
		WithDetail("daemon", daemon).
		WithDetail("socket", socket)
}

// LockHeld creates an error for a contended advisory lock file
func LockHeld(path string) *SlateError {
	return New(ErrCodeLockHeld, fmt.Sprintf("advisory lock is held: %s", path)).
		WithDetail("path", path)
}

// SocketBind wraps a listener creation failure
func SocketBind(socket string, err error) *SlateError {
	return Wrap(err, ErrCodeSocketBind, fmt.Sprintf("failed to bind socket: %s", socket)).
		WithDetail("socket", socket)
}

// IPCUnavailable creates an error for an unreachable compositor IPC endpoint
func IPCUnavailable(command string, err error) *SlateError {
	return Wrap(err, ErrCodeIPCUnavailable, fmt.Sprintf("compositor IPC unavailable for '%s'", command)).
		WithDetail("command", command)
}

// MixerUnavailable creates an error for an unreachable audio mixer service
func MixerUnavailable(err error) *SlateError {
	return Wrap(err, ErrCodeMixerUnavailable, "audio mixer service unavailable")
}

// AttributeMissing creates an error for a sysfs attribute that was not probed
func AttributeMissing(name string) *SlateError {
	return New(ErrCodeAttributeMissing, fmt.Sprintf("sysfs attribute not present: %s", name)).
		WithDetail("attribute", name)
}
