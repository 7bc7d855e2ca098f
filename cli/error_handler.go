package cli

import (
	"fmt"
	"os"

	"github.com/slatebar/slate/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(os.Stderr, "❌ Configuration not found. Run 'slate config show' to see the expected locations.\n")
		return err

	case errors.ErrCodeDaemonNotFound:
		if slateErr, ok := err.(*errors.SlateError); ok {
			fmt.Fprintf(os.Stderr, "❌ Unknown daemon '%s'\n", slateErr.Details["daemon"])
			fmt.Fprintf(os.Stderr, "Known daemons: time, display, metrics.\n")
		}
		return err

	case errors.ErrCodeLockHeld:
		if slateErr, ok := err.(*errors.SlateError); ok {
			fmt.Fprintf(os.Stderr, "❌ Another process holds the lock at %s\n", slateErr.Details["path"])
		}
		return err

	case errors.ErrCodeSocketBind:
		if slateErr, ok := err.(*errors.SlateError); ok {
			fmt.Fprintf(os.Stderr, "❌ Could not bind socket %s\n", slateErr.Details["socket"])
			fmt.Fprintf(os.Stderr, "Check that the runtime directory exists and is writable.\n")
		}
		return err

	case errors.ErrCodeIPCUnavailable:
		fmt.Fprintf(os.Stderr, "❌ Compositor IPC is unreachable. Is Hyprland running?\n")
		return err

	default:
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)

		// If verbose mode, show full error details
		if h.Verbose {
			if slateErr, ok := err.(*errors.SlateError); ok {
				fmt.Fprintf(os.Stderr, "\nError details:\n%s\n", slateErr.ToJSON())
			}
		}
		return err
	}
}
