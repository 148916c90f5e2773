// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all docsync commands.
package emoji

// Symbol constants for CLI output.
const (
	// Success marks a completed write, refresh or export.
	Success = "✓"

	// Error marks a failed operation.
	Error = "✗"

	// Warning marks a non-critical issue, such as a skipped summary.
	Warning = "!"

	// Info marks informational messages.
	Info = "i"

	// Syncing marks an operation in flight.
	Syncing = "↻"

	// Idle marks the resting sync state.
	Idle = "-"

	// Unknown represents unknown or indeterminate states.
	Unknown = "?"
)

// ForStatus returns the symbol for a sync status name.
func ForStatus(status string) string {
	switch status {
	case "idle":
		return Idle
	case "syncing":
		return Syncing
	case "success":
		return Success
	case "error":
		return Error
	default:
		return Unknown
	}
}
