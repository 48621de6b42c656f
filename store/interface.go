package store

import "github.com/agentify-dev/agentify/internal/wizard"

// LoadStatus tells the caller what Load found on disk.
type LoadStatus string

const (
	// StatusLoaded means a valid state file was read and decoded.
	StatusLoaded LoadStatus = "loaded"
	// StatusNotFound means no state file exists (or it is empty).
	StatusNotFound LoadStatus = "not_found"
	// StatusCorrupted means the file exists but is not a valid state object.
	StatusCorrupted LoadStatus = "corrupted"
	// StatusVersionMismatch means the file was written by a different
	// schema version and must not be resumed.
	StatusVersionMismatch LoadStatus = "version_mismatch"
)

// WizardStateStore persists wizard sessions across process restarts.
//
// Save is debounced: rapid successive calls collapse into one write with
// the most recent snapshot. SaveImmediate bypasses the debounce for
// lifecycle moments (step transitions, shutdown).
type WizardStateStore interface {
	// Save schedules a persist of the given snapshot. A later Save before
	// the debounce interval elapses replaces the pending snapshot.
	Save(state *wizard.WizardState)

	// SaveImmediate cancels any pending debounced write and persists the
	// snapshot synchronously.
	SaveImmediate(state *wizard.WizardState) error

	// Load reads the persisted state. The returned state is non-nil only
	// when status is StatusLoaded.
	Load() (*wizard.WizardState, LoadStatus, error)

	// Clear deletes the persisted state. A missing file is not an error.
	Clear() error

	// Exists reports whether a state file is present on disk.
	Exists() (bool, error)

	// Close flushes any pending debounced write and stops the store.
	Close() error
}
