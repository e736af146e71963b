// internal/app/workflow/errors.go
package workflow

import "errors"

var (
	// ErrValidation covers bad input shape or value: a minutes date before
	// the series minimum, a malformed date, or adding minutes while an
	// unfinalized one exists.
	ErrValidation = errors.New("validation failed")

	// ErrNotAllowed is a domain-rule refusal with no degrade path, such as
	// removing a finalized minutes or mutating one.
	ErrNotAllowed = errors.New("operation not allowed")

	ErrNotModerator = errors.New("caller is not a moderator of the series")
	ErrNotUploader  = errors.New("caller has no upload rights for the series")

	ErrAlreadyFinalized = errors.New("minutes are already finalized")
	ErrNotFinalized     = errors.New("minutes are not finalized")
	ErrNotLatestMinutes = errors.New("minutes are not the latest in the series")

	// ErrConcurrentModification means an optimistic-lock precondition failed
	// even after retrying; the caller should re-read and try again.
	ErrConcurrentModification = errors.New("document was modified concurrently")

	// ErrWorkflowInconsistency is fatal: a compensating write failed after a
	// partial apply, leaving the minutes and series potentially out of sync.
	// It must be surfaced loudly and requires operator intervention.
	ErrWorkflowInconsistency = errors.New("workflow state inconsistent after failed compensation")
)
