package types

import "time"

// Outcome is the terminal state of a scaffold run.
type Outcome string

const (
	// OutcomeCompleted means every entry was written and every required
	// hook succeeded.
	OutcomeCompleted Outcome = "completed"
	// OutcomePartial means the tree was written but a post-hook failed.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means the run aborted before any filesystem mutation.
	OutcomeFailed Outcome = "failed"
	// OutcomeRolledBack means writes were made and then fully reversed
	// after a mid-write fault.
	OutcomeRolledBack Outcome = "rolled-back"
)

// ScaffoldResult reports one scaffold run. Errors and Warnings enumerate
// everything encountered, never just the first problem.
type ScaffoldResult struct {
	Outcome Outcome

	// CreatedPaths lists, in creation order, only paths guaranteed to exist
	// after the run. Rolled-back paths are excluded.
	CreatedPaths []string

	// PlannedPaths lists the paths a dry run would have created.
	PlannedPaths []string

	Errors   []error
	Warnings []string
	Duration time.Duration
}

// Succeeded reports whether the run produced the full tree.
func (r ScaffoldResult) Succeeded() bool {
	return r.Outcome == OutcomeCompleted || r.Outcome == OutcomePartial
}
