// Package orchestrator drives the scaffold pipeline end to end: preset
// resolution, schema validation, concurrent rendering of the template tree,
// transactional materialization on disk, and hook execution.
//
// A run walks the state machine
//
//	Pending -> PresetResolving -> Validating -> Rendering -> Writing ->
//	HookExecution -> {Completed | Failed | RolledBack}
//
// Validation or render errors abort before any filesystem mutation. A fault
// during Writing reverses every path created in this run, newest first, so
// a partially generated tree is never left behind.
package orchestrator
