package types

import "time"

// HookStage says when a hook runs relative to the Writing phase.
type HookStage string

const (
	HookPre  HookStage = "pre"
	HookPost HookStage = "post"
)

// HookPolicy controls how pre-hook failures are handled.
type HookPolicy string

const (
	// HookFailFast aborts the run before any write when a pre-hook fails.
	HookFailFast HookPolicy = "fail-fast"
	// HookBestEffort records a pre-hook failure as a warning and proceeds.
	HookBestEffort HookPolicy = "best-effort"
)

// Hook is one declared hook command. Hooks run sequentially in declaration
// order within their stage.
type Hook struct {
	ID      string
	Stage   HookStage
	Command []string
	Timeout time.Duration
}

// ScaffoldConfig is the per-invocation input to the orchestrator. It is
// created fresh per run; the orchestrator never reads ambient process state.
type ScaffoldConfig struct {
	// TargetRoot is the directory the generated tree is materialized under.
	TargetRoot string

	// Bundle is the chosen template bundle.
	Bundle *TemplateBundle

	// Overrides are explicit user-supplied parameter values. They take
	// precedence over preset values, which take precedence over defaults.
	Overrides ValueSet

	// Presets names the presets to apply, in order; later presets override
	// earlier ones.
	Presets []string

	// HooksEnabled toggles hook execution for the run.
	HooksEnabled bool

	// HookPolicy selects fail-fast or best-effort handling of pre-hook
	// failures. Empty means HookFailFast.
	HookPolicy HookPolicy

	// RollbackOnPostHookFailure additionally rolls back written files when a
	// post-hook fails, instead of reporting a partial success.
	RollbackOnPostHookFailure bool

	// Overwrite permits replacing pre-existing files at resolved paths.
	// When false, a pre-existing file is a path collision.
	Overwrite bool

	// DryRun runs the pipeline through rendering, including collision and
	// escape checks, without touching the filesystem.
	DryRun bool

	// RenderWorkers caps the render worker pool. Zero means one worker per
	// CPU, capped at eight.
	RenderWorkers int
}

// Policy returns the configured hook policy, defaulting to fail-fast.
func (c ScaffoldConfig) Policy() HookPolicy {
	if c.HookPolicy == "" {
		return HookFailFast
	}
	return c.HookPolicy
}
