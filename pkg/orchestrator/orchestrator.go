package orchestrator

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/filesystem"
	"github.com/armature-io/armature/pkg/hooks"
	"github.com/armature-io/armature/pkg/logging"
	"github.com/armature-io/armature/pkg/presets"
	"github.com/armature-io/armature/pkg/render"
	"github.com/armature-io/armature/pkg/schema"
	"github.com/armature-io/armature/pkg/types"
)

const maxDefaultWorkers = 8

// Orchestrator runs scaffold invocations. It holds only immutable
// collaborators, so one Orchestrator is safe for concurrent Generate calls
// targeting different output roots.
type Orchestrator struct {
	fs      types.FS
	hooks   types.HookRunner
	workers int
	logger  zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFS replaces the filesystem the orchestrator writes through.
func WithFS(fsys types.FS) Option {
	return func(o *Orchestrator) { o.fs = fsys }
}

// WithHookRunner replaces the hook runner collaborator.
func WithHookRunner(r types.HookRunner) Option {
	return func(o *Orchestrator) { o.hooks = r }
}

// WithRenderWorkers sets the default render pool size.
func WithRenderWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// New creates an Orchestrator writing to the OS filesystem and running
// hooks as child processes, unless options say otherwise.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fs:     filesystem.NewOS(),
		hooks:  hooks.NewExecRunner(),
		logger: logging.GetLogger("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs the full pipeline for one ScaffoldConfig and always returns
// a ScaffoldResult enumerating every error and warning encountered. It is
// synchronous; internal render parallelism is not visible to the caller.
func (o *Orchestrator) Generate(ctx context.Context, cfg types.ScaffoldConfig) (res types.ScaffoldResult) {
	start := time.Now()
	state := statePending

	res.Outcome = types.OutcomeFailed
	// Named result: the deferred assignment runs after every return
	// statement has copied into res, so each caller sees the elapsed time.
	defer func() {
		res.Duration = time.Since(start)
	}()

	fail := func(errs ...error) types.ScaffoldResult {
		o.transition(&state, stateFailed)
		res.Outcome = types.OutcomeFailed
		res.Errors = append(res.Errors, errs...)
		return res
	}

	if cfg.Bundle == nil {
		return fail(errors.New(errors.ErrInvalidInput, "no template bundle configured"))
	}
	if cfg.TargetRoot == "" {
		return fail(errors.New(errors.ErrInvalidInput, "no target root configured"))
	}

	// Preset resolution feeds the candidate set the validator consumes.
	o.transition(&state, statePresetResolving)
	presetVals, err := presets.Resolve(cfg.Presets, cfg.Bundle.Presets)
	if err != nil {
		return fail(err)
	}

	o.transition(&state, stateValidating)
	candidate := presetVals.Merge(cfg.Overrides)
	validated, verrs := schema.Validate(cfg.Bundle.Definitions, candidate)
	if len(verrs) > 0 {
		return fail(verrs...)
	}

	o.transition(&state, stateRendering)
	rctx := render.NewContext(validated)
	plan, rerrs := o.renderPlan(ctx, cfg.Bundle, rctx, o.workerCount(cfg))
	if len(rerrs) > 0 {
		// A render failure must never leave partial output; nothing has
		// been written at this point.
		return fail(rerrs...)
	}

	if cfg.DryRun {
		for _, p := range plan {
			res.PlannedPaths = append(res.PlannedPaths, p.relPath)
		}
		o.transition(&state, stateCompleted)
		res.Outcome = types.OutcomeCompleted
		o.logger.Info().Int("entries", len(plan)).Msg("Dry run complete, nothing written")
		return res
	}

	if cfg.HooksEnabled {
		o.transition(&state, stateHookExecution)
		if aborted := o.runPreHooks(ctx, cfg, validated, &res); aborted {
			o.transition(&state, stateFailed)
			return res
		}
	}

	o.transition(&state, stateWriting)
	writer := newTreeWriter(o.fs, cfg.TargetRoot, cfg.Overwrite, o.logger)
	if err := writer.write(ctx, plan); err != nil {
		res.Errors = append(res.Errors, err)
		o.rollback(writer, &res, &state)
		return res
	}
	res.CreatedPaths = append(res.CreatedPaths, writer.created...)

	if cfg.HooksEnabled {
		o.transition(&state, stateHookExecution)
		if hookErrs := o.runPostHooks(ctx, cfg, validated); len(hookErrs) > 0 {
			if cfg.RollbackOnPostHookFailure {
				// The hook failure is the cause of the rollback, so it is
				// reported as an error, not a warning.
				res.Errors = append(res.Errors, hookErrs...)
				o.rollback(writer, &res, &state)
				res.CreatedPaths = nil
				return res
			}
			for _, err := range hookErrs {
				res.Warnings = append(res.Warnings, err.Error())
			}
			o.transition(&state, stateCompleted)
			res.Outcome = types.OutcomePartial
			return res
		}
	}

	o.transition(&state, stateCompleted)
	res.Outcome = types.OutcomeCompleted
	o.logger.Info().
		Int("created", len(res.CreatedPaths)).
		Dur("elapsed", time.Since(start)).
		Msg("Scaffold complete")
	return res
}

// rollback reverses the writer's checkpoints and records the outcome. A
// rollback failure is surfaced as its own error, never swallowed.
func (o *Orchestrator) rollback(writer *treeWriter, res *types.ScaffoldResult, state *runState) {
	o.logger.Warn().Int("paths", len(writer.created)).Msg("Rolling back written paths")
	if rbErr := writer.rollback(); rbErr != nil {
		res.Errors = append(res.Errors, rbErr)
	}
	o.transition(state, stateRolledBack)
	res.Outcome = types.OutcomeRolledBack
}

// runPreHooks runs pre-stage hooks in declaration order. Under the
// fail-fast policy a failure aborts the run before any write; under
// best-effort it is recorded as a warning.
func (o *Orchestrator) runPreHooks(ctx context.Context, cfg types.ScaffoldConfig, values types.ValueSet, res *types.ScaffoldResult) (aborted bool) {
	for _, hook := range cfg.Bundle.Hooks {
		if hook.Stage != types.HookPre {
			continue
		}
		if _, err := o.hooks.Run(ctx, hook, values, cfg.TargetRoot); err != nil {
			if cfg.Policy() == types.HookFailFast {
				res.Errors = append(res.Errors, err)
				return true
			}
			res.Warnings = append(res.Warnings, err.Error())
		}
	}
	return false
}

// runPostHooks runs post-stage hooks in declaration order and collects
// every failure. The caller decides whether failures downgrade the outcome
// to partial or trigger rollback.
func (o *Orchestrator) runPostHooks(ctx context.Context, cfg types.ScaffoldConfig, values types.ValueSet) []error {
	var errs []error
	for _, hook := range cfg.Bundle.Hooks {
		if hook.Stage != types.HookPost {
			continue
		}
		if _, err := o.hooks.Run(ctx, hook, values, cfg.TargetRoot); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (o *Orchestrator) workerCount(cfg types.ScaffoldConfig) int {
	if cfg.RenderWorkers > 0 {
		return cfg.RenderWorkers
	}
	if o.workers > 0 {
		return o.workers
	}
	n := runtime.NumCPU()
	if n > maxDefaultWorkers {
		n = maxDefaultWorkers
	}
	return n
}
