// Package hooks provides the exec-based HookRunner used for pre- and
// post-generation hooks. The orchestrator only sees the HookRunner
// interface; this package defines one execution environment for it.
package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/logging"
	"github.com/armature-io/armature/pkg/types"
)

// DefaultTimeout bounds hooks that do not declare their own timeout; no
// hook may block a run indefinitely.
const DefaultTimeout = 2 * time.Minute

// ExecRunner runs hook commands as child processes. The resolved value set
// is exported through the environment as ARMATURE_VAR_<NAME>, and the
// target root both as working directory and as ARMATURE_TARGET_ROOT.
type ExecRunner struct {
	logger zerolog.Logger
}

// NewExecRunner creates a new exec-based hook runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{logger: logging.GetLogger("hooks.exec")}
}

// Run executes one hook and captures its combined output. A non-zero exit
// is a HOOK_FAILED error, an exceeded timeout a HOOK_TIMEOUT error; in both
// cases the captured output is still returned.
func (r *ExecRunner) Run(ctx context.Context, hook types.Hook, values types.ValueSet, targetRoot string) (types.HookResult, error) {
	if len(hook.Command) == 0 {
		return types.HookResult{}, errors.Newf(errors.ErrInvalidInput,
			"hook %q declares no command", hook.ID)
	}

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, hook.Command[0], hook.Command[1:]...)
	cmd.Dir = targetRoot
	cmd.Env = hookEnv(values, targetRoot)

	r.logger.Debug().
		Str("hook", hook.ID).
		Str("stage", string(hook.Stage)).
		Strs("command", hook.Command).
		Msg("Running hook")

	output, err := cmd.CombinedOutput()
	result := types.HookResult{Output: output}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case cctx.Err() == context.DeadlineExceeded:
		return result, errors.Newf(errors.ErrHookTimeout,
			"hook %q exceeded its timeout of %s", hook.ID, timeout).
			WithDetail("hook", hook.ID)
	case err != nil:
		return result, errors.Wrapf(err, errors.ErrHookFailed,
			"hook %q failed with exit code %d", hook.ID, result.ExitCode).
			WithDetail("hook", hook.ID).
			WithDetail("output", string(output))
	}

	r.logger.Debug().Str("hook", hook.ID).Msg("Hook completed")
	return result, nil
}

// hookEnv builds the child environment: the parent environment plus one
// ARMATURE_VAR_* entry per resolved parameter.
func hookEnv(values types.ValueSet, targetRoot string) []string {
	env := os.Environ()
	env = append(env, fmt.Sprintf("ARMATURE_TARGET_ROOT=%s", targetRoot))
	for _, name := range values.Names() {
		env = append(env, fmt.Sprintf("ARMATURE_VAR_%s=%s",
			strings.ToUpper(name), types.FormatValue(values[name])))
	}
	return env
}
