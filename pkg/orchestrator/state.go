package orchestrator

type runState string

const (
	statePending         runState = "pending"
	statePresetResolving runState = "preset-resolving"
	stateValidating      runState = "validating"
	stateRendering       runState = "rendering"
	stateWriting         runState = "writing"
	stateHookExecution   runState = "hook-execution"
	stateCompleted       runState = "completed"
	stateFailed          runState = "failed"
	stateRolledBack      runState = "rolled-back"
)

func (o *Orchestrator) transition(state *runState, to runState) {
	o.logger.Debug().
		Str("from", string(*state)).
		Str("to", string(to)).
		Msg("State transition")
	*state = to
}
