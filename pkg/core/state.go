package core

// State represents the execution state of a queue node (test case, module or
// keyword step).
type State int

const (
	StateNotRun   State = iota // Not yet started
	StateRunning               // Currently executing
	StatePassed                // Completed successfully
	StateFailed                // Completed with a keyword failure
	StateRetrying              // Failed attempt, retry pending
	StateSkipped               // Not executed (filtered out or earlier failure)
	StateError                 // Unexpected error (no provider, infrastructure)
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateNotRun:
		return "NOT_RUN"
	case StateRunning:
		return "RUNNING"
	case StatePassed:
		return "COMPLETED_PASSED"
	case StateFailed:
		return "COMPLETED_FAILED"
	case StateRetrying:
		return "RETRYING"
	case StateSkipped:
		return "SKIPPED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true if the state is a final state.
func (s State) IsTerminal() bool {
	switch s {
	case StatePassed, StateFailed, StateSkipped, StateError:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the state indicates success.
func (s State) IsSuccess() bool {
	return s == StatePassed
}
