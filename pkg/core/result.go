package core

import (
	"time"
)

// StepResult captures the outcome of executing a single keyword step.
type StepResult struct {
	Keyword string `json:"keyword"`
	Index   int    `json:"index"` // 0-based position in the module

	State State `json:"state"`

	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	// Retry tracking
	Attempt     int      `json:"attempt"`               // Final attempt number (1-based)
	MaxAttempts int      `json:"maxAttempts"`           // Configured attempt limit
	RetryErrors []string `json:"retryErrors,omitempty"` // Errors from earlier attempts
	Flaky       bool     `json:"flaky,omitempty"`       // Passed after at least one retry
}

// ModuleResult captures the outcome of one module within a test case.
type ModuleResult struct {
	Name     string        `json:"name"`
	State    State         `json:"state"`
	Duration time.Duration `json:"duration"`
	Steps    []StepResult  `json:"steps"`
}

// CaseResult captures the outcome of one test case.
type CaseResult struct {
	ID       string         `json:"id"`
	State    State          `json:"state"`
	Duration time.Duration  `json:"duration"`
	Error    string         `json:"error,omitempty"`
	Modules  []ModuleResult `json:"modules"`
}

// RunResult aggregates the outcome of a whole run.
type RunResult struct {
	SessionID string        `json:"sessionId"`
	State     State         `json:"state"`
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	Cases     []CaseResult  `json:"cases"`
}

// Tally recomputes the counters and overall state from the case results.
func (r *RunResult) Tally() {
	r.Total = len(r.Cases)
	r.Passed, r.Failed, r.Skipped = 0, 0, 0
	for _, c := range r.Cases {
		switch c.State {
		case StatePassed:
			r.Passed++
		case StateFailed, StateError:
			r.Failed++
		case StateSkipped:
			r.Skipped++
		}
	}
	if r.Failed > 0 {
		r.State = StateFailed
	} else {
		r.State = StatePassed
	}
}
