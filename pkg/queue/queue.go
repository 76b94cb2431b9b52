// Package queue assembles the filtered, variable-resolved execution queue
// from a project's test-case and module tables.
package queue

import (
	"fmt"

	"github.com/google/uuid"
)

// StepNode is one resolved keyword step. All parameters are literals; variable
// resolution happened at build time.
type StepNode struct {
	ID         string
	Keyword    string
	ElementRef string
	Value      string
	Args       []string
}

// Params returns the resolved parameters in positional order, trailing
// empties trimmed.
func (s StepNode) Params() []string {
	params := append([]string{s.ElementRef, s.Value}, s.Args...)
	end := len(params)
	for end > 0 && params[end-1] == "" {
		end--
	}
	return params[:end]
}

// ModuleNode is one module instance within a test case. Steps indexes into
// the queue's step arena, in execution order.
type ModuleNode struct {
	ID    string
	Name  string
	Steps []int
}

// CaseNode is one test case. Modules indexes into the queue's module arena,
// in execution order. A case with no modules is a valid no-op.
type CaseNode struct {
	ID      string
	Name    string
	Modules []int
}

// Queue is the assembled execution structure: arena-indexed ordered sequences
// of cases, modules and steps. Built once per run, immutable after
// construction, consumed read-only by the execution engine.
type Queue struct {
	Cases   []CaseNode
	Modules []ModuleNode
	Steps   []StepNode
}

// Empty reports whether the queue holds no test cases.
func (q *Queue) Empty() bool {
	return len(q.Cases) == 0
}

// Module returns the module node at the given arena index.
func (q *Queue) Module(idx int) *ModuleNode {
	return &q.Modules[idx]
}

// Step returns the step node at the given arena index.
func (q *Queue) Step(idx int) *StepNode {
	return &q.Steps[idx]
}

// Walk visits every case, module and step in execution order.
func (q *Queue) Walk(visit func(c *CaseNode, m *ModuleNode, s *StepNode)) {
	for i := range q.Cases {
		c := &q.Cases[i]
		for _, mi := range c.Modules {
			m := &q.Modules[mi]
			for _, si := range m.Steps {
				visit(c, m, &q.Steps[si])
			}
		}
	}
}

func newID() string {
	return uuid.NewString()
}

// ModuleNotFoundError indicates a test case references a module that is not
// in the module table.
type ModuleNotFoundError struct {
	Name string
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module not found: %s", e.Name)
}
