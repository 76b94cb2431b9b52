package queue

import (
	"github.com/optics-dev/optics-runner/pkg/project"
)

// Build assembles the execution queue from the project tables.
//
// The full ordered list of declared test cases is filtered, each retained
// case's module references are resolved by exact name, and every step's
// element_ref, value and args pass through the variable resolver in a single
// pass, so the queue holds only resolved literals.
//
// Any ModuleNotFoundError or VariableNotFoundError aborts the whole build: a
// partially resolved queue is unsafe to execute.
func Build(p *project.Project, filter Filter) (*Queue, error) {
	q := &Queue{}

	cases := filter.order(filter.apply(p.TestCases()))
	for _, tc := range cases {
		caseNode := CaseNode{ID: newID(), Name: tc.ID}
		for _, moduleName := range tc.Modules {
			moduleIdx, err := buildModule(p, q, moduleName)
			if err != nil {
				return nil, err
			}
			caseNode.Modules = append(caseNode.Modules, moduleIdx)
		}
		q.Cases = append(q.Cases, caseNode)
	}
	return q, nil
}

func buildModule(p *project.Project, q *Queue, name string) (int, error) {
	mod, ok := p.Module(name)
	if !ok {
		return 0, &ModuleNotFoundError{Name: name}
	}

	moduleNode := ModuleNode{ID: newID(), Name: name}
	for _, step := range mod.Steps {
		stepNode, err := resolveStep(p.Catalog, step)
		if err != nil {
			return 0, err
		}
		q.Steps = append(q.Steps, stepNode)
		moduleNode.Steps = append(moduleNode.Steps, len(q.Steps)-1)
	}

	q.Modules = append(q.Modules, moduleNode)
	return len(q.Modules) - 1, nil
}

func resolveStep(catalog *project.Catalog, step project.KeywordStep) (StepNode, error) {
	elementRef, err := catalog.Resolve(step.ElementRef)
	if err != nil {
		return StepNode{}, err
	}
	value, err := catalog.Resolve(step.Value)
	if err != nil {
		return StepNode{}, err
	}
	args, err := catalog.ResolveAll(step.Args)
	if err != nil {
		return StepNode{}, err
	}
	return StepNode{
		ID:         newID(),
		Keyword:    step.Keyword,
		ElementRef: elementRef,
		Value:      value,
		Args:       args,
	}, nil
}
