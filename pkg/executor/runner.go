// Package executor walks the assembled execution queue and drives capability
// resolution for every keyword step.
package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/events"
	"github.com/optics-dev/optics-runner/pkg/fallback"
	"github.com/optics-dev/optics-runner/pkg/logger"
	"github.com/optics-dev/optics-runner/pkg/queue"
	"github.com/optics-dev/optics-runner/pkg/registry"
)

// Providers holds the concrete provider instances available to a run, keyed
// by the names used in configuration. The registry decides order and
// enablement; this map supplies the implementations.
type Providers struct {
	Drivers        map[string]core.Driver
	ElementSources map[string]core.ElementSource
	TextDetectors  map[string]core.TextDetector
	ImageDetectors map[string]core.ImageDetector
}

// RunnerConfig configures the executor.
type RunnerConfig struct {
	MaxAttempts  int           // Attempts per provider per step
	HaltDuration time.Duration // Fixed delay between attempts
	Parallelism  int           // Max concurrent test cases (0 = sequential)
	StopOnFail   bool          // Stop scheduling new cases on first failure
	DryRun       bool          // Walk the queue without invoking providers

	// OnStepComplete, when set, is called after every step with its result.
	OnStepComplete func(caseName, moduleName string, result core.StepResult)
}

// Runner executes an assembled queue.
type Runner struct {
	config    RunnerConfig
	registry  *registry.Registry
	providers Providers
	selector  *fallback.Selector
	bus       *events.Bus
	scripts   *ScriptEngine
}

// New creates a Runner. The bus may be nil when no event consumers exist.
func New(reg *registry.Registry, providers Providers, bus *events.Bus, cfg RunnerConfig) *Runner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Runner{
		config:    cfg,
		registry:  reg,
		providers: providers,
		selector:  fallback.New(reg, cfg.MaxAttempts, cfg.HaltDuration),
		bus:       bus,
		scripts:   NewScriptEngine(),
	}
}

// Close releases runner resources.
func (r *Runner) Close() {
	r.scripts.Close()
}

// SetVariables seeds the script engine with resolved catalog values.
func (r *Runner) SetVariables(vars map[string]string) {
	r.scripts.SetVariables(vars)
}

// Run executes all test cases in the queue and returns the aggregated result.
func (r *Runner) Run(ctx context.Context, q *queue.Queue) (*core.RunResult, error) {
	result := &core.RunResult{
		SessionID: uuid.NewString(),
		Cases:     make([]core.CaseResult, len(q.Cases)),
	}
	start := time.Now()

	if r.config.Parallelism <= 0 {
		stopped := false
		for i := range q.Cases {
			if stopped || ctx.Err() != nil {
				result.Cases[i] = skippedCase(&q.Cases[i], "run stopped")
				continue
			}
			result.Cases[i] = r.executeCase(ctx, q, &q.Cases[i])
			if r.config.StopOnFail && !result.Cases[i].State.IsSuccess() {
				stopped = true
			}
		}
	} else {
		r.executeParallel(ctx, q, result)
	}

	result.Duration = time.Since(start)
	result.Tally()
	return result, nil
}

// executeParallel runs independent test cases concurrently, bounded by a
// semaphore. Ordering within a case is still strictly sequential.
func (r *Runner) executeParallel(ctx context.Context, q *queue.Queue, result *core.RunResult) {
	sem := make(chan struct{}, r.config.Parallelism)
	var wg sync.WaitGroup
	var mu sync.Mutex
	stopAll := false

	for i := range q.Cases {
		mu.Lock()
		shouldStop := stopAll
		mu.Unlock()
		if shouldStop || ctx.Err() != nil {
			result.Cases[i] = skippedCase(&q.Cases[i], "run stopped")
			continue
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			caseResult := r.executeCase(ctx, q, &q.Cases[idx])
			result.Cases[idx] = caseResult

			if r.config.StopOnFail && !caseResult.State.IsSuccess() {
				mu.Lock()
				stopAll = true
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
}

func skippedCase(c *queue.CaseNode, reason string) core.CaseResult {
	return core.CaseResult{ID: c.Name, State: core.StateSkipped, Error: reason}
}

func (r *Runner) executeCase(ctx context.Context, q *queue.Queue, c *queue.CaseNode) core.CaseResult {
	caseResult := core.CaseResult{ID: c.Name, State: core.StateRunning}
	caseStart := time.Now()
	r.publish(events.EntityTestCase, c.ID, c.Name, core.StateRunning, "", "")

	failed := false
	for _, mi := range c.Modules {
		m := q.Module(mi)
		if failed {
			caseResult.Modules = append(caseResult.Modules, core.ModuleResult{
				Name:  m.Name,
				State: core.StateSkipped,
			})
			r.publish(events.EntityModule, m.ID, m.Name, core.StateSkipped, "", c.ID)
			continue
		}
		moduleResult := r.executeModule(ctx, q, c, m)
		caseResult.Modules = append(caseResult.Modules, moduleResult)
		if !moduleResult.State.IsSuccess() {
			failed = true
		}
	}

	caseResult.Duration = time.Since(caseStart)
	if failed {
		caseResult.State = core.StateFailed
	} else {
		caseResult.State = core.StatePassed
	}
	r.publish(events.EntityTestCase, c.ID, c.Name, caseResult.State, "", "")
	return caseResult
}

func (r *Runner) executeModule(ctx context.Context, q *queue.Queue, c *queue.CaseNode, m *queue.ModuleNode) core.ModuleResult {
	moduleResult := core.ModuleResult{Name: m.Name, State: core.StateRunning}
	moduleStart := time.Now()
	r.publish(events.EntityModule, m.ID, m.Name, core.StateRunning, "", c.ID)

	failed := false
	for i, si := range m.Steps {
		s := q.Step(si)
		if failed {
			moduleResult.Steps = append(moduleResult.Steps, core.StepResult{
				Keyword: s.Keyword,
				Index:   i,
				State:   core.StateSkipped,
			})
			continue
		}
		stepResult := r.executeStep(ctx, s, i, m.ID)
		moduleResult.Steps = append(moduleResult.Steps, stepResult)
		if r.config.OnStepComplete != nil {
			r.config.OnStepComplete(c.Name, m.Name, stepResult)
		}
		if !stepResult.State.IsSuccess() {
			failed = true
		}
	}

	moduleResult.Duration = time.Since(moduleStart)
	if failed {
		moduleResult.State = core.StateFailed
	} else {
		moduleResult.State = core.StatePassed
	}
	r.publish(events.EntityModule, m.ID, m.Name, moduleResult.State, "", c.ID)
	return moduleResult
}

func (r *Runner) executeStep(ctx context.Context, s *queue.StepNode, index int, parentID string) core.StepResult {
	result := core.StepResult{
		Keyword:     s.Keyword,
		Index:       index,
		StartTime:   time.Now(),
		MaxAttempts: r.config.MaxAttempts,
	}
	r.publish(events.EntityKeyword, s.ID, s.Keyword, core.StateRunning, "", parentID)

	if r.config.DryRun {
		result.State = core.StatePassed
		result.Message = fmt.Sprintf("dry run: %s %v", s.Keyword, s.Params())
		result.Attempt = 1
		logger.Info("dry run: %s %v", s.Keyword, s.Params())
		r.publish(events.EntityKeyword, s.ID, s.Keyword, core.StatePassed, result.Message, parentID)
		return result
	}

	attempts := 0
	err := r.dispatch(ctx, s, &attempts, &result)
	result.Duration = time.Since(result.StartTime)
	result.Attempt = attempts
	if result.Attempt == 0 {
		result.Attempt = 1
	}

	if err != nil {
		result.Error = err.Error()
		if _, ok := err.(*fallback.NoProviderError); ok {
			result.State = core.StateError
		} else {
			result.State = core.StateFailed
		}
		r.publish(events.EntityKeyword, s.ID, s.Keyword, result.State, result.Error, parentID)
		return result
	}

	result.State = core.StatePassed
	result.Flaky = result.Attempt > 1
	r.publish(events.EntityKeyword, s.ID, s.Keyword, core.StatePassed, result.Message, parentID)
	return result
}

func (r *Runner) publish(entityType, entityID, name string, status core.State, message, parentID string) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.Event{
		EntityType: entityType,
		EntityID:   entityID,
		Name:       name,
		Status:     status,
		Message:    message,
		ParentID:   parentID,
	})
}
