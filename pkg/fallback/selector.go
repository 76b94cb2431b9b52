package fallback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/logger"
	"github.com/optics-dev/optics-runner/pkg/registry"
)

// ProviderFailure records one failed provider attempt during selection.
type ProviderFailure struct {
	Provider string
	Err      error
}

// NoProviderError indicates every enabled candidate in a category failed (or
// none was enabled). Failures preserve attempt order for diagnostics.
type NoProviderError struct {
	Category core.Category
	Failures []ProviderFailure
}

func (e *NoProviderError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("no provider available for %s: no enabled candidates", e.Category)
	}
	reasons := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		reasons[i] = fmt.Sprintf("%s: %v", f.Provider, f.Err)
	}
	return fmt.Sprintf("no provider available for %s: %s", e.Category, strings.Join(reasons, "; "))
}

// Selector resolves capability invocations against the registry's fallback
// chains. Retry settings apply per provider: a candidate is retried
// MaxAttempts times before the chain moves on.
type Selector struct {
	registry     *registry.Registry
	maxAttempts  int
	haltDuration time.Duration
}

// New creates a selector over the given registry.
func New(reg *registry.Registry, maxAttempts int, haltDuration time.Duration) *Selector {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Selector{registry: reg, maxAttempts: maxAttempts, haltDuration: haltDuration}
}

// Select iterates the category's candidates in priority order, skipping
// disabled entries, and invokes attempt for each until one succeeds. A
// provider failure never aborts the resolution; only exhaustion of the chain
// does. First success wins: later candidates are never tried.
func (s *Selector) Select(ctx context.Context, category core.Category, attempt func(core.ProviderConfig) error) error {
	var failures []ProviderFailure

	for _, provider := range s.registry.Providers(category) {
		if !provider.Enabled {
			continue
		}
		p := provider
		err := WithRetry(ctx, func() error { return attempt(p) }, s.maxAttempts, s.haltDuration)
		if err == nil {
			return nil
		}
		logger.Debug("fallback: %s provider %s failed: %v", category, provider.Name, err)
		failures = append(failures, ProviderFailure{Provider: provider.Name, Err: err})
		if ctx.Err() != nil {
			break
		}
	}

	return &NoProviderError{Category: category, Failures: failures}
}

// SelectValue is Select for invocations that produce a value.
func SelectValue[T any](ctx context.Context, s *Selector, category core.Category, attempt func(core.ProviderConfig) (T, error)) (T, error) {
	var result T
	err := s.Select(ctx, category, func(p core.ProviderConfig) error {
		v, err := attempt(p)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}
