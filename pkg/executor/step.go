package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/project"
	"github.com/optics-dev/optics-runner/pkg/queue"
)

// dispatch routes a step to the capability category it needs and invokes the
// fallback selector for it. The attempts counter is shared with the retry
// loop so step results can report how many tries the winning provider needed.
func (r *Runner) dispatch(ctx context.Context, s *queue.StepNode, attempts *int, result *core.StepResult) error {
	switch normalizeKeyword(s.Keyword) {
	case "launchapp", "launchother", "startappium":
		return r.driverStep(ctx, s, attempts, func(ctx context.Context, d core.Driver) error {
			return d.Launch(ctx, s.ElementRef)
		})
	case "closeandterminateapp", "forceterminateapp":
		return r.driverStep(ctx, s, attempts, func(ctx context.Context, d core.Driver) error {
			return d.Close(ctx)
		})
	case "evaluatescript", "runscript", "evaluate":
		*attempts = 1
		out, err := r.scripts.Evaluate(firstNonEmpty(s.Value, s.ElementRef))
		if err != nil {
			return err
		}
		result.Message = out
		return nil
	case "sleep":
		*attempts = 1
		return sleepStep(ctx, s.ElementRef)
	case "validateelement", "assertpresence", "verifyscreen":
		return r.locateStep(ctx, s, attempts, result)
	default:
		// Action keywords locate their target first when one is given, then
		// run through the driver chain.
		if s.ElementRef != "" {
			if err := r.locateStep(ctx, s, attempts, result); err != nil {
				return err
			}
		}
		return r.driverStep(ctx, s, attempts, func(ctx context.Context, d core.Driver) error {
			return d.Execute(ctx, s.Keyword, s.Params())
		})
	}
}

// driverStep resolves the driver category and applies fn to the winning
// provider instance.
func (r *Runner) driverStep(ctx context.Context, s *queue.StepNode, attempts *int, fn func(context.Context, core.Driver) error) error {
	return r.selector.Select(ctx, core.CategoryDriver, func(p core.ProviderConfig) error {
		*attempts++
		driver, ok := r.providers.Drivers[p.Name]
		if !ok {
			return core.ErrDriverUnreachable.WithMessage(
				fmt.Sprintf("driver %s is enabled but not installed", p.Name))
		}
		return fn(ctx, driver)
	})
}

// locateStep resolves the element through the category its kind calls for:
// template images through image detection, screen text through the element
// source chain with text detection as the vision path.
func (r *Runner) locateStep(ctx context.Context, s *queue.StepNode, attempts *int, result *core.StepResult) error {
	element := s.ElementRef
	switch project.DetectKind(element) {
	case project.KindImage:
		loc, err := r.matchTemplate(ctx, element, attempts)
		if err != nil {
			return err
		}
		result.Message = fmt.Sprintf("matched %s at %d,%d", element, loc.Bounds.Center().X, loc.Bounds.Center().Y)
		return nil
	default:
		loc, err := r.locateElement(ctx, element, attempts)
		if err != nil {
			return err
		}
		result.Message = fmt.Sprintf("located %s at %d,%d", element, loc.Bounds.Center().X, loc.Bounds.Center().Y)
		return nil
	}
}

func (r *Runner) locateElement(ctx context.Context, element string, attempts *int) (core.Location, error) {
	loc, err := r.selectValue(ctx, core.CategoryElementSource, attempts, func(ctx context.Context, p core.ProviderConfig) (core.Location, error) {
		source, ok := r.providers.ElementSources[p.Name]
		if !ok {
			return core.Location{}, core.NewProviderError(core.CategoryElementSource,
				"not_installed", fmt.Sprintf("element source %s is enabled but not installed", p.Name))
		}
		return source.Locate(ctx, element)
	})
	if err == nil {
		return loc, nil
	}

	// Literal text that no element source could find goes through the OCR
	// chain when one is configured.
	if project.DetectKind(element) == project.KindLiteral && len(r.registry.Enabled(core.CategoryTextDetection)) > 0 {
		return r.detectText(ctx, element, attempts)
	}
	return core.Location{}, err
}

func (r *Runner) detectText(ctx context.Context, text string, attempts *int) (core.Location, error) {
	capture := r.captureScreen(ctx)
	return r.selectValue(ctx, core.CategoryTextDetection, attempts, func(ctx context.Context, p core.ProviderConfig) (core.Location, error) {
		detector, ok := r.providers.TextDetectors[p.Name]
		if !ok {
			return core.Location{}, core.NewProviderError(core.CategoryTextDetection,
				"not_installed", fmt.Sprintf("text detector %s is enabled but not installed", p.Name))
		}
		return detector.Detect(ctx, capture, text)
	})
}

func (r *Runner) matchTemplate(ctx context.Context, template string, attempts *int) (core.Location, error) {
	capture := r.captureScreen(ctx)
	return r.selectValue(ctx, core.CategoryImageDetection, attempts, func(ctx context.Context, p core.ProviderConfig) (core.Location, error) {
		detector, ok := r.providers.ImageDetectors[p.Name]
		if !ok {
			return core.Location{}, core.NewProviderError(core.CategoryImageDetection,
				"not_installed", fmt.Sprintf("image detector %s is enabled but not installed", p.Name))
		}
		return detector.Match(ctx, capture, template)
	})
}

// captureScreen pulls the current page source through the element source
// chain for the vision backends to work on. Best effort: vision providers
// get an empty capture when no source can deliver one.
func (r *Runner) captureScreen(ctx context.Context) []byte {
	var capture []byte
	err := r.selector.Select(ctx, core.CategoryElementSource, func(p core.ProviderConfig) error {
		source, ok := r.providers.ElementSources[p.Name]
		if !ok {
			return core.NewProviderError(core.CategoryElementSource,
				"not_installed", fmt.Sprintf("element source %s is enabled but not installed", p.Name))
		}
		page, err := source.PageSource(ctx)
		if err != nil {
			return err
		}
		capture = []byte(page)
		return nil
	})
	if err != nil {
		return nil
	}
	return capture
}

func (r *Runner) selectValue(ctx context.Context, category core.Category, attempts *int, fn func(context.Context, core.ProviderConfig) (core.Location, error)) (core.Location, error) {
	var loc core.Location
	err := r.selector.Select(ctx, category, func(p core.ProviderConfig) error {
		*attempts++
		v, err := fn(ctx, p)
		if err != nil {
			return err
		}
		loc = v
		return nil
	})
	return loc, err
}

func sleepStep(ctx context.Context, durationParam string) error {
	d, err := time.ParseDuration(durationParam)
	if err != nil {
		// Bare numbers are seconds, as in the original project files.
		if secs, convErr := time.ParseDuration(durationParam + "s"); convErr == nil {
			d = secs
		} else {
			return fmt.Errorf("sleep: invalid duration %q", durationParam)
		}
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// normalizeKeyword lowercases and strips spaces/underscores so "Launch App",
// "launch_app" and "launchApp" all dispatch alike.
func normalizeKeyword(keyword string) string {
	k := strings.ToLower(keyword)
	k = strings.ReplaceAll(k, " ", "")
	return strings.ReplaceAll(k, "_", "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
