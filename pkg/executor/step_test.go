package executor

import (
	"context"
	"testing"
	"time"

	"github.com/optics-dev/optics-runner/pkg/config"
	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/provider/mock"
	"github.com/optics-dev/optics-runner/pkg/queue"
	"github.com/optics-dev/optics-runner/pkg/registry"
)

func TestNormalizeKeyword(t *testing.T) {
	cases := map[string]string{
		"Launch App":     "launchapp",
		"launch_app":     "launchapp",
		"launchApp":      "launchapp",
		"Press Element":  "presselement",
		"EVALUATE":       "evaluate",
		"Close And Terminate App": "closeandterminateapp",
	}
	for in, want := range cases {
		if got := normalizeKeyword(in); got != want {
			t.Errorf("normalizeKeyword(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSleepStep(t *testing.T) {
	start := time.Now()
	if err := sleepStep(context.Background(), "10ms"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("sleep returned early")
	}

	// Bare numbers count as seconds; use a context to avoid the wait.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepStep(ctx, "2"); err != context.Canceled {
		t.Errorf("expected context.Canceled for bare-number sleep, got %v", err)
	}

	if err := sleepStep(context.Background(), "not-a-duration"); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestDispatch_EvaluateScript(t *testing.T) {
	r := New(mockRegistry(), Providers{}, nil, RunnerConfig{MaxAttempts: 1})
	defer r.Close()
	r.SetVariables(map[string]string{"greeting": "hello"})

	q := singleCaseQueue(queue.StepNode{Keyword: "Evaluate Script", Value: "vars.greeting + ' world'"})

	result, err := r.Run(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	step := result.Cases[0].Modules[0].Steps[0]
	if step.State != core.StatePassed {
		t.Fatalf("expected pass, got %s (%s)", step.State, step.Error)
	}
	if step.Message != "hello world" {
		t.Errorf("unexpected script result: %q", step.Message)
	}
}

func TestLocate_TextDetectionFallbackForLiterals(t *testing.T) {
	cfg := &config.Config{
		DriverSources: config.DependencyList{
			{"mock": {Enabled: true}},
		},
		ElementsSources: config.DependencyList{
			{"mock": {Enabled: true}},
		},
		TextDetection: config.DependencyList{
			{"mock": {Enabled: true}},
		},
	}

	driver := mock.NewDriver(mock.Config{})
	// The source cannot locate the text directly, but its page source (the
	// vision capture) carries it, so the OCR chain can find it.
	source := mock.NewElementSource(mock.Config{})
	source.Known["Welcome back marker"] = core.Bounds{}

	providers := mockProviders(driver, source)
	providers.TextDetectors = map[string]core.TextDetector{"mock": mock.NewTextDetector(mock.Config{})}

	r := New(registry.FromConfig(cfg), providers, nil, RunnerConfig{MaxAttempts: 1})
	defer r.Close()

	q := singleCaseQueue(queue.StepNode{Keyword: "Validate Element", ElementRef: "Welcome back"})

	result, err := r.Run(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	step := result.Cases[0].Modules[0].Steps[0]
	if step.State != core.StatePassed {
		t.Errorf("expected OCR fallback to find the text, got %s (%s)", step.State, step.Error)
	}
}

func TestMatch_TemplateImageRoutesToImageDetection(t *testing.T) {
	cfg := &config.Config{
		DriverSources: config.DependencyList{
			{"mock": {Enabled: true}},
		},
		ElementsSources: config.DependencyList{
			{"mock": {Enabled: true}},
		},
		ImageDetection: config.DependencyList{
			{"mock": {Enabled: true}},
		},
	}

	driver := mock.NewDriver(mock.Config{})
	source := mock.NewElementSource(mock.Config{})
	providers := mockProviders(driver, source)
	providers.ImageDetectors = map[string]core.ImageDetector{
		"mock": mock.NewImageDetector(mock.Config{}, "assets/logo.png"),
	}

	r := New(registry.FromConfig(cfg), providers, nil, RunnerConfig{MaxAttempts: 1})
	defer r.Close()

	q := singleCaseQueue(queue.StepNode{Keyword: "Verify Screen", ElementRef: "assets/logo.png"})

	result, err := r.Run(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	step := result.Cases[0].Modules[0].Steps[0]
	if step.State != core.StatePassed {
		t.Errorf("expected template match, got %s (%s)", step.State, step.Error)
	}
}

func TestDriverStep_MissingImplementation(t *testing.T) {
	// Registry says the driver is enabled but no implementation is installed.
	r := New(mockRegistry(), Providers{}, nil, RunnerConfig{MaxAttempts: 1})
	defer r.Close()

	q := singleCaseQueue(queue.StepNode{Keyword: "Launch App", ElementRef: "com.example.app"})

	result, err := r.Run(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	step := result.Cases[0].Modules[0].Steps[0]
	if step.State != core.StateError {
		t.Errorf("expected ERROR for uninstalled driver, got %s", step.State)
	}
}

func TestScriptEngine_Evaluate(t *testing.T) {
	se := NewScriptEngine()
	defer se.Close()
	se.SetVariable("count", "3")

	got, err := se.Evaluate("parseInt(vars.count) * 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "6" {
		t.Errorf("expected 6, got %s", got)
	}

	if _, err := se.Evaluate("syntax error here"); err == nil {
		t.Error("expected error for invalid script")
	}
	if _, err := se.Evaluate(""); err == nil {
		t.Error("expected error for empty script")
	}

	got, err = se.Evaluate("undefined")
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("undefined must stringify to empty, got %q", got)
	}
}
