package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/optics-dev/optics-runner/pkg/config"
	"github.com/optics-dev/optics-runner/pkg/core"
	"github.com/optics-dev/optics-runner/pkg/registry"
)

func newTestRegistry() *registry.Registry {
	cfg := &config.Config{
		DriverSources: config.DependencyList{
			{"primary": {Enabled: true}},
			{"secondary": {Enabled: true}},
			{"tertiary": {Enabled: true}},
			{"disabled": {Enabled: false}},
		},
	}
	return registry.FromConfig(cfg)
}

func TestSelect_FirstSuccessWins(t *testing.T) {
	s := New(newTestRegistry(), 1, 0)

	var attempted []string
	err := s.Select(context.Background(), core.CategoryDriver, func(p core.ProviderConfig) error {
		attempted = append(attempted, p.Name)
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attempted) != 1 || attempted[0] != "primary" {
		t.Errorf("expected only primary attempted, got %v", attempted)
	}
}

func TestSelect_FallsThroughToNextProvider(t *testing.T) {
	s := New(newTestRegistry(), 1, 0)

	var attempted []string
	err := s.Select(context.Background(), core.CategoryDriver, func(p core.ProviderConfig) error {
		attempted = append(attempted, p.Name)
		if p.Name == "primary" {
			return errors.New("primary down")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Secondary succeeds, so tertiary is never invoked.
	if len(attempted) != 2 || attempted[0] != "primary" || attempted[1] != "secondary" {
		t.Errorf("expected [primary secondary], got %v", attempted)
	}
}

func TestSelect_SkipsDisabledProviders(t *testing.T) {
	s := New(newTestRegistry(), 1, 0)

	var attempted []string
	_ = s.Select(context.Background(), core.CategoryDriver, func(p core.ProviderConfig) error {
		attempted = append(attempted, p.Name)
		return errors.New("fail")
	})

	for _, name := range attempted {
		if name == "disabled" {
			t.Error("disabled provider must never be attempted")
		}
	}
	if len(attempted) != 3 {
		t.Errorf("expected 3 enabled providers attempted, got %v", attempted)
	}
}

func TestSelect_ExhaustionReportsOrderedFailures(t *testing.T) {
	s := New(newTestRegistry(), 1, 0)

	err := s.Select(context.Background(), core.CategoryDriver, func(p core.ProviderConfig) error {
		return errors.New(p.Name + " unreachable")
	})

	var noProvider *NoProviderError
	if !errors.As(err, &noProvider) {
		t.Fatalf("expected NoProviderError, got %v", err)
	}
	if noProvider.Category != core.CategoryDriver {
		t.Errorf("unexpected category: %s", noProvider.Category)
	}
	want := []string{"primary", "secondary", "tertiary"}
	if len(noProvider.Failures) != len(want) {
		t.Fatalf("expected %d failures, got %d", len(want), len(noProvider.Failures))
	}
	for i, f := range noProvider.Failures {
		if f.Provider != want[i] {
			t.Errorf("failure %d: expected %s, got %s", i, want[i], f.Provider)
		}
	}
}

func TestSelect_NoEnabledCandidates(t *testing.T) {
	cfg := &config.Config{
		TextDetection: config.DependencyList{
			{"easyocr": {Enabled: false}},
		},
	}
	s := New(registry.FromConfig(cfg), 1, 0)

	err := s.Select(context.Background(), core.CategoryTextDetection, func(p core.ProviderConfig) error {
		t.Fatal("no provider should be attempted")
		return nil
	})

	var noProvider *NoProviderError
	if !errors.As(err, &noProvider) {
		t.Fatalf("expected NoProviderError, got %v", err)
	}
	if len(noProvider.Failures) != 0 {
		t.Errorf("expected no failures recorded, got %v", noProvider.Failures)
	}
}

func TestSelect_RetriesPerProvider(t *testing.T) {
	s := New(newTestRegistry(), 3, 0)

	calls := make(map[string]int)
	err := s.Select(context.Background(), core.CategoryDriver, func(p core.ProviderConfig) error {
		calls[p.Name]++
		if p.Name == "primary" {
			return errors.New("always down")
		}
		if p.Name == "secondary" && calls["secondary"] < 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls["primary"] != 3 {
		t.Errorf("expected primary retried 3 times, got %d", calls["primary"])
	}
	if calls["secondary"] != 2 {
		t.Errorf("expected secondary to succeed on attempt 2, got %d", calls["secondary"])
	}
	if calls["tertiary"] != 0 {
		t.Errorf("tertiary must never run after a success, got %d", calls["tertiary"])
	}
}

func TestSelectValue_ReturnsFirstSuccess(t *testing.T) {
	s := New(newTestRegistry(), 1, 0)

	got, err := SelectValue(context.Background(), s, core.CategoryDriver, func(p core.ProviderConfig) (string, error) {
		if p.Name == "primary" {
			return "", errors.New("down")
		}
		return p.Name, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "secondary" {
		t.Errorf("expected secondary, got %s", got)
	}
}
