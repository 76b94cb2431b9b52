package registry

import (
	"testing"

	"github.com/optics-dev/optics-runner/pkg/config"
	"github.com/optics-dev/optics-runner/pkg/core"
)

func newTestConfig() *config.Config {
	return &config.Config{
		DriverSources: config.DependencyList{
			{"appium": {Enabled: true, URL: "http://127.0.0.1:4723"}},
			{"ble": {Enabled: false}},
		},
		ElementsSources: config.DependencyList{
			{"appium_find_element": {Enabled: true}},
			{"appium_page_source": {Enabled: false}},
			{"device_screenshot": {Enabled: true}},
		},
		TextDetection: config.DependencyList{
			{"easyocr": {Enabled: false}},
		},
	}
}

func TestFromConfig_PreservesDeclarationOrder(t *testing.T) {
	r := FromConfig(newTestConfig())

	providers := r.Providers(core.CategoryElementSource)
	want := []string{"appium_find_element", "appium_page_source", "device_screenshot"}
	if len(providers) != len(want) {
		t.Fatalf("expected %d providers, got %d", len(want), len(providers))
	}
	for i, p := range providers {
		if p.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], p.Name)
		}
	}
}

func TestFromConfig_RetainsDisabledEntries(t *testing.T) {
	r := FromConfig(newTestConfig())

	all := r.Providers(core.CategoryDriver)
	if len(all) != 2 {
		t.Fatalf("disabled entries must stay listed, got %d", len(all))
	}

	enabled := r.Enabled(core.CategoryDriver)
	if len(enabled) != 1 || enabled[0].Name != "appium" {
		t.Errorf("expected only appium enabled, got %v", enabled)
	}
	if enabled[0].URL != "http://127.0.0.1:4723" {
		t.Errorf("provider settings lost: %+v", enabled[0])
	}
}

func TestLookup(t *testing.T) {
	r := FromConfig(newTestConfig())

	p, ok := r.Lookup(core.CategoryDriver, "ble")
	if !ok || p.Enabled {
		t.Errorf("expected disabled ble entry, got %+v ok=%v", p, ok)
	}
	if _, ok := r.Lookup(core.CategoryDriver, "nope"); ok {
		t.Error("unexpected hit for unknown provider")
	}
}

func TestValidate(t *testing.T) {
	r := FromConfig(newTestConfig())

	if err := r.Validate(core.CategoryDriver, core.CategoryElementSource); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	// text_detection has no enabled candidate.
	if err := r.Validate(core.CategoryTextDetection); err == nil {
		t.Error("expected error for category with no enabled providers")
	}
	// image_detection is entirely absent.
	if err := r.Validate(core.CategoryImageDetection); err == nil {
		t.Error("expected error for unconfigured category")
	}
}
