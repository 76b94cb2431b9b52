// Package mock provides in-memory capability providers for testing and dry
// runs without a real device.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/optics-dev/optics-runner/pkg/core"
)

// Config configures mock provider behavior.
type Config struct {
	// Name reported by the provider. Defaults to "mock".
	Name string
	// FailFirst makes the first N invocations fail before succeeding.
	FailFirst int
	// AlwaysFail makes every invocation fail.
	AlwaysFail bool
	// Delay adds artificial latency per invocation.
	Delay time.Duration
}

func (c *Config) name() string {
	if c.Name == "" {
		return "mock"
	}
	return c.Name
}

// Driver is a mock core.Driver.
type Driver struct {
	Config Config

	mu       sync.Mutex
	calls    int
	Keywords []string // Keywords executed, in order
	Launched string   // Last launch target
	Closed   bool
}

// NewDriver creates a mock driver.
func NewDriver(cfg Config) *Driver {
	return &Driver{Config: cfg}
}

// Name returns the configured provider name.
func (d *Driver) Name() string { return d.Config.name() }

// Calls returns the number of Execute invocations so far.
func (d *Driver) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Launch records the target.
func (d *Driver) Launch(_ context.Context, target string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Launched = target
	return nil
}

// Execute simulates executing a keyword.
func (d *Driver) Execute(_ context.Context, keyword string, params []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.Config.Delay > 0 {
		time.Sleep(d.Config.Delay)
	}
	if d.Config.AlwaysFail || d.calls <= d.Config.FailFirst {
		return core.ErrUnsupportedKeyword.WithMessage(
			fmt.Sprintf("mock failure on call %d (%s)", d.calls, keyword))
	}
	d.Keywords = append(d.Keywords, keyword)
	return nil
}

// Close marks the driver closed.
func (d *Driver) Close(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// ElementSource is a mock core.ElementSource backed by a fixed element set.
type ElementSource struct {
	Config Config

	// Known maps element values to their mock locations.
	Known map[string]core.Bounds

	mu    sync.Mutex
	calls int
}

// NewElementSource creates a mock element source that knows the given
// element values.
func NewElementSource(cfg Config, known ...string) *ElementSource {
	s := &ElementSource{Config: cfg, Known: make(map[string]core.Bounds)}
	for i, el := range known {
		s.Known[el] = core.Bounds{X: 10, Y: 100 * (i + 1), Width: 200, Height: 50}
	}
	return s
}

// Name returns the configured provider name.
func (s *ElementSource) Name() string { return s.Config.name() }

// Locate finds an element in the known set.
func (s *ElementSource) Locate(_ context.Context, element string) (core.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Config.AlwaysFail || s.calls <= s.Config.FailFirst {
		return core.Location{}, core.ErrElementNotFound.WithMessage(
			fmt.Sprintf("mock locate failure on call %d", s.calls))
	}
	bounds, ok := s.Known[element]
	if !ok {
		return core.Location{}, core.ErrElementNotFound.WithMessage(
			fmt.Sprintf("element not found: %s", element))
	}
	return core.Location{Element: element, Bounds: bounds, Found: true}, nil
}

// PageSource returns a canned hierarchy listing the known elements.
func (s *ElementSource) PageSource(_ context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("<hierarchy>")
	for el := range s.Known {
		fmt.Fprintf(&b, "<node value=%q/>", el)
	}
	b.WriteString("</hierarchy>")
	return b.String(), nil
}

// TextDetector is a mock core.TextDetector that finds text contained in the
// capture bytes.
type TextDetector struct {
	Config Config
}

// NewTextDetector creates a mock text detector.
func NewTextDetector(cfg Config) *TextDetector {
	return &TextDetector{Config: cfg}
}

// Name returns the configured provider name.
func (t *TextDetector) Name() string { return t.Config.name() }

// Detect reports the text found when the capture contains it verbatim.
func (t *TextDetector) Detect(_ context.Context, capture []byte, text string) (core.Location, error) {
	if t.Config.AlwaysFail {
		return core.Location{}, core.ErrTextNotFound
	}
	if idx := strings.Index(string(capture), text); idx >= 0 {
		return core.Location{
			Element: text,
			Bounds:  core.Bounds{X: idx, Y: 0, Width: len(text), Height: 1},
			Found:   true,
			Score:   1.0,
		}, nil
	}
	return core.Location{}, core.ErrTextNotFound.WithMessage(
		fmt.Sprintf("text not found: %s", text))
}

// ImageDetector is a mock core.ImageDetector keyed by template name.
type ImageDetector struct {
	Config Config

	// Matches lists template names the detector will report as found.
	Matches map[string]core.Bounds
}

// NewImageDetector creates a mock image detector matching the given templates.
func NewImageDetector(cfg Config, templates ...string) *ImageDetector {
	d := &ImageDetector{Config: cfg, Matches: make(map[string]core.Bounds)}
	for i, tpl := range templates {
		d.Matches[tpl] = core.Bounds{X: 50 * (i + 1), Y: 50, Width: 64, Height: 64}
	}
	return d
}

// Name returns the configured provider name.
func (d *ImageDetector) Name() string { return d.Config.name() }

// Match reports the template location when it is in the match set.
func (d *ImageDetector) Match(_ context.Context, _ []byte, template string) (core.Location, error) {
	if d.Config.AlwaysFail {
		return core.Location{}, core.ErrTemplateNotFound
	}
	bounds, ok := d.Matches[template]
	if !ok {
		return core.Location{}, core.ErrTemplateNotFound.WithMessage(
			fmt.Sprintf("template not matched: %s", template))
	}
	return core.Location{Element: template, Bounds: bounds, Found: true, Score: 0.97}, nil
}
