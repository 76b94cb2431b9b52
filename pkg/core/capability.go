// Package core defines the capability model shared by the assembly engine:
// categories, provider configuration, and the interfaces concrete engines
// (drivers, element sources, OCR and vision backends) implement.
package core

import "context"

// Category identifies a capability role that interchangeable providers can fill.
type Category string

// Capability categories.
const (
	CategoryDriver         Category = "driver_sources"
	CategoryElementSource  Category = "elements_sources"
	CategoryTextDetection  Category = "text_detection"
	CategoryImageDetection Category = "image_detection"
)

// Categories lists all capability categories in their canonical order.
func Categories() []Category {
	return []Category{
		CategoryDriver,
		CategoryElementSource,
		CategoryTextDetection,
		CategoryImageDetection,
	}
}

// String returns the config key for the category.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether the category is one of the known capability roles.
func (c Category) Valid() bool {
	switch c {
	case CategoryDriver, CategoryElementSource, CategoryTextDetection, CategoryImageDetection:
		return true
	}
	return false
}

// ProviderConfig describes one fallback candidate within a category list.
// Position in the owning list defines priority; disabled entries are skipped
// at selection time but never removed.
type ProviderConfig struct {
	Name         string
	Enabled      bool
	URL          string
	Capabilities map[string]interface{}
}

// Capability returns a named capability value, or def when absent.
func (p ProviderConfig) Capability(key string, def interface{}) interface{} {
	if v, ok := p.Capabilities[key]; ok {
		return v
	}
	return def
}

// Point is a screen coordinate in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Bounds is an element's bounding box.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Location is a located element: where it is and what the source knows about it.
type Location struct {
	Element string  `json:"element"`
	Bounds  Bounds  `json:"bounds"`
	Found   bool    `json:"found"`
	Score   float64 `json:"score,omitempty"` // match confidence, when the backend reports one
}

// Driver executes keyword actions against a device or app under test.
type Driver interface {
	// Name returns the provider name as declared in configuration.
	Name() string
	// Launch starts the app/session for the given target.
	Launch(ctx context.Context, target string) error
	// Execute runs a single keyword with already-resolved parameters.
	Execute(ctx context.Context, keyword string, params []string) error
	// Close tears the session down.
	Close(ctx context.Context) error
}

// ElementSource locates elements on the current screen or page.
type ElementSource interface {
	Name() string
	// Locate finds an element by its resolved value (text, id or xpath).
	Locate(ctx context.Context, element string) (Location, error)
	// PageSource returns the current UI hierarchy, when the source supports it.
	PageSource(ctx context.Context) (string, error)
}

// TextDetector recognizes text in a screen capture.
type TextDetector interface {
	Name() string
	// Detect returns the location of the given text in the capture.
	Detect(ctx context.Context, capture []byte, text string) (Location, error)
}

// ImageDetector matches a template image against a screen capture.
type ImageDetector interface {
	Name() string
	// Match returns the location of the template in the capture.
	Match(ctx context.Context, capture []byte, template string) (Location, error)
}
