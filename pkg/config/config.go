// Package config handles configuration for optics-runner.
//
// Configuration is layered: built-in defaults, then the global config file in
// the optics home directory, then the project's config.yaml. Later layers win,
// merged recursively.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound indicates the requested config file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// ParseError indicates the config file content is not well-formed YAML.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid config: %v", e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// DependencyConfig describes one fallback candidate within a category list.
// Position in the owning list defines priority; disabled entries are skipped
// at selection time, never removed.
type DependencyConfig struct {
	Enabled      bool                   `yaml:"enabled"`
	URL          string                 `yaml:"url,omitempty"`
	Capabilities map[string]interface{} `yaml:"capabilities,omitempty"`
}

// DependencyList is an ordered list of named dependency candidates. Each entry
// is a single-key mapping ({name: settings}), matching the YAML shape:
//
//	driver_sources:
//	  - appium:
//	      enabled: true
type DependencyList []map[string]DependencyConfig

// Names returns the candidate names in declared order.
func (l DependencyList) Names() []string {
	names := make([]string, 0, len(l))
	for _, entry := range l {
		for name := range entry {
			names = append(names, name)
		}
	}
	return names
}

// Config represents the merged runner configuration.
type Config struct {
	Console bool `yaml:"console"`

	DriverSources   DependencyList `yaml:"driver_sources"`
	ElementsSources DependencyList `yaml:"elements_sources"`
	TextDetection   DependencyList `yaml:"text_detection"`
	ImageDetection  DependencyList `yaml:"image_detection"`

	FileLog  bool   `yaml:"file_log"`
	JSONLog  bool   `yaml:"json_log"`
	JSONPath string `yaml:"json_path,omitempty"`
	LogLevel string `yaml:"log_level"`
	LogPath  string `yaml:"log_path,omitempty"`

	ProjectPath         string `yaml:"project_path,omitempty"`
	ExecutionOutputPath string `yaml:"execution_output_path,omitempty"`

	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`

	EventAttributesJSON string `yaml:"event_attributes_json,omitempty"`

	HaltDuration float64 `yaml:"halt_duration"` // seconds between retry attempts
	MaxAttempts  int     `yaml:"max_attempts"`  // attempts per provider, >= 1

	// raw holds the merged document tree, including unrecognized keys.
	// Unknown keys are preserved but unvalidated.
	raw map[string]interface{}
}

// Dependencies returns the dependency list for the given category key, or nil
// for unknown keys.
func (c *Config) Dependencies(key string) DependencyList {
	switch key {
	case "driver_sources":
		return c.DriverSources
	case "elements_sources":
		return c.ElementsSources
	case "text_detection":
		return c.TextDetection
	case "image_detection":
		return c.ImageDetection
	}
	return nil
}

// Default returns the built-in configuration, mirroring the candidate lists a
// fresh installation starts with. Only appium_find_element is enabled.
func Default() *Config {
	return &Config{
		Console:  true,
		LogLevel: "INFO",
		DriverSources: DependencyList{
			{"appium": {
				Enabled: false,
				URL:     "http://127.0.0.1:4723",
				Capabilities: map[string]interface{}{
					"deviceName":     nil,
					"platformName":   nil,
					"automationName": nil,
					"appPackage":     nil,
					"appActivity":    nil,
				},
			}},
			{"ble": {Enabled: false}},
		},
		ElementsSources: DependencyList{
			{"appium_find_element": {Enabled: true}},
			{"appium_page_source": {Enabled: false}},
			{"device_screenshot": {Enabled: false}},
			{"webcam_screenshot": {Enabled: false}},
		},
		TextDetection: DependencyList{
			{"easyocr": {Enabled: false}},
			{"pytesseract": {Enabled: false}},
			{"google_vision": {Enabled: false}},
		},
		ImageDetection: DependencyList{
			{"templatematch": {Enabled: false}},
		},
		HaltDuration: 1,
		MaxAttempts:  3,
	}
}

// Load loads configuration from a single file. The result carries the raw
// document tree for dotted-path lookups.
func Load(path string) (*Config, error) {
	raw, err := loadTree(path)
	if err != nil {
		return nil, err
	}
	return fromTree(raw, path)
}

// LoadProject loads the effective configuration for a project directory:
// defaults, overlaid with the global config (if present), overlaid with the
// project's config.yaml (if present).
func LoadProject(dir string) (*Config, error) {
	merged := defaultTree()

	globalPath := GlobalConfigPath()
	if global, err := loadTree(globalPath); err == nil {
		merged = DeepMerge(merged, global)
	} else if !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	projectPath := filepath.Join(dir, "config.yaml")
	if project, err := loadTree(projectPath); err == nil {
		merged = DeepMerge(merged, project)
	} else if !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	cfg, err := fromTree(merged, projectPath)
	if err != nil {
		return nil, err
	}
	cfg.ProjectPath = dir
	return cfg, nil
}

// DeepMerge recursively merges two trees, giving priority to overlay.
func DeepMerge(base, overlay map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		if sub, ok := v.(map[string]interface{}); ok {
			if existing, ok := merged[k].(map[string]interface{}); ok {
				merged[k] = DeepMerge(existing, sub)
				continue
			}
		}
		merged[k] = v
	}
	return merged
}

func loadTree(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	if tree == nil {
		tree = map[string]interface{}{}
	}
	return tree, nil
}

func defaultTree() map[string]interface{} {
	// Round-trip the default config through YAML to get a plain tree.
	data, err := yaml.Marshal(Default())
	if err != nil {
		panic(fmt.Sprintf("config: marshal defaults: %v", err))
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		panic(fmt.Sprintf("config: unmarshal defaults: %v", err))
	}
	return tree
}

func fromTree(tree map[string]interface{}, path string) (*Config, error) {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	cfg.raw = tree
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &cfg, nil
}

// Save writes the configuration to the given path, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
