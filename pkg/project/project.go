// Package project handles loading of optics project tables (test cases,
// modules, elements) from CSV and YAML files, and resolution of ${variable}
// references against the element catalog.
package project

import (
	"fmt"
	"strings"

	"github.com/optics-dev/optics-runner/pkg/config"
)

// ElementKind classifies how an element value should be interpreted.
type ElementKind int

const (
	KindLiteral  ElementKind = iota // Plain text matched on screen
	KindID                          // Native resource/accessibility id
	KindXPath                       // XPath selector
	KindVariable                    // Value is itself a ${reference}
	KindImage                       // Template image path
)

// String returns the string representation of ElementKind.
func (k ElementKind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindID:
		return "id"
	case KindXPath:
		return "xpath"
	case KindVariable:
		return "variable"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// DetectKind classifies an element value. Image extensions win, then XPath
// prefixes, then resource-id shapes, then ${...} references; anything else is
// a literal.
func DetectKind(value string) ElementKind {
	if idx := strings.LastIndex(value, "."); idx >= 0 {
		switch strings.ToLower(value[idx+1:]) {
		case "jpg", "jpeg", "png", "bmp":
			return KindImage
		}
	}
	if strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") || strings.HasPrefix(value, "(") {
		return KindXPath
	}
	if strings.Contains(value, ":id/") {
		return KindID
	}
	if strings.HasPrefix(value, "${") {
		return KindVariable
	}
	return KindLiteral
}

// Element is a named locator value from the elements table.
type Element struct {
	Name  string
	Value string
	Kind  ElementKind
}

// KeywordStep is one row of a module: a keyword and its positional parameters.
// ElementRef, Value and Args may contain unresolved ${variable} syntax until
// queue build time.
type KeywordStep struct {
	Keyword    string
	ElementRef string
	Value      string
	Args       []string
}

// Params returns the step parameters in positional order, trailing empties
// trimmed.
func (s KeywordStep) Params() []string {
	params := append([]string{s.ElementRef, s.Value}, s.Args...)
	end := len(params)
	for end > 0 && params[end-1] == "" {
		end--
	}
	return params[:end]
}

// stepFromParams maps positional parameter columns onto a KeywordStep:
// param_1 is the element reference, param_2 the value, the rest are args.
func stepFromParams(keyword string, params []string) KeywordStep {
	step := KeywordStep{Keyword: keyword}
	if len(params) > 0 {
		step.ElementRef = params[0]
	}
	if len(params) > 1 {
		step.Value = params[1]
	}
	if len(params) > 2 {
		step.Args = append(step.Args, params[2:]...)
	}
	return step
}

// Module is a named, ordered sequence of keyword steps.
type Module struct {
	Name  string
	Steps []KeywordStep
}

// TestCase is a test case id with its ordered module references.
type TestCase struct {
	ID      string
	Modules []string
}

// Project is the root aggregate: configuration, element catalog and the raw
// test-case/module tables. Loaded once at run start, immutable thereafter.
type Project struct {
	Config  *config.Config
	Catalog *Catalog

	testCases []TestCase
	caseIndex map[string]int

	modules     map[string]*Module
	moduleOrder []string
}

// NewProject creates an empty project with the given configuration.
func NewProject(cfg *config.Config) *Project {
	return &Project{
		Config:    cfg,
		Catalog:   NewCatalog(),
		caseIndex: make(map[string]int),
		modules:   make(map[string]*Module),
	}
}

// AddTestCaseRow records one test-case/module pair. A test case may repeat
// across rows; rows merge by appending in first-seen order.
func (p *Project) AddTestCaseRow(id, module string) {
	if idx, ok := p.caseIndex[id]; ok {
		p.testCases[idx].Modules = append(p.testCases[idx].Modules, module)
		return
	}
	p.caseIndex[id] = len(p.testCases)
	p.testCases = append(p.testCases, TestCase{ID: id, Modules: []string{module}})
}

// AddModuleStep records one module step row, merging by module name in
// first-seen order.
func (p *Project) AddModuleStep(name string, step KeywordStep) {
	mod, ok := p.modules[name]
	if !ok {
		mod = &Module{Name: name}
		p.modules[name] = mod
		p.moduleOrder = append(p.moduleOrder, name)
	}
	mod.Steps = append(mod.Steps, step)
}

// TestCases returns the test cases in declared order.
func (p *Project) TestCases() []TestCase {
	return p.testCases
}

// Module returns the named module, with exact case-sensitive matching.
func (p *Project) Module(name string) (*Module, bool) {
	mod, ok := p.modules[name]
	return mod, ok
}

// ModuleNames returns the module names in declared order.
func (p *Project) ModuleNames() []string {
	return p.moduleOrder
}

// LoadError indicates the project directory is missing required table files.
type LoadError struct {
	Dir     string
	Missing []string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("missing required files in %s: %s", e.Dir, strings.Join(e.Missing, ", "))
}
