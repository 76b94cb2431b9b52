package project

import (
	"fmt"
	"regexp"
)

// varPattern matches a token that is exactly one ${identifier} reference.
var varPattern = regexp.MustCompile(`^\$\{([^${}]+)\}$`)

// VariableNotFoundError indicates a ${reference} names an element that is not
// in the catalog.
type VariableNotFoundError struct {
	Name string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable not found: %s", e.Name)
}

// DuplicateElementError indicates two element definitions share a name.
type DuplicateElementError struct {
	Name string
}

func (e *DuplicateElementError) Error() string {
	return fmt.Sprintf("duplicate element name: %s", e.Name)
}

// Catalog is the name→value table used for variable resolution. Names are
// unique within a project; lookup is case-sensitive exact match.
type Catalog struct {
	elements map[string]Element
	order    []string
}

// NewCatalog creates an empty element catalog.
func NewCatalog() *Catalog {
	return &Catalog{elements: make(map[string]Element)}
}

// Add registers an element definition. Duplicate names are an error.
func (c *Catalog) Add(name, value string) error {
	if _, exists := c.elements[name]; exists {
		return &DuplicateElementError{Name: name}
	}
	c.elements[name] = Element{Name: name, Value: value, Kind: DetectKind(value)}
	c.order = append(c.order, name)
	return nil
}

// Lookup returns the element for the given name.
func (c *Catalog) Lookup(name string) (Element, bool) {
	el, ok := c.elements[name]
	return el, ok
}

// Names returns element names in declared order.
func (c *Catalog) Names() []string {
	return c.order
}

// Len returns the number of elements in the catalog.
func (c *Catalog) Len() int {
	return len(c.elements)
}

// Resolve resolves a single token against the catalog.
//
// A token that is exactly ${identifier} resolves to the element's value, or
// fails with VariableNotFoundError when the identifier is absent. Tokens
// without variable syntax pass through unchanged. A token with an opening
// "${" but no matching "}" also passes through unchanged: near-miss syntax is
// intentionally treated as a literal rather than an error, so a stray "${" in
// test data cannot abort a build.
func (c *Catalog) Resolve(token string) (string, error) {
	m := varPattern.FindStringSubmatch(token)
	if m == nil {
		return token, nil
	}
	el, ok := c.elements[m[1]]
	if !ok {
		return "", &VariableNotFoundError{Name: m[1]}
	}
	return el.Value, nil
}

// ResolveAll resolves every token in a slice, returning the first failure.
func (c *Catalog) ResolveAll(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	resolved := make([]string, len(tokens))
	for i, tok := range tokens {
		v, err := c.Resolve(tok)
		if err != nil {
			return nil, err
		}
		resolved[i] = v
	}
	return resolved, nil
}
