package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAML project documents use top-level "Test Cases", "Modules" and "Elements"
// mappings. Decoding walks yaml.Node content directly so declaration order is
// preserved; plain map decoding would lose it.

func readYAMLTestCases(path string, p *Project) error {
	root, err := loadYAMLDocument(path)
	if err != nil {
		return err
	}
	section := mappingValue(root, "Test Cases")
	if section == nil {
		return nil
	}
	if section.Kind != yaml.MappingNode {
		return &TableError{Path: path, Line: section.Line, Message: "Test Cases must be a mapping"}
	}
	for i := 0; i < len(section.Content)-1; i += 2 {
		id := section.Content[i].Value
		seq := section.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return &TableError{Path: path, Line: seq.Line, Message: fmt.Sprintf("test case %q: modules must be a list", id)}
		}
		for _, item := range seq.Content {
			if item.Kind != yaml.ScalarNode || item.Value == "" {
				return &TableError{Path: path, Line: item.Line, Message: fmt.Sprintf("test case %q: module reference must be a name", id)}
			}
			p.AddTestCaseRow(id, item.Value)
		}
	}
	return nil
}

func readYAMLModules(path string, p *Project) error {
	root, err := loadYAMLDocument(path)
	if err != nil {
		return err
	}
	section := mappingValue(root, "Modules")
	if section == nil {
		return nil
	}
	if section.Kind != yaml.MappingNode {
		return &TableError{Path: path, Line: section.Line, Message: "Modules must be a mapping"}
	}
	for i := 0; i < len(section.Content)-1; i += 2 {
		name := section.Content[i].Value
		seq := section.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return &TableError{Path: path, Line: seq.Line, Message: fmt.Sprintf("module %q: steps must be a list", name)}
		}
		for _, item := range seq.Content {
			step, err := parseYAMLStep(item, path, name)
			if err != nil {
				return err
			}
			p.AddModuleStep(name, step)
		}
	}
	return nil
}

// parseYAMLStep accepts either a bare keyword scalar or a single-key mapping
// of keyword to its parameter list:
//
//	- Launch App
//	- Press Element: ["${login_button}"]
func parseYAMLStep(node *yaml.Node, path, module string) (KeywordStep, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return KeywordStep{}, &TableError{Path: path, Line: node.Line, Message: fmt.Sprintf("module %q: empty step", module)}
		}
		return KeywordStep{Keyword: node.Value}, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return KeywordStep{}, &TableError{Path: path, Line: node.Line, Message: fmt.Sprintf("module %q: step must map one keyword to its parameters", module)}
		}
		keyword := node.Content[0].Value
		valueNode := node.Content[1]
		var params []string
		switch valueNode.Kind {
		case yaml.ScalarNode:
			if valueNode.Value != "" {
				params = []string{valueNode.Value}
			}
		case yaml.SequenceNode:
			for _, item := range valueNode.Content {
				params = append(params, item.Value)
			}
		default:
			return KeywordStep{}, &TableError{Path: path, Line: valueNode.Line, Message: fmt.Sprintf("module %q: parameters must be a scalar or list", module)}
		}
		return stepFromParams(keyword, params), nil
	default:
		return KeywordStep{}, &TableError{Path: path, Line: node.Line, Message: fmt.Sprintf("module %q: step must be a keyword or mapping", module)}
	}
}

func readYAMLElements(path string, p *Project) error {
	root, err := loadYAMLDocument(path)
	if err != nil {
		return err
	}
	section := mappingValue(root, "Elements")
	if section == nil {
		return nil
	}
	if section.Kind != yaml.MappingNode {
		return &TableError{Path: path, Line: section.Line, Message: "Elements must be a mapping"}
	}
	for i := 0; i < len(section.Content)-1; i += 2 {
		name := section.Content[i].Value
		value := section.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return &TableError{Path: path, Line: value.Line, Message: fmt.Sprintf("element %q: value must be a scalar", name)}
		}
		if err := p.Catalog.Add(name, value.Value); err != nil {
			return err
		}
	}
	return nil
}

// loadYAMLDocument reads and parses a project YAML file, validating its
// structure against the embedded document schema before returning the root
// mapping node.
func loadYAMLDocument(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided project file
	if err != nil {
		return nil, err
	}

	if err := validateDocument(data); err != nil {
		return nil, &TableError{Path: path, Message: err.Error()}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &TableError{Path: path, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode}, nil
	}
	return doc.Content[0], nil
}

// mappingValue returns the value node for the given top-level key.
func mappingValue(root *yaml.Node, key string) *yaml.Node {
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key {
			return root.Content[i+1]
		}
	}
	return nil
}
