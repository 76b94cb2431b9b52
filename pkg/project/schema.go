package project

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// documentSchema validates the overall shape of a project YAML document
// before the ordered decode runs. Step-level detail is checked during decode;
// the schema catches grossly malformed documents with a uniform message.
const documentSchema = `{
  "type": "object",
  "properties": {
    "Test Cases": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "string"}
      }
    },
    "Modules": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "anyOf": [
            {"type": "string"},
            {"type": "object", "minProperties": 1, "maxProperties": 1}
          ]
        }
      }
    },
    "Elements": {
      "type": "object",
      "additionalProperties": {"type": ["string", "number", "boolean"]}
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("project.schema.json", documentSchema)
	})
	return compiledSchema, schemaErr
}

// validateDocument checks raw YAML bytes against the project document schema.
// YAML is decoded to a generic tree and round-tripped through JSON so the
// schema compiler sees plain JSON types.
func validateDocument(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile project schema: %w", err)
	}

	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if tree == nil {
		return nil
	}

	jsonData, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid project document: %w", err)
	}
	return nil
}
