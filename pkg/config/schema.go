package config

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the expected primitive type of a config key.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindList
	KindObject
)

// Schema declares required top-level keys and their primitive kinds. Checking
// is presence plus one level of typing; it is not deep structural validation.
type Schema map[string]Kind

// MissingKeyError reports required keys that are absent or of the wrong kind.
type MissingKeyError struct {
	Keys []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("configuration missing required keys: %s", strings.Join(e.Keys, ", "))
}

// Validate checks presence and primitive type of the schema's required keys
// against the raw document tree.
func (c *Config) Validate(schema Schema) error {
	var missing []string
	for key, kind := range schema {
		v, ok := c.rawKey(key)
		if !ok || !kindMatches(v, kind) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &MissingKeyError{Keys: missing}
	}
	return nil
}

func (c *Config) rawKey(key string) (interface{}, bool) {
	if c.raw == nil {
		return nil, false
	}
	v, ok := c.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func kindMatches(v interface{}, kind Kind) bool {
	switch kind {
	case KindAny:
		return true
	case KindString:
		_, ok := v.(string)
		return ok
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindInt:
		_, ok := v.(int)
		return ok
	case KindFloat:
		switch v.(type) {
		case float64, int:
			return true
		}
		return false
	case KindList:
		_, ok := v.([]interface{})
		return ok
	case KindObject:
		_, ok := v.(map[string]interface{})
		return ok
	}
	return false
}
