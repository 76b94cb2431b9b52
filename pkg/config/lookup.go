package config

import (
	"strings"

	"github.com/spf13/cast"
)

// Get performs a nested lookup on the raw document tree, splitting the path
// on ".". It returns def when any segment is missing and never errors;
// unknown keys that survived the merge are reachable here.
func (c *Config) Get(path string, def interface{}) interface{} {
	if c.raw == nil {
		return def
	}
	var current interface{} = c.raw
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			return def
		}
		current, ok = node[segment]
		if !ok {
			return def
		}
	}
	if current == nil {
		return def
	}
	return current
}

// GetString returns the value at path coerced to a string.
func (c *Config) GetString(path, def string) string {
	return cast.ToString(c.Get(path, def))
}

// GetBool returns the value at path coerced to a bool.
func (c *Config) GetBool(path string, def bool) bool {
	return cast.ToBool(c.Get(path, def))
}

// GetInt returns the value at path coerced to an int.
func (c *Config) GetInt(path string, def int) int {
	return cast.ToInt(c.Get(path, def))
}

// GetFloat returns the value at path coerced to a float64.
func (c *Config) GetFloat(path string, def float64) float64 {
	return cast.ToFloat64(c.Get(path, def))
}

// GetStringSlice returns the value at path coerced to a string slice.
func (c *Config) GetStringSlice(path string, def []string) []string {
	v := c.Get(path, nil)
	if v == nil {
		return def
	}
	return cast.ToStringSlice(v)
}
