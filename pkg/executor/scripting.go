package executor

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/optics-dev/optics-runner/pkg/logger"
)

// ScriptEngine evaluates JavaScript expressions for the evaluateScript and
// runScript keywords. The runtime is seeded with the resolved element
// catalog so scripts can read locator values by name.
type ScriptEngine struct {
	runtime   *goja.Runtime
	variables map[string]string
	mu        sync.Mutex
}

// NewScriptEngine creates a script engine with console.log wired to the
// runner log.
func NewScriptEngine() *ScriptEngine {
	se := &ScriptEngine{
		runtime:   goja.New(),
		variables: make(map[string]string),
	}
	se.setupBuiltins()
	return se
}

func (se *ScriptEngine) setupBuiltins() {
	console := se.runtime.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]interface{}, len(call.Arguments))
		for i, a := range call.Arguments {
			args[i] = a.Export()
		}
		logger.Info("script: %v", args)
		return goja.Undefined()
	})
	_ = se.runtime.Set("console", console)
	_ = se.runtime.Set("vars", se.variables)
}

// SetVariable sets a variable in both the Go map and the JS runtime.
func (se *ScriptEngine) SetVariable(name, value string) {
	se.mu.Lock()
	defer se.mu.Unlock()
	se.variables[name] = value
	_ = se.runtime.Set("vars", se.variables)
}

// SetVariables sets multiple variables.
func (se *ScriptEngine) SetVariables(vars map[string]string) {
	for k, v := range vars {
		se.SetVariable(k, v)
	}
}

// Evaluate runs a script and returns its result as a string. A script that
// evaluates to undefined returns the empty string.
func (se *ScriptEngine) Evaluate(script string) (string, error) {
	if script == "" {
		return "", fmt.Errorf("evaluate: empty script")
	}
	se.mu.Lock()
	defer se.mu.Unlock()

	value, err := se.runtime.RunString(script)
	if err != nil {
		return "", fmt.Errorf("script error: %w", err)
	}
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return "", nil
	}
	return value.String(), nil
}

// Close releases the engine. The goja runtime has no explicit teardown; this
// exists so callers can treat the engine like other run resources.
func (se *ScriptEngine) Close() {}
