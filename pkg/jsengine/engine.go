// Package jsengine runs JavaScript automation scripts against a driver.
package jsengine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/devicelab-dev/microej-driver/pkg/core"
	"github.com/devicelab-dev/microej-driver/pkg/logger"
	"github.com/dop251/goja"
)

// Engine wraps a goja runtime bound to a core.Driver.
type Engine struct {
	runtime   *goja.Runtime
	driver    core.Driver
	variables map[string]interface{}
	output    map[string]interface{}
	stdout    io.Writer
	ctx       context.Context
	mu        sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithStdout redirects console output (default os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(e *Engine) { e.stdout = w }
}

// New creates a new JS engine. A nil driver leaves the driver object out.
func New(driver core.Driver, opts ...Option) *Engine {
	e := &Engine{
		runtime:   goja.New(),
		driver:    driver,
		variables: make(map[string]interface{}),
		output:    make(map[string]interface{}),
		stdout:    os.Stdout,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.setupBuiltins()
	return e
}

// setupBuiltins registers all built-in functions and objects
func (e *Engine) setupBuiltins() {
	e.setupConsole()

	e.runtime.Set("json", e.jsonFunc())

	// Output object (for passing values back to the caller)
	e.runtime.Set("output", e.output)

	if e.driver != nil {
		e.runtime.Set("driver", e.driverObject())
	}
}

// setupConsole adds console.log, console.error, console.warn.
// Lines go to stdout and the log file.
func (e *Engine) setupConsole() {
	makeConsoleFunc := func(prefix string, logf func(string, ...interface{})) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			line := fmt.Sprintln(args...)
			if prefix != "" {
				line = prefix + " " + line
			}
			fmt.Fprint(e.stdout, line)
			logf("script: %s", line[:len(line)-1])
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc("", logger.Info))
	console.Set("error", makeConsoleFunc("ERROR:", logger.Error))
	console.Set("warn", makeConsoleFunc("WARN:", logger.Warn))
	e.runtime.Set("console", console)
}

// jsonFunc returns the json() helper function
func (e *Engine) jsonFunc() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("json requires 1 argument"))
		}

		var value interface{}
		if err := json.Unmarshal([]byte(call.Arguments[0].String()), &value); err != nil {
			panic(e.runtime.NewTypeError(fmt.Sprintf("invalid JSON: %v", err)))
		}

		return e.runtime.ToValue(value)
	}
}

// SetVariable sets a variable accessible in JS as a global
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.variables[name] = value
	e.runtime.Set(name, value)
}

// SetVariables sets multiple variables
func (e *Engine) SetVariables(vars map[string]interface{}) {
	for k, v := range vars {
		e.SetVariable(k, v)
	}
}

// GetOutput returns a copy of the output object (values set by scripts)
func (e *Engine) GetOutput() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()

	outputVal := e.runtime.Get("output")
	var source map[string]interface{}

	if outputVal != nil && !goja.IsUndefined(outputVal) {
		if m, ok := outputVal.Export().(map[string]interface{}); ok {
			source = m
		}
	}

	if source == nil {
		source = e.output
	}

	result := make(map[string]interface{}, len(source))
	for k, v := range source {
		result[k] = v
	}
	return result
}

// Eval evaluates a JavaScript expression and returns the result
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}

	return result.Export(), nil
}

// EvalString evaluates a JavaScript expression and returns string result
func (e *Engine) EvalString(script string) (string, error) {
	result, err := e.Eval(script)
	if err != nil {
		return "", err
	}

	if result == nil {
		return "", nil
	}

	return fmt.Sprintf("%v", result), nil
}

// Run executes a script. Driver calls made by the script use ctx; when ctx
// is cancelled the script is interrupted.
func (e *Engine) Run(ctx context.Context, name, script string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("JS runtime error: %w", err)
	}

	e.ctx = ctx
	stop := context.AfterFunc(ctx, func() {
		e.runtime.Interrupt(ctx.Err())
	})

	_, err := e.runtime.RunScript(name, script)

	stop()
	e.ctx = context.Background()
	if ctx.Err() != nil {
		e.runtime.ClearInterrupt()
	}

	if err != nil {
		return fmt.Errorf("JS runtime error: %w", err)
	}
	return nil
}
