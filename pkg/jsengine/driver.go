package jsengine

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// driverObject returns the driver global. Every method calls the bound
// core.Driver synchronously; driver errors are thrown as JS exceptions.
func (e *Engine) driverObject() *goja.Object {
	obj := e.runtime.NewObject()

	obj.Set("findElement", func(call goja.FunctionCall) goja.Value {
		handle, err := e.driver.FindElement(e.ctx, "id", e.stringArg(call, 0, "findElement"))
		e.throwIf(err)
		return e.runtime.ToValue(handle.ID)
	})

	obj.Set("findElements", func(call goja.FunctionCall) goja.Value {
		handles, err := e.driver.FindElements(e.ctx, "id", e.stringArg(call, 0, "findElements"))
		e.throwIf(err)
		ids := make([]interface{}, len(handles))
		for i, h := range handles {
			ids[i] = h.ID
		}
		return e.runtime.NewArray(ids...)
	})

	obj.Set("click", func(call goja.FunctionCall) goja.Value {
		e.throwIf(e.driver.Click(e.ctx, e.stringArg(call, 0, "click")))
		return goja.Undefined()
	})

	obj.Set("getText", func(call goja.FunctionCall) goja.Value {
		text, err := e.driver.GetText(e.ctx, e.stringArg(call, 0, "getText"))
		e.throwIf(err)
		return e.runtime.ToValue(text)
	})

	obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		ref := e.stringArg(call, 0, "getAttribute")
		raw, err := e.driver.GetAttribute(e.ctx, e.stringArg(call, 1, "getAttribute"), ref)
		e.throwIf(err)
		return e.rawToValue(raw)
	})

	obj.Set("getCss", func(call goja.FunctionCall) goja.Value {
		ref := e.stringArg(call, 0, "getCss")
		raw, err := e.driver.GetCSSProperty(e.ctx, e.stringArg(call, 1, "getCss"), ref)
		e.throwIf(err)
		return e.rawToValue(raw)
	})

	obj.Set("getRect", func(call goja.FunctionCall) goja.Value {
		raw, err := e.driver.GetElementRect(e.ctx, e.stringArg(call, 0, "getRect"))
		e.throwIf(err)
		return e.rawToValue(raw)
	})

	obj.Set("isDisplayed", func(call goja.FunctionCall) goja.Value {
		ok, err := e.driver.ElementDisplayed(e.ctx, e.stringArg(call, 0, "isDisplayed"))
		e.throwIf(err)
		return e.runtime.ToValue(ok)
	})

	obj.Set("isEnabled", func(call goja.FunctionCall) goja.Value {
		ok, err := e.driver.ElementEnabled(e.ctx, e.stringArg(call, 0, "isEnabled"))
		e.throwIf(err)
		return e.runtime.ToValue(ok)
	})

	obj.Set("screenshot", func(call goja.FunctionCall) goja.Value {
		raw, err := e.driver.Screenshot(e.ctx)
		e.throwIf(err)
		return e.rawToValue(raw)
	})

	obj.Set("pageSource", func(call goja.FunctionCall) goja.Value {
		raw, err := e.driver.GetPageSource(e.ctx)
		e.throwIf(err)
		return e.rawToValue(raw)
	})

	obj.Set("windowRect", func(call goja.FunctionCall) goja.Value {
		raw, err := e.driver.GetWindowRect(e.ctx)
		e.throwIf(err)
		return e.rawToValue(raw)
	})

	// performActions accepts a JS value (array of input sources) or a JSON string.
	obj.Set("performActions", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			panic(e.runtime.NewTypeError("performActions requires 1 argument"))
		}
		arg := call.Arguments[0]

		var payload []byte
		if s, ok := arg.Export().(string); ok {
			if !json.Valid([]byte(s)) {
				panic(e.runtime.NewTypeError("performActions: invalid JSON"))
			}
			payload = []byte(s)
		} else {
			b, err := json.Marshal(arg.Export())
			if err != nil {
				panic(e.runtime.NewTypeError(fmt.Sprintf("performActions: %v", err)))
			}
			payload = b
		}

		e.throwIf(e.driver.PerformActions(e.ctx, json.RawMessage(payload)))
		return goja.Undefined()
	})

	return obj
}

func (e *Engine) stringArg(call goja.FunctionCall, i int, fn string) string {
	if len(call.Arguments) <= i || goja.IsUndefined(call.Arguments[i]) || goja.IsNull(call.Arguments[i]) {
		panic(e.runtime.NewTypeError(fmt.Sprintf("%s requires %d argument(s)", fn, i+1)))
	}
	return call.Arguments[i].String()
}

func (e *Engine) throwIf(err error) {
	if err != nil {
		panic(e.runtime.NewGoError(err))
	}
}

// rawToValue turns a raw proxy payload into a JS value.
func (e *Engine) rawToValue(raw json.RawMessage) goja.Value {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return e.runtime.ToValue(string(raw))
	}
	return e.runtime.ToValue(v)
}
