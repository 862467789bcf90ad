package scripting

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

var consoleMethods = []string{"log", "info", "warn", "error", "debug", "trace"}

// console is the script-facing diagnostic channel. Outside a capture window
// it only forwards to the host logger; inside one it also records each call
// as a line.
type console struct {
	vm     *goja.Runtime
	logger *slog.Logger

	mu        sync.Mutex
	capturing bool
	captured  []string
}

func newConsole(vm *goja.Runtime, logger *slog.Logger) *console {
	return &console{vm: vm, logger: logger}
}

func (c *console) install() error {
	obj := c.vm.NewObject()
	for _, method := range consoleMethods {
		if err := obj.Set(method, c.method(method)); err != nil {
			return err
		}
	}
	return c.vm.Set("console", obj)
}

// capture starts recording lines. The returned func ends the window and
// must be called even if evaluation fails.
func (c *console) capture() (release func()) {
	c.mu.Lock()
	c.capturing = true
	c.captured = nil
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.capturing = false
		c.mu.Unlock()
	}
}

func (c *console) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.captured))
	copy(out, c.captured)
	return out
}

func (c *console) method(name string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = c.format(arg)
		}
		line := strings.Join(parts, " ")

		c.mu.Lock()
		if c.capturing {
			c.captured = append(c.captured, line)
		}
		c.mu.Unlock()

		c.logger.Debug("script console", "method", name, "line", line)
		return goja.Undefined()
	}
}

// jsString converts v the way the script's String(v) would. Value.String
// differs for symbols, where it yields only the description.
func jsString(vm *goja.Runtime, v goja.Value) string {
	if _, isSym := v.(*goja.Symbol); !isSym {
		return v.String()
	}
	if str, ok := goja.AssertFunction(vm.Get("String")); ok {
		if out, err := str(goja.Undefined(), v); err == nil {
			return out.String()
		}
	}
	return v.String()
}

// format renders objects (null included) as indented JSON and everything
// else with String().
func (c *console) format(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return jsString(c.vm, v)
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return obj.String()
	}

	stringify, ok := goja.AssertFunction(c.vm.Get("JSON").ToObject(c.vm).Get("stringify"))
	if !ok {
		return obj.String()
	}
	out, err := stringify(goja.Undefined(), obj, goja.Null(), c.vm.ToValue(2))
	if err != nil {
		// Circular structures throw into the script.
		panic(err)
	}
	if out == nil || goja.IsUndefined(out) {
		return "undefined"
	}
	return out.String()
}
