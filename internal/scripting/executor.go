// Package scripting runs JavaScript in an embedded goja runtime and captures
// what the script writes to the console.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dop251/goja"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/logging"
)

const (
	// Name prefixes error results.
	Name = "JavaScript"

	// NoOutput is returned when a script succeeds silently.
	NoOutput = "Code executed successfully (no output)"

	returnPrefix = "Return value: "
)

// Executor evaluates scripts. Each call gets a fresh runtime, so scripts
// cannot see each other or anything of the host besides the console.
//
// There is no timeout: a script that never finishes blocks its caller
// until ctx is cancelled.
type Executor struct {
	logger       *slog.Logger
	maxCallStack int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger forwards console output to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMaxCallStackSize bounds recursion depth. Zero means unbounded.
func WithMaxCallStackSize(n int) Option {
	return func(e *Executor) { e.maxCallStack = n }
}

// New creates an Executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger:       logging.Nop(),
		maxCallStack: 8192,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ execution.LocalExecutor = (*Executor)(nil)

// Execute runs source as the body of a function. Console calls are captured
// line by line and a returned value other than undefined is appended.
func (e *Executor) Execute(ctx context.Context, source string) (res execution.Result) {
	vm := goja.New()
	if e.maxCallStack > 0 {
		vm.SetMaxCallStackSize(e.maxCallStack)
	}

	con := newConsole(vm, e.logger)
	if err := con.install(); err != nil {
		return failure(err)
	}
	release := con.capture()
	defer release()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("script panicked", "panic", r)
			res = failure(fmt.Errorf("%v", r))
		}
	}()

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	fn, err := vm.New(vm.Get("Function"), vm.ToValue(source))
	if err != nil {
		return failure(err)
	}
	call, ok := goja.AssertFunction(fn)
	if !ok {
		return failure(errors.New("compiled source is not callable"))
	}
	value, err := call(goja.Undefined())
	if err != nil {
		return failure(err)
	}

	lines := con.lines()
	if value != nil && !goja.IsUndefined(value) {
		lines = append(lines, returnPrefix+jsString(vm, value))
	}
	if len(lines) == 0 {
		return execution.Succeeded(NoOutput)
	}
	return execution.Succeeded(strings.Join(lines, "\n"))
}

func failure(err error) execution.Result {
	return execution.Failed(Name + " Error: " + errorMessage(err))
}

// errorMessage extracts what a script would see as error.message.
func errorMessage(err error) string {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		val := exc.Value()
		if obj, ok := val.(*goja.Object); ok {
			if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
				return msg.String()
			}
		}
		if val != nil {
			return val.String()
		}
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Sprint(interrupted.Value())
	}
	return err.Error()
}
