package sandbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/michaelbrown/codepad/internal/logging"
)

// Outcome is what one run produced. Error carries stderr when the program
// exited non-zero.
type Outcome struct {
	Output   string
	Error    string
	ExitCode int
}

// Runner maps a language to its runtime and executes code in a Sandbox.
type Runner struct {
	sb     Sandbox
	logger *slog.Logger
}

// NewRunner creates a Runner. A nil sandbox yields a Runner whose every call
// fails with ErrUnavailable.
func NewRunner(sb Sandbox, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{sb: sb, logger: logger}
}

// Available reports whether the underlying sandbox can run code.
func (r *Runner) Available() bool {
	if r == nil || r.sb == nil {
		return false
	}
	if a, ok := r.sb.(interface{ Available() bool }); ok {
		return a.Available()
	}
	return true
}

// Run executes code written in lang.
func (r *Runner) Run(ctx context.Context, lang, code string) (Outcome, error) {
	rt, ok := Lookup(lang)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if !r.Available() {
		return Outcome{}, ErrUnavailable
	}

	res, err := r.sb.Exec(ctx, ExecOpts{
		Image:   rt.Image,
		Command: rt.Command,
		Code:    code,
	})
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Output: res.Stdout, ExitCode: res.ExitCode}
	if res.ExitCode != 0 {
		out.Error = res.Stderr
		if out.Error == "" {
			out.Error = fmt.Sprintf("exit code %d", res.ExitCode)
		}
	}
	r.logger.Debug("sandbox run", "language", Canonical(lang), "exit_code", res.ExitCode)
	return out, nil
}
