// Package execution routes a file to the executor responsible for its
// language and defines the result shape every executor returns.
package execution

import (
	"context"

	"github.com/michaelbrown/codepad/internal/filestore"
	"github.com/michaelbrown/codepad/internal/language"
)

// Result is the displayable outcome of running one file. Succeeded only
// affects presentation; failures are already folded into Text.
type Result struct {
	Text      string `json:"text"`
	Succeeded bool   `json:"succeeded"`
}

// Failed builds an unsuccessful result.
func Failed(text string) Result {
	return Result{Text: text}
}

// Succeeded builds a successful result.
func Succeeded(text string) Result {
	return Result{Text: text, Succeeded: true}
}

// LocalExecutor runs source in-process.
//
// Contract:
// - Errors: never returns or panics; every failure becomes a Result.
type LocalExecutor interface {
	Execute(ctx context.Context, source string) Result
}

// RemoteExecutor sends source to an execution service.
//
// Contract:
// - Errors: never returns or panics; every failure becomes a Result.
// - Context: the only blocking call in the system; honors cancellation.
type RemoteExecutor interface {
	Execute(ctx context.Context, source string, lang language.Language) Result
}

// Router picks the executor for a file's language.
type Router struct {
	local  LocalExecutor
	remote RemoteExecutor
}

// NewRouter creates a Router.
func NewRouter(local LocalExecutor, remote RemoteExecutor) *Router {
	return &Router{local: local, remote: remote}
}

// Run executes a file and returns its normalized result.
func (r *Router) Run(ctx context.Context, file filestore.Record) Result {
	return r.RunSource(ctx, file.Content, file.Language)
}

// RunSource executes source written in lang.
func (r *Router) RunSource(ctx context.Context, source string, lang language.Language) Result {
	if lang.Strategy() == language.Local {
		return r.local.Execute(ctx, source)
	}
	return r.remote.Execute(ctx, source, lang)
}
