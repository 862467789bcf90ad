package sandbox

import (
	"strings"
)

// Runtime says how to run one language inside a container. The code file
// is mounted at /workspace/code.
type Runtime struct {
	Image   string
	Command []string
}

var runtimes = map[string]Runtime{
	"python": {
		Image:   "python:3.12-slim",
		Command: []string{"python", "/workspace/code"},
	},
	"javascript": {
		Image:   "node:22-slim",
		Command: []string{"node", "/workspace/code"},
	},
	"go": {
		Image:   "golang:1.23-alpine",
		Command: []string{"sh", "-c", "cp /workspace/code /tmp/main.go && go run /tmp/main.go"},
	},
	"ruby": {
		Image:   "ruby:3.3-slim",
		Command: []string{"ruby", "/workspace/code"},
	},
}

var aliases = map[string]string{
	"py":     "python",
	"js":     "javascript",
	"node":   "javascript",
	"nodejs": "javascript",
	"golang": "go",
	"rb":     "ruby",
}

// Canonical lower-cases a language name and resolves aliases.
func Canonical(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if a, ok := aliases[l]; ok {
		return a
	}
	return l
}

// Lookup returns the runtime for lang, accepting aliases.
func Lookup(lang string) (Runtime, bool) {
	rt, ok := runtimes[Canonical(lang)]
	return rt, ok
}

// Languages returns the names of all runnable languages.
func Languages() []string {
	out := make([]string, 0, len(runtimes))
	for name := range runtimes {
		out = append(out, name)
	}
	return out
}
