// Package language maps file names to language tags, default templates and
// execution strategies.
package language

import (
	"strings"
)

// Language is a closed set of language tags understood by the editor.
type Language string

const (
	JavaScript Language = "javascript"
	Python     Language = "python"
	Go         Language = "go"
	Ruby       Language = "ruby"
	HTML       Language = "html"
	CSS        Language = "css"
	JSON       Language = "json"
	Markdown   Language = "markdown"
)

// Fallback is used for names with no recognized extension.
const Fallback = JavaScript

// Strategy says where code in a language is executed.
type Strategy int

const (
	// Remote languages are sent to the execution service.
	Remote Strategy = iota
	// Local languages run in the embedded interpreter.
	Local
)

func (s Strategy) String() string {
	if s == Local {
		return "local"
	}
	return "remote"
}

// Spec is one row of the language table.
type Spec struct {
	Language   Language
	Extensions []string
	Template   string
	Strategy   Strategy
}

var table = []Spec{
	{
		Language:   JavaScript,
		Extensions: []string{"js", "mjs", "cjs"},
		Template:   "// New JavaScript file\nconsole.log(\"Hello, World!\");",
		Strategy:   Local,
	},
	{
		Language:   Python,
		Extensions: []string{"py"},
		Template:   "# New Python file\nprint(\"Hello, Python!\")",
		Strategy:   Remote,
	},
	{
		Language:   Go,
		Extensions: []string{"go"},
		Template:   "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"Hello, Go!\")\n}",
		Strategy:   Remote,
	},
	{
		Language:   Ruby,
		Extensions: []string{"rb"},
		Template:   "# New Ruby file\nputs \"Hello, Ruby!\"",
		Strategy:   Remote,
	},
	{
		Language:   HTML,
		Extensions: []string{"html", "htm"},
		Template:   "<!DOCTYPE html>\n<html>\n<head>\n    <title>New Page</title>\n</head>\n<body>\n    <h1>Hello, HTML!</h1>\n</body>\n</html>",
		Strategy:   Remote,
	},
	{
		Language:   CSS,
		Extensions: []string{"css"},
		Template:   "/* New stylesheet */\nbody {\n    margin: 0;\n    padding: 0;\n}",
		Strategy:   Remote,
	},
	{
		Language:   JSON,
		Extensions: []string{"json"},
		Template:   "{\n    \"name\": \"example\",\n    \"version\": \"1.0.0\"\n}",
		Strategy:   Remote,
	},
	{
		Language:   Markdown,
		Extensions: []string{"md", "markdown"},
		Template:   "# New document\n\nHello, Markdown!",
		Strategy:   Remote,
	},
}

var (
	byLanguage  = make(map[Language]Spec, len(table))
	byExtension = make(map[string]Spec)
)

func init() {
	for _, s := range table {
		byLanguage[s.Language] = s
		for _, ext := range s.Extensions {
			byExtension[ext] = s
		}
	}
}

// All returns the language table in declaration order.
func All() []Spec {
	out := make([]Spec, len(table))
	copy(out, table)
	return out
}

// Lookup returns the table row for a language.
func Lookup(l Language) (Spec, bool) {
	s, ok := byLanguage[l]
	return s, ok
}

// Parse validates a language tag. Matching is case-insensitive.
func Parse(tag string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(tag)))
	_, ok := byLanguage[l]
	return l, ok
}

// Valid reports whether l is a member of the closed set.
func (l Language) Valid() bool {
	_, ok := byLanguage[l]
	return ok
}

// Strategy returns where l is executed. Unknown tags are remote.
func (l Language) Strategy() Strategy {
	return byLanguage[l].Strategy
}

func (l Language) String() string { return string(l) }

// Extension returns the lower-cased text after the last dot of name, or ""
// when there is none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Resolve derives the language and default content for a file name.
func Resolve(name string) (Language, string) {
	if s, ok := byExtension[Extension(name)]; ok {
		return s.Language, s.Template
	}
	s := byLanguage[Fallback]
	return s.Language, s.Template
}
