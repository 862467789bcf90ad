package filestore

import (
	"encoding/json"

	"github.com/michaelbrown/codepad/internal/language"
)

// Kind distinguishes entries in the store. Only files exist today.
type Kind string

const KindFile Kind = "file"

// Record is one named unit of source text.
type Record struct {
	Content  string            `json:"content" yaml:"content"`
	Language language.Language `json:"language" yaml:"language"`
	Kind     Kind              `json:"kind" yaml:"kind"`
}

// UnmarshalJSON also accepts the older "type" key for the kind.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Content  string            `json:"content"`
		Language language.Language `json:"language"`
		Kind     Kind              `json:"kind"`
		Type     Kind              `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Content = raw.Content
	r.Language = raw.Language
	r.Kind = raw.Kind
	if r.Kind == "" {
		r.Kind = raw.Type
	}
	return nil
}

// newRecord builds the record a fresh file called name starts with.
func newRecord(name string) Record {
	lang, tmpl := language.Resolve(name)
	return Record{Content: tmpl, Language: lang, Kind: KindFile}
}

type namedRecord struct {
	name   string
	record Record
}

// DefaultCurrent is selected after a restore when it is present.
const DefaultCurrent = "main.js"

var defaultFiles = []namedRecord{
	{"main.js", Record{
		Content:  "// Welcome to the VS Code-like Web Editor!\nconsole.log(\"Hello, World!\");\n\n// Try running some JavaScript code\nconst sum = (a, b) => a + b;\nconsole.log(\"2 + 3 =\", sum(2, 3));",
		Language: language.JavaScript,
		Kind:     KindFile,
	}},
	{"example.py", Record{
		Content:  "# Python Example\nprint(\"Hello from Python!\")\n\n# Simple calculation\ndef add_numbers(a, b):\n    return a + b\n\nresult = add_numbers(5, 3)\nprint(f\"5 + 3 = {result}\")",
		Language: language.Python,
		Kind:     KindFile,
	}},
	{"styles.css", Record{
		Content:  "/* CSS Example */\nbody {\n  font-family: Arial, sans-serif;\n  background-color: #f0f0f0;\n  margin: 0;\n  padding: 20px;\n}\n\n.container {\n  max-width: 800px;\n  margin: 0 auto;\n  background: white;\n  padding: 20px;\n  border-radius: 8px;\n  box-shadow: 0 2px 10px rgba(0,0,0,0.1);\n}",
		Language: language.CSS,
		Kind:     KindFile,
	}},
	{"index.html", Record{
		Content:  "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n    <meta charset=\"UTF-8\">\n    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n    <title>Web Editor Preview</title>\n    <style>\n        body { font-family: Arial, sans-serif; margin: 20px; }\n        .container { max-width: 600px; margin: 0 auto; }\n        h1 { color: #333; }\n    </style>\n</head>\n<body>\n    <div class=\"container\">\n        <h1>Hello from HTML!</h1>\n        <p>This is a sample HTML file that you can edit and preview.</p>\n        <button onclick=\"alert('Hello JavaScript!')\">Click Me</button>\n    </div>\n</body>\n</html>",
		Language: language.HTML,
		Kind:     KindFile,
	}},
}
