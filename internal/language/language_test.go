package language

import (
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		want Language
	}{
		{"main.js", JavaScript},
		{"x.py", Python},
		{"X.PY", Python},
		{"archive.tar.py", Python},
		{"main.go", Go},
		{"app.rb", Ruby},
		{"index.html", HTML},
		{"page.HTM", HTML},
		{"styles.css", CSS},
		{"package.json", JSON},
		{"README.md", Markdown},
		{"x.unknownext", Fallback},
		{"Makefile", Fallback},
		{"trailing.", Fallback},
		{"", Fallback},
	}

	for _, tt := range tests {
		got, _ := Resolve(tt.name)
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolveTemplates(t *testing.T) {
	lang, tmpl := Resolve("x.py")
	if lang != Python {
		t.Fatalf("language = %q, want python", lang)
	}
	if tmpl != "# New Python file\nprint(\"Hello, Python!\")" {
		t.Errorf("python template = %q", tmpl)
	}

	lang, tmpl = Resolve("x.unknownext")
	if lang != JavaScript {
		t.Fatalf("fallback language = %q, want javascript", lang)
	}
	if tmpl != "// New JavaScript file\nconsole.log(\"Hello, World!\");" {
		t.Errorf("fallback template = %q", tmpl)
	}
}

func TestTableIsConsistent(t *testing.T) {
	seen := make(map[string]Language)
	locals := 0
	for _, s := range All() {
		if !s.Language.Valid() {
			t.Errorf("%q not valid", s.Language)
		}
		if s.Template == "" {
			t.Errorf("%q has no template", s.Language)
		}
		if len(s.Extensions) == 0 {
			t.Errorf("%q has no extensions", s.Language)
		}
		for _, ext := range s.Extensions {
			if prev, ok := seen[ext]; ok {
				t.Errorf("extension %q claimed by %q and %q", ext, prev, s.Language)
			}
			seen[ext] = s.Language
			if got, _ := Resolve("f." + ext); got != s.Language {
				t.Errorf("Resolve(f.%s) = %q, want %q", ext, got, s.Language)
			}
		}
		if s.Strategy == Local {
			locals++
		}
	}
	if locals != 1 {
		t.Errorf("got %d local languages, want exactly 1", locals)
	}
	if JavaScript.Strategy() != Local {
		t.Error("javascript should run locally")
	}
}

func TestParse(t *testing.T) {
	if l, ok := Parse(" Python "); !ok || l != Python {
		t.Errorf("Parse(Python) = %q, %v", l, ok)
	}
	if _, ok := Parse("cobol"); ok {
		t.Error("cobol should not parse")
	}
	if Language("cobol").Strategy() != Remote {
		t.Error("unknown languages should be remote")
	}
}
