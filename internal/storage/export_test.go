package storage

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/michaelbrown/codepad/internal/filestore"
)

func testSnapshot() filestore.Snapshot {
	s := filestore.New()
	s.Create("notes.md")
	s.UpdateContent("notes.md", "```go\nfmt.Println()\n```")
	s.Select("example.py")
	return s.Snapshot()
}

func TestExportMarkdown(t *testing.T) {
	out := ExportMarkdown(testSnapshot())

	if !strings.Contains(out, "- **Files:** 5\n") {
		t.Errorf("missing file count:\n%s", out)
	}
	if !strings.Contains(out, "- **Current:** example.py\n") {
		t.Errorf("missing current:\n%s", out)
	}
	if strings.Index(out, "## main.js") > strings.Index(out, "## notes.md") {
		t.Error("files should keep store order")
	}
	if !strings.Contains(out, "````markdown\n```go") {
		t.Errorf("fence should grow past embedded fences:\n%s", out)
	}
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON(testSnapshot())
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if exp.Current != "example.py" || len(exp.Files) != 5 {
		t.Errorf("export = %+v", exp)
	}
	if exp.Files[4].Name != "notes.md" || exp.Files[4].Language != "markdown" {
		t.Errorf("last file = %+v", exp.Files[4])
	}
}

func TestExportYAMLRoundTrip(t *testing.T) {
	snap := testSnapshot()
	data, err := ExportYAML(snap)
	if err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	got, err := ParseExport(data)
	if err != nil {
		t.Fatalf("ParseExport: %v", err)
	}
	if !reflect.DeepEqual(got, NewExport(snap)) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, NewExport(snap))
	}
}

func TestParseExportAcceptsJSON(t *testing.T) {
	data, _ := ExportJSON(testSnapshot())
	got, err := ParseExport(data)
	if err != nil {
		t.Fatalf("ParseExport: %v", err)
	}
	if len(got.Files) != 5 {
		t.Errorf("got %d files", len(got.Files))
	}
}

func TestParseExportRejectsGarbage(t *testing.T) {
	if _, err := ParseExport([]byte("files: [unclosed")); err == nil {
		t.Error("expected error")
	}
}
