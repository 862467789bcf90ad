package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/michaelbrown/codepad/internal/filestore"
)

// ExportedFile is one file in an export document.
type ExportedFile struct {
	Name     string `json:"name" yaml:"name"`
	Language string `json:"language" yaml:"language"`
	Content  string `json:"content" yaml:"content"`
}

// Export is the document written by ExportJSON and ExportYAML.
type Export struct {
	Current string         `json:"current" yaml:"current"`
	Files   []ExportedFile `json:"files" yaml:"files"`
}

// NewExport flattens a snapshot, keeping file order.
func NewExport(snap filestore.Snapshot) Export {
	exp := Export{Current: snap.Current}
	for _, name := range snap.Names {
		rec := snap.Files[name]
		exp.Files = append(exp.Files, ExportedFile{
			Name:     name,
			Language: string(rec.Language),
			Content:  rec.Content,
		})
	}
	return exp
}

// ExportMarkdown renders every file as a fenced code block.
func ExportMarkdown(snap filestore.Snapshot) string {
	var b strings.Builder

	b.WriteString("# Workspace\n\n")
	b.WriteString(fmt.Sprintf("- **Files:** %d\n", len(snap.Names)))
	b.WriteString(fmt.Sprintf("- **Current:** %s\n", snap.Current))
	b.WriteString("\n---\n\n")

	for _, name := range snap.Names {
		rec := snap.Files[name]
		fence := "```"
		for strings.Contains(rec.Content, fence) {
			fence += "`"
		}
		b.WriteString(fmt.Sprintf("## %s\n\n%s%s\n%s\n%s\n\n", name, fence, rec.Language, rec.Content, fence))
	}

	return b.String()
}

// ExportJSON renders a snapshot as formatted JSON.
func ExportJSON(snap filestore.Snapshot) ([]byte, error) {
	return json.MarshalIndent(NewExport(snap), "", "  ")
}

// ExportYAML renders a snapshot as YAML.
func ExportYAML(snap filestore.Snapshot) ([]byte, error) {
	return yaml.Marshal(NewExport(snap))
}

// ParseExport reads a document produced by ExportJSON or ExportYAML. YAML is
// a superset of JSON, so one decoder handles both.
func ParseExport(data []byte) (Export, error) {
	var exp Export
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return Export{}, fmt.Errorf("parsing export: %w", err)
	}
	return exp, nil
}
