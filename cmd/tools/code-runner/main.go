package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/codepad/internal/config"
	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/filestore"
	"github.com/michaelbrown/codepad/internal/language"
	"github.com/michaelbrown/codepad/internal/logging"
	"github.com/michaelbrown/codepad/internal/remote"
	"github.com/michaelbrown/codepad/internal/sandbox"
	"github.com/michaelbrown/codepad/internal/scripting"
	"github.com/michaelbrown/codepad/internal/storage"
	"github.com/michaelbrown/codepad/internal/storage/sqlite"
)

const maxOutput = 4000

// runner answers tool calls. The workspace is read from storage on every
// call and never written, so a running "codepad serve" keeps ownership.
type runner struct {
	router *execution.Router
	store  storage.Store
	key    string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	lg, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer lg.Close()

	store, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		lg.Logger.Error("opening storage", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	r := &runner{
		router: execution.NewRouter(
			scripting.New(scripting.WithLogger(lg.Logger)),
			remote.NewClient(cfg.Remote.BaseURL, remote.WithTimeout(cfg.Remote.Timeout), remote.WithLogger(lg.Logger)),
		),
		store: store,
		key:   cfg.Storage.Key,
	}

	s := server.NewMCPServer("codepad-code-runner", "0.1.0")
	r.register(s)

	if err := server.ServeStdio(s); err != nil {
		lg.Logger.Error("server error", "err", err)
	}
}

func (r *runner) register(s *server.MCPServer) {
	// Build language list for description
	var langs []string
	for _, spec := range language.All() {
		langs = append(langs, fmt.Sprintf("%s (%s)", spec.Language, spec.Strategy))
	}

	s.AddTool(mcp.Tool{
		Name:        "code_run",
		Description: fmt.Sprintf("Execute code. JavaScript runs locally; other languages go to the execution service. Languages: %s.", strings.Join(langs, ", ")),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "Language tag or alias (javascript, js, python, py, go, ruby, ...)",
				},
				"code": map[string]any{
					"type":        "string",
					"description": "Source code to execute",
				},
			},
			Required: []string{"language", "code"},
		},
	}, r.handleCodeRun)

	s.AddTool(mcp.Tool{
		Name:        "file_run",
		Description: "Run a file from the saved codepad workspace. Defaults to main.js.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"name": map[string]any{
					"type":        "string",
					"description": "Workspace file name (optional)",
				},
			},
		},
	}, r.handleFileRun)

	s.AddTool(mcp.Tool{
		Name:        "file_list",
		Description: "List the files in the saved codepad workspace with their languages.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, r.handleFileList)
}

func (r *runner) handleCodeRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return errResult("error: invalid arguments"), nil
	}

	tag, _ := args["language"].(string)
	code, _ := args["code"].(string)

	if tag == "" || code == "" {
		return errResult("error: 'language' and 'code' are required"), nil
	}

	lang, ok := language.Parse(sandbox.Canonical(tag))
	if !ok {
		return errResult(fmt.Sprintf("error: unsupported language %q", tag)), nil
	}

	return toolResult(r.router.RunSource(ctx, code, lang)), nil
}

func (r *runner) handleFileRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]any)
	name, _ := args["name"].(string)

	files, err := r.files(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("error: %v", err)), nil
	}
	if name == "" {
		name = files.Current()
	}
	rec, ok := files.Get(name)
	if !ok {
		return errResult(fmt.Sprintf("error: no such file %q", name)), nil
	}

	return toolResult(r.router.Run(ctx, rec)), nil
}

func (r *runner) handleFileList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := r.files(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("error: %v", err)), nil
	}

	var b strings.Builder
	for _, name := range files.Names() {
		rec, _ := files.Get(name)
		fmt.Fprintf(&b, "%s\t%s\t%s\n", name, rec.Language, rec.Language.Strategy())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: b.String()}},
	}, nil
}

func (r *runner) files(ctx context.Context) (*filestore.Store, error) {
	blob, err := r.store.GetBlob(ctx, r.key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return filestore.Restore(blob), nil
}

func toolResult(res execution.Result) *mcp.CallToolResult {
	text := res.Text
	if len(text) > maxOutput {
		text = text[:maxOutput] + "\n... (output truncated)"
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: !res.Succeeded,
	}
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
