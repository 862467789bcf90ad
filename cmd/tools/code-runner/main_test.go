package main

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/filestore"
	"github.com/michaelbrown/codepad/internal/language"
	"github.com/michaelbrown/codepad/internal/scripting"
	"github.com/michaelbrown/codepad/internal/storage"
	"github.com/michaelbrown/codepad/internal/storage/sqlite"
)

type stubRemote struct{}

func (stubRemote) Execute(_ context.Context, source string, lang language.Language) execution.Result {
	return execution.Succeeded(string(lang) + " ran")
}

func newTestRunner(t *testing.T) *runner {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &runner{
		router: execution.NewRouter(scripting.New(), stubRemote{}),
		store:  db,
		key:    storage.DefaultKey,
	}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestCodeRun(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	res, err := r.handleCodeRun(ctx, call(map[string]any{"language": "js", "code": "console.log(1 + 1)"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "2", text(t, res))

	res, _ = r.handleCodeRun(ctx, call(map[string]any{"language": "py", "code": "print(1)"}))
	assert.Equal(t, "python ran", text(t, res))

	res, _ = r.handleCodeRun(ctx, call(map[string]any{"language": "javascript", "code": "throw new Error('x')"}))
	assert.True(t, res.IsError)
	assert.Equal(t, "JavaScript Error: x", text(t, res))

	res, _ = r.handleCodeRun(ctx, call(map[string]any{"language": "cobol", "code": "x"}))
	assert.True(t, res.IsError)

	res, _ = r.handleCodeRun(ctx, call(map[string]any{"code": "x"}))
	assert.True(t, res.IsError)
}

func TestFileRun(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	files := filestore.New()
	files.UpdateContent("main.js", "return 'stored'")
	require.NoError(t, r.store.PutBlob(ctx, storage.DefaultKey, files.Serialize()))

	res, err := r.handleFileRun(ctx, call(nil))
	require.NoError(t, err)
	assert.Equal(t, "Return value: stored", text(t, res))

	res, _ = r.handleFileRun(ctx, call(map[string]any{"name": "example.py"}))
	assert.Equal(t, "python ran", text(t, res))

	res, _ = r.handleFileRun(ctx, call(map[string]any{"name": "missing.rb"}))
	assert.True(t, res.IsError)
}

func TestFileList(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.handleFileList(context.Background(), call(nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "main.js\tjavascript\tlocal\n")
}

func TestToolResultTruncates(t *testing.T) {
	long := make([]byte, maxOutput+10)
	for i := range long {
		long[i] = 'a'
	}
	res := toolResult(execution.Succeeded(string(long)))
	assert.Contains(t, text(t, res), "(output truncated)")
}
