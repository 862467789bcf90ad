package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/filestore"
	"github.com/michaelbrown/codepad/internal/language"
	"github.com/michaelbrown/codepad/internal/storage"
	"github.com/michaelbrown/codepad/internal/storage/sqlite"
)

type echoLocal struct{}

func (echoLocal) Execute(_ context.Context, source string) execution.Result {
	return execution.Succeeded("local:" + source)
}

type echoRemote struct{}

func (echoRemote) Execute(_ context.Context, source string, lang language.Language) execution.Result {
	return execution.Failed("remote:" + string(lang) + ":" + source)
}

func testRouter() *execution.Router {
	return execution.NewRouter(echoLocal{}, echoRemote{})
}

// memStore is a storage.Store that keeps blobs in a map.
type memStore struct {
	mu    sync.Mutex
	blobs map[string]string
	puts  int
	err   error
}

func newMemStore() *memStore { return &memStore{blobs: map[string]string{}} }

func (m *memStore) GetBlob(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.blobs[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (m *memStore) PutBlob(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.err != nil {
		return m.err
	}
	m.blobs[key] = value
	return nil
}

func (m *memStore) blob(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blobs[key]
}

func (m *memStore) RecordExecution(context.Context, *storage.Execution) error { return nil }
func (m *memStore) ListExecutions(context.Context, int) ([]storage.Execution, error) {
	return nil, nil
}
func (m *memStore) Close() error { return nil }

func TestRunRoutesByLanguage(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()

	require.True(t, w.UpdateContent("main.js", "1+1"))
	res := w.Run(context.Background())
	assert.Equal(t, execution.Succeeded("local:1+1"), res)

	require.True(t, w.Select("example.py"))
	_, rec := w.CurrentFile()
	res = w.Run(context.Background())
	assert.Equal(t, execution.Failed("remote:python:"+rec.Content), res)

	out, running := w.Output()
	assert.Equal(t, res, out)
	assert.False(t, running)
}

func TestOutputStartsEmpty(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()
	out, running := w.Output()
	assert.Equal(t, execution.Result{}, out)
	assert.False(t, running)
}

func TestMutationsPassThrough(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()

	assert.True(t, w.Create("app.rb"))
	name, rec := w.CurrentFile()
	assert.Equal(t, "app.rb", name)
	assert.Equal(t, language.Ruby, rec.Language)

	assert.False(t, w.Create("app.rb"))
	assert.False(t, w.Select("missing.go"))
	assert.True(t, w.Delete("app.rb"))
	assert.Equal(t, []string{"main.js", "example.py", "styles.css", "index.html"}, w.ListFiles())

	_, ok := w.File("app.rb")
	assert.False(t, ok)
}

func TestEvents(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()

	events, cancel := w.Subscribe(8)
	defer cancel()

	w.Create("a.js")
	w.Create("a.js") // ignored, no event
	w.Run(context.Background())

	ev := <-events
	assert.Equal(t, FilesChanged, ev.Type)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, "a.js", ev.Snapshot.Current)

	ev = <-events
	assert.Equal(t, RunStarted, ev.Type)
	assert.Equal(t, "a.js", ev.File)

	ev = <-events
	assert.Equal(t, RunFinished, ev.Type)
	require.NotNil(t, ev.Result)
	assert.True(t, ev.Result.Succeeded)

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	w := New(testRouter(), nil)
	events, cancel := w.Subscribe(1)
	cancel()
	cancel()
	_, ok := <-events
	assert.False(t, ok)

	events, _ = w.Subscribe(1)
	w.Close()
	_, ok = <-events
	assert.False(t, ok)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()
	_, cancel := w.Subscribe(0)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Create("x.js")
		w.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestOpenWithoutStoredState(t *testing.T) {
	backend := newMemStore()
	w, err := Open(context.Background(), backend, "", testRouter(), nil)
	require.NoError(t, err)
	w.Close()

	restored := filestore.Restore(backend.blob(storage.DefaultKey))
	assert.Equal(t, []string{"main.js", "example.py", "styles.css", "index.html"}, restored.Names())
}

func TestOpenPersistsAndRestores(t *testing.T) {
	backend := newMemStore()
	ctx := context.Background()

	w, err := Open(ctx, backend, "k", testRouter(), nil)
	require.NoError(t, err)
	w.Create("notes.md")
	w.UpdateContent("notes.md", "# hi")
	w.Delete("styles.css")
	w.Close()

	w2, err := Open(ctx, backend, "k", testRouter(), nil)
	require.NoError(t, err)
	defer w2.Close()

	assert.Equal(t, []string{"main.js", "example.py", "index.html", "notes.md"}, w2.ListFiles())
	rec, ok := w2.File("notes.md")
	require.True(t, ok)
	assert.Equal(t, "# hi", rec.Content)
	assert.Equal(t, language.Markdown, rec.Language)
	name, _ := w2.CurrentFile()
	assert.Equal(t, "main.js", name)
}

func TestOpenIgnoresCorruptBlob(t *testing.T) {
	backend := newMemStore()
	backend.blobs["k"] = "{not json"
	w, err := Open(context.Background(), backend, "k", testRouter(), nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Len(t, w.ListFiles(), 4)
}

func TestOpenBackendError(t *testing.T) {
	backend := newMemStore()
	backend.err = errors.New("disk on fire")
	_, err := Open(context.Background(), backend, "k", testRouter(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestPersistFailureIsNotFatal(t *testing.T) {
	backend := newMemStore()
	w, err := Open(context.Background(), backend, "k", testRouter(), nil)
	require.NoError(t, err)

	backend.mu.Lock()
	backend.err = errors.New("read-only")
	backend.mu.Unlock()

	assert.True(t, w.Create("later.go"))
	w.Close()
}

func TestOpenWithSQLite(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	w, err := Open(ctx, db, storage.DefaultKey, testRouter(), nil)
	require.NoError(t, err)
	w.UpdateContent("main.js", "console.log('persisted')")
	w.Close()

	blob, err := db.GetBlob(ctx, storage.DefaultKey)
	require.NoError(t, err)
	assert.True(t, strings.Contains(blob, "persisted"))
}

func TestImport(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()

	n := w.Import(storage.Export{
		Current: "lib.go",
		Files: []storage.ExportedFile{
			{Name: "main.js", Language: "javascript", Content: "replaced"},
			{Name: "lib.go", Language: "go", Content: "package lib"},
			{Name: " ", Content: "skipped"},
		},
	})
	assert.Equal(t, 2, n)

	rec, _ := w.File("main.js")
	assert.Equal(t, "replaced", rec.Content)
	name, rec := w.CurrentFile()
	assert.Equal(t, "lib.go", name)
	assert.Equal(t, "package lib", rec.Content)
	assert.Equal(t, language.Go, rec.Language)
}

func TestImportKeepsNamesVerbatim(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()

	n := w.Import(storage.Export{
		Files: []storage.ExportedFile{{Name: " pad.js ", Content: "console.log('mine')"}},
	})
	assert.Equal(t, 1, n)

	rec, ok := w.File(" pad.js ")
	require.True(t, ok)
	assert.Equal(t, "console.log('mine')", rec.Content)
	assert.Equal(t, language.JavaScript, rec.Language)
}

func TestImportSelectionOnlyPublishes(t *testing.T) {
	w := New(testRouter(), nil)
	defer w.Close()

	events, cancel := w.Subscribe(8)
	defer cancel()

	n := w.Import(storage.Export{Current: "styles.css"})
	assert.Equal(t, 0, n)

	name, _ := w.CurrentFile()
	assert.Equal(t, "styles.css", name)

	select {
	case ev := <-events:
		assert.Equal(t, FilesChanged, ev.Type)
		require.NotNil(t, ev.Snapshot)
		assert.Equal(t, "styles.css", ev.Snapshot.Current)
	default:
		t.Fatal("expected a files changed event")
	}

	// Nothing to apply, nothing to announce.
	w.Import(storage.Export{Current: "styles.css"})
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}
