// Package workspace is the surface an editor front end drives: it owns the
// file set, runs the current file, remembers the last output and keeps the
// file set persisted.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/filestore"
	"github.com/michaelbrown/codepad/internal/logging"
	"github.com/michaelbrown/codepad/internal/storage"
)

// Workspace is safe for concurrent use.
type Workspace struct {
	files   *filestore.Store
	router  *execution.Router
	persist *persister
	logger  *slog.Logger

	mu      sync.Mutex
	output  execution.Result
	running bool

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// New creates an unpersisted workspace seeded with the built-in files.
func New(router *execution.Router, logger *slog.Logger) *Workspace {
	return newWorkspace(filestore.New(), router, logger)
}

// Open restores the workspace stored under key and keeps it persisted there.
// A missing or unreadable blob yields the built-in files.
func Open(ctx context.Context, backend storage.Store, key string, router *execution.Router, logger *slog.Logger) (*Workspace, error) {
	if key == "" {
		key = storage.DefaultKey
	}
	blob, err := backend.GetBlob(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading workspace: %w", err)
	}

	w := newWorkspace(filestore.Restore(blob), router, logger)
	w.persist = newPersister(backend, key, w.logger)
	w.files.SetOnChange(w.persist.enqueue)
	w.persist.enqueue(w.files.Serialize())
	return w, nil
}

func newWorkspace(files *filestore.Store, router *execution.Router, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Workspace{
		files:  files,
		router: router,
		logger: logger,
		subs:   make(map[int]chan Event),
	}
}

// Close writes any pending state and ends all subscriptions.
func (w *Workspace) Close() {
	if w.persist != nil {
		w.files.SetOnChange(nil)
		w.persist.close()
	}
	w.closeSubscribers()
}

// ListFiles returns file names in creation order.
func (w *Workspace) ListFiles() []string {
	return w.files.Names()
}

// CurrentFile returns the selected file.
func (w *Workspace) CurrentFile() (string, filestore.Record) {
	return w.files.CurrentRecord()
}

// File returns the named file.
func (w *Workspace) File(name string) (filestore.Record, bool) {
	return w.files.Get(name)
}

// Snapshot returns a detached copy of the file set.
func (w *Workspace) Snapshot() filestore.Snapshot {
	return w.files.Snapshot()
}

// Select makes name the current file. Unknown names are ignored.
func (w *Workspace) Select(name string) bool {
	return w.applied(w.files.Select(name))
}

// Create adds a file under name, as given, and selects it. Blank or existing
// names are ignored.
func (w *Workspace) Create(name string) bool {
	return w.applied(w.files.Create(name))
}

// Delete removes a file unless it is the last one.
func (w *Workspace) Delete(name string) bool {
	return w.applied(w.files.Delete(name))
}

// UpdateContent replaces a file's content.
func (w *Workspace) UpdateContent(name, content string) bool {
	return w.applied(w.files.UpdateContent(name, content))
}

// Import merges the files of an export into the workspace, overwriting
// content of files that already exist, then selects the exported current
// file when it is present.
func (w *Workspace) Import(exp storage.Export) int {
	before := w.files.Current()
	n := 0
	for _, f := range exp.Files {
		if _, ok := w.files.Get(f.Name); !ok && !w.files.Create(f.Name) {
			continue
		}
		if !w.files.UpdateContent(f.Name, f.Content) {
			continue
		}
		n++
	}
	w.files.Select(exp.Current)
	w.applied(n > 0 || w.files.Current() != before)
	return n
}

func (w *Workspace) applied(ok bool) bool {
	if ok {
		snap := w.files.Snapshot()
		w.publish(Event{Type: FilesChanged, Snapshot: &snap})
	}
	return ok
}

// Run executes the current file and records the result as the latest
// output. Concurrent runs are not serialized; whichever finishes last wins.
func (w *Workspace) Run(ctx context.Context) execution.Result {
	name, rec := w.files.CurrentRecord()

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()
	w.publish(Event{Type: RunStarted, File: name})

	res := w.router.Run(ctx, rec)

	w.mu.Lock()
	w.running = false
	w.output = res
	w.mu.Unlock()
	w.publish(Event{Type: RunFinished, File: name, Result: &res})

	w.logger.Debug("file executed", "file", name, "language", rec.Language, "succeeded", res.Succeeded)
	return res
}

// Output returns the latest result and whether a run is in progress.
func (w *Workspace) Output() (execution.Result, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.output, w.running
}
