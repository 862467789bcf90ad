package workspace

import (
	"context"
	"log/slog"
	"sync"

	"github.com/michaelbrown/codepad/internal/storage"
)

// persister writes the latest serialized file set to a storage backend on a
// background goroutine. Blobs enqueued while a write is in flight collapse
// into one, so only the newest state is written.
type persister struct {
	backend storage.Store
	key     string
	logger  *slog.Logger

	mu      sync.Mutex
	pending string
	dirty   bool
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

func newPersister(backend storage.Store, key string, logger *slog.Logger) *persister {
	p := &persister{
		backend: backend,
		key:     key,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go p.loop()
	return p
}

// enqueue never blocks. Calls after close are dropped.
func (p *persister) enqueue(blob string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = blob
	p.dirty = true
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) loop() {
	defer close(p.done)
	for range p.wake {
		p.flush()
	}
	p.flush()
}

func (p *persister) flush() {
	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return
	}
	blob := p.pending
	p.dirty = false
	p.mu.Unlock()

	if err := p.backend.PutBlob(context.Background(), p.key, blob); err != nil {
		p.logger.Error("persisting files failed", "key", p.key, "err", err)
		return
	}
	p.logger.Debug("files persisted", "key", p.key, "bytes", len(blob))
}

// close stops the writer after the last pending blob is written.
func (p *persister) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return
	}
	p.closed = true
	close(p.wake)
	p.mu.Unlock()
	<-p.done
}
