package workspace

import (
	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/filestore"
)

// EventType names a workspace event.
type EventType string

const (
	FilesChanged EventType = "files_changed"
	RunStarted   EventType = "run_started"
	RunFinished  EventType = "run_finished"
)

// Event is delivered to subscribers after a state change.
type Event struct {
	Type     EventType           `json:"type"`
	File     string              `json:"file,omitempty"`
	Snapshot *filestore.Snapshot `json:"snapshot,omitempty"`
	Result   *execution.Result   `json:"result,omitempty"`
}

// Subscribe returns a channel of events and a function that ends the
// subscription. Slow subscribers miss events once their buffer is full.
func (w *Workspace) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	w.subsMu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	w.subsMu.Unlock()

	return ch, func() {
		w.subsMu.Lock()
		defer w.subsMu.Unlock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
		}
	}
}

func (w *Workspace) publish(ev Event) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for id, ch := range w.subs {
		select {
		case ch <- ev:
		default:
			w.logger.Debug("dropping event for slow subscriber", "subscriber", id, "type", ev.Type)
		}
	}
}

func (w *Workspace) closeSubscribers() {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
}
