package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/filestore"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // single-user editor, no auth
	},
}

// wsIncoming is a message from the client.
type wsIncoming struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type     string              `json:"type"`
	Content  string              `json:"content,omitempty"`
	File     string              `json:"file,omitempty"`
	Snapshot *filestore.Snapshot `json:"snapshot,omitempty"`
	Result   *execution.Result   `json:"result,omitempty"`
	Running  bool                `json:"running,omitempty"`
}

const wsEventBuffer = 32

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	// Mutex for thread-safe writes to the WebSocket connection
	var wsMu sync.Mutex
	send := func(msg wsOutgoing) {
		wsMu.Lock()
		defer wsMu.Unlock()
		s.wsWriteJSON(conn, msg)
	}

	// Cancelled on client disconnect
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe := s.ws.Subscribe(wsEventBuffer)
	defer unsubscribe()

	snap := s.ws.Snapshot()
	res, running := s.ws.Output()
	send(wsOutgoing{Type: "snapshot", Snapshot: &snap, Result: &res, Running: running})

	go func() {
		for ev := range events {
			send(wsOutgoing{Type: string(ev.Type), File: ev.File, Snapshot: ev.Snapshot, Result: ev.Result})
		}
	}()

	// Read loop
	for {
		var msg wsIncoming
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read error", "err", err)
			}
			return
		}
		s.processWebSocketMessage(ctx, msg, send)
	}
}

func (s *Server) processWebSocketMessage(ctx context.Context, msg wsIncoming, send func(wsOutgoing)) {
	switch msg.Type {
	case "update":
		name := msg.Name
		if name == "" {
			name, _ = s.ws.CurrentFile()
		}
		if !s.ws.UpdateContent(name, msg.Content) {
			send(wsOutgoing{Type: "error", Content: "file not found"})
		}
	case "select":
		if !s.ws.Select(msg.Name) {
			send(wsOutgoing{Type: "error", Content: "file not found"})
		}
	case "run":
		// Results arrive as run_finished events.
		go s.ws.Run(ctx)
	default:
		send(wsOutgoing{Type: "error", Content: "invalid message"})
	}
}

func (s *Server) wsWriteJSON(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("websocket marshal error", "err", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Debug("websocket write error", "err", err)
	}
}
