package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gridfall/gridfall-server-go/internal/battle"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // observers only; no state mutation over the socket
	},
}

// watcher is one WebSocket observer of a battle.
type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans battle outcomes out to the watchers of each battle.
type hub struct {
	mu       sync.Mutex
	watchers map[string]map[*watcher]bool
	log      *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		watchers: make(map[string]map[*watcher]bool),
		log:      logger,
	}
}

func (h *hub) add(battleID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[battleID] == nil {
		h.watchers[battleID] = make(map[*watcher]bool)
	}
	h.watchers[battleID][w] = true
}

func (h *hub) remove(battleID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.watchers[battleID]; set != nil {
		delete(set, w)
		if len(set) == 0 {
			delete(h.watchers, battleID)
		}
	}
}

// broadcast sends a turn outcome to every watcher of the battle. Slow
// watchers are dropped rather than blocking the turn cycle.
func (h *hub) broadcast(battleID string, out battle.Outcome) {
	payload, err := json.Marshal(out)
	if err != nil {
		h.log.Error("failed to marshal outcome", zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers[battleID] {
		select {
		case w.send <- payload:
		default:
			close(w.send)
			delete(h.watchers[battleID], w)
		}
	}
}

// close disconnects every watcher of a finished battle.
func (h *hub) close(battleID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers[battleID] {
		close(w.send)
	}
	delete(h.watchers, battleID)
}

// handleWatch upgrades the connection and streams battle outcomes until the
// battle ends or the client goes away.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.mgr.Get(id); !ok {
		httpError(w, http.StatusNotFound, "battle not found")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	wt := &watcher{conn: conn, send: make(chan []byte, 16)}
	s.hub.add(id, wt)

	go wt.writePump()
	wt.readPump(func() { s.hub.remove(id, wt) })
}

func (w *watcher) writePump() {
	defer w.conn.Close()
	for msg := range w.send {
		_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := w.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle ended"))
}

// readPump drains the connection so pings and close frames are processed;
// observer messages are discarded.
func (w *watcher) readPump(onClose func()) {
	defer func() {
		onClose()
		w.conn.Close()
	}()
	w.conn.SetReadLimit(512)
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			return
		}
	}
}
