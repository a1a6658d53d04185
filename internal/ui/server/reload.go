package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Its-donkey/eventpage/logging"
)

// ReloadMessage is sent to dev clients when templates change. Every other
// message is a JSON log entry.
const ReloadMessage = "reload"

const reloadWriteTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	// Dev mode only; the page may be opened through any local host name.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// reloadHub tracks dev websocket clients.
type reloadHub struct {
	mu     sync.RWMutex
	conns  map[*websocket.Conn]*sync.Mutex
	logger *logging.Logger
}

func newReloadHub(logger *logging.Logger) *reloadHub {
	return &reloadHub{conns: make(map[*websocket.Conn]*sync.Mutex), logger: logger}
}

func (h *reloadHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &sync.Mutex{}
	n := len(h.conns)
	h.mu.Unlock()
	h.logger.Debug("reload", "client connected", map[string]any{"clients": n})
}

func (h *reloadHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	n := len(h.conns)
	h.mu.Unlock()
	h.logger.Debug("reload", "client disconnected", map[string]any{"clients": n})
}

// Clients returns the number of connected clients.
func (h *reloadHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the reload message to every client and returns how many
// received it.
func (h *reloadHub) Broadcast(reason string) int {
	sent := h.send([]byte(ReloadMessage))
	if sent > 0 {
		h.logger.Info("reload", "reload broadcast", map[string]any{"reason": reason, "clients": sent})
	}
	return sent
}

// Notify forwards a server log entry to every client as JSON.
func (h *reloadHub) Notify(entry logging.Entry) int {
	data, err := json.Marshal(entry)
	if err != nil {
		return 0
	}
	return h.send(data)
}

func (h *reloadHub) send(payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for conn, writeMu := range h.conns {
		writeMu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(reloadWriteTimeout))
		err := conn.WriteMessage(websocket.TextMessage, payload)
		writeMu.Unlock()
		if err != nil {
			h.logger.Warn("reload", "send to dev client failed", map[string]any{"error": err.Error()})
			continue
		}
		sent++
	}
	return sent
}

// CloseAll disconnects every client.
func (h *reloadHub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.Close()
		delete(h.conns, conn)
	}
}

func (h *reloadHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("reload", "websocket upgrade failed", map[string]any{"error": err.Error()})
		return
	}
	h.register(conn)
	defer func() {
		h.unregister(conn)
		_ = conn.Close()
	}()

	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("reload", "unexpected close", map[string]any{"error": err.Error()})
			}
			return
		}
	}
}
