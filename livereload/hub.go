// Package livereload tells open browser tabs to reload when site files
// change during development.
package livereload

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/gommon/log"
)

// ReloadMessage is the text frame sent to clients on change.
const ReloadMessage = "reload"

// Script is the client snippet injected into pages in dev mode.
const Script = `<script>
(function() {
  var proto = window.location.protocol === "https:" ? "wss://" : "ws://";
  var socket = new WebSocket(proto + window.location.host + "/ws");
  socket.onmessage = function(event) {
    if (event.data === "reload") {
      window.location.reload();
    }
  };
})();
</script>`

// The viewer only listens locally in dev mode.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks connected clients and broadcasts reload messages to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	logger  *log.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New("livereload")
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("live reload client connected")
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every client. Clients that fail are dropped.
func (h *Hub) Broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			h.logger.Warnf("live reload write: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Reload tells every client to reload.
func (h *Hub) Reload() {
	h.Broadcast(ReloadMessage)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

// ServeHTTP upgrades the request and holds the connection until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnf("live reload upgrade: %v", err)
		return
	}
	h.register(conn)
	defer h.unregister(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
