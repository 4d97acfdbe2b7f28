// Package progress provides a concrete, optional progress-callback
// transport for spec.md §6's "caller-registered callback": a
// websocket broadcaster a UI can connect to instead of (or alongside)
// an in-process Go callback. The core (internal/node) knows nothing
// about this package; it only calls node.ProgressCallback, of which
// Broadcaster.Callback is one implementation.
//
// Grounded on the teacher's (sentra-language-sentra) use of
// gorilla/websocket for its network-facing stdlib surface; there is no
// teacher module for progress streaming specifically, so the
// connection-registry/broadcast shape is original, kept in the
// teacher's plain-mutex-guarded-map style used throughout its network
// packages.
package progress

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"cadlang/internal/node"
)

// Event is the JSON payload sent to every connected client on each
// progress_report call.
type Event struct {
	NodeIndex int    `json:"node_index"`
	Mark      int    `json:"mark"`
	Total     int    `json:"total"`
	Label     string `json:"label,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster fans progress events out to every currently connected
// websocket client. Safe for concurrent use; writes are serialized per
// connection.
type Broadcaster struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{conns: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection until it closes or errors.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()

	// Drain and discard client frames (pings, close) until disconnect;
	// this connection is write-only from the server's perspective.
	go func() {
		defer b.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (b *Broadcaster) remove(conn *websocket.Conn) {
	b.mu.Lock()
	delete(b.conns, conn)
	b.mu.Unlock()
	conn.Close()
}

// broadcast sends evt to every connected client, dropping (and
// unregistering) any that error on write.
func (b *Broadcaster) broadcast(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	b.mu.Lock()
	dead := make([]*websocket.Conn, 0)
	for conn := range b.conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			dead = append(dead, conn)
		}
	}
	b.mu.Unlock()
	for _, conn := range dead {
		b.remove(conn)
	}
}

// Callback adapts Broadcaster to node.ProgressCallback. It never
// requests cancellation itself — cancellation in this transport is
// driven by a client message, which is out of this package's scope
// (spec.md §5's cancellation token is caller-owned).
func (b *Broadcaster) Callback() node.ProgressCallback {
	return func(n *node.AbstractNode, mark, total int) bool {
		b.broadcast(Event{NodeIndex: n.Index, Mark: mark, Total: total, Label: n.Label})
		return false
	}
}
