// Package ws pushes fresh aggregate snapshots to connected rendering
// clients so open dashboards repaint without polling.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"moneta/internal/core"
)

type client struct {
	conn  *websocket.Conn
	owner string
}

// Broadcaster fans snapshot updates out to websocket clients, scoped
// by owner: a client only ever sees its own user's totals.
type Broadcaster struct {
	mu         sync.Mutex
	clients    map[*websocket.Conn]string // conn -> owner
	broadcast  chan ownedPayload
	register   chan client
	unregister chan *websocket.Conn
	done       chan struct{}
	once       sync.Once
}

type ownedPayload struct {
	owner string
	body  []byte
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan ownedPayload, 16),
		register:   make(chan client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Start runs the fan-out loop until Stop is called.
func (b *Broadcaster) Start() {
	go func() {
		for {
			select {
			case c := <-b.register:
				b.mu.Lock()
				b.clients[c.conn] = c.owner
				n := len(b.clients)
				b.mu.Unlock()
				slog.Debug("Websocket client connected", "owner", c.owner, "clients", n)
			case conn := <-b.unregister:
				b.mu.Lock()
				if _, ok := b.clients[conn]; ok {
					delete(b.clients, conn)
					conn.Close()
				}
				n := len(b.clients)
				b.mu.Unlock()
				slog.Debug("Websocket client disconnected", "clients", n)
			case p := <-b.broadcast:
				b.mu.Lock()
				for conn, owner := range b.clients {
					if owner != p.owner {
						continue
					}
					if err := conn.WriteMessage(websocket.TextMessage, p.body); err != nil {
						slog.Warn("Websocket write failed, dropping client", "error", err)
						conn.Close()
						delete(b.clients, conn)
					}
				}
				b.mu.Unlock()
			case <-b.done:
				b.mu.Lock()
				for conn := range b.clients {
					conn.Close()
					delete(b.clients, conn)
				}
				b.mu.Unlock()
				return
			}
		}
	}()
}

// Stop closes every connection and ends the fan-out loop.
func (b *Broadcaster) Stop() {
	b.once.Do(func() { close(b.done) })
}

// BroadcastSnapshot sends the owner's fresh totals to that owner's
// clients. Marshal failures are logged and dropped; snapshot pushes
// are advisory, the dashboard can always re-fetch.
func (b *Broadcaster) BroadcastSnapshot(owner string, snap core.Snapshot) {
	update := map[string]any{
		"type":          "snapshot",
		"total_income":  snap.TotalIncome.Decimal(),
		"total_expense": snap.TotalExpense.Decimal(),
		"net_balance":   snap.NetBalance.Decimal(),
		"goal_progress": snap.GoalProgress,
	}
	byCategory := make(map[string]float64, len(snap.ByCategory))
	for name, amt := range snap.ByCategory {
		byCategory[name] = amt.Decimal()
	}
	update["by_category"] = byCategory

	body, err := json.Marshal(update)
	if err != nil {
		slog.Error("Failed to marshal snapshot update", "error", err)
		return
	}
	select {
	case b.broadcast <- ownedPayload{owner: owner, body: body}:
	case <-b.done:
	}
}

// RegisterClient adds a connection scoped to an owner.
func (b *Broadcaster) RegisterClient(conn *websocket.Conn, owner string) {
	select {
	case b.register <- client{conn: conn, owner: owner}:
	case <-b.done:
		conn.Close()
	}
}

// UnregisterClient removes a connection.
func (b *Broadcaster) UnregisterClient(conn *websocket.Conn) {
	select {
	case b.unregister <- conn:
	case <-b.done:
	}
}
