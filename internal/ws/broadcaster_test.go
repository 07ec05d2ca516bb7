package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"moneta/internal/core"
)

// dialTestClient connects a websocket client through an httptest
// server that registers it under the given owner.
func dialTestClient(t *testing.T, b *Broadcaster, owner string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		b.RegisterClient(conn, owner)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastSnapshotReachesOwnerClients(t *testing.T) {
	b := NewBroadcaster()
	b.Start()
	defer b.Stop()

	conn := dialTestClient(t, b, "mario")

	snap := core.Snapshot{
		TotalIncome:  core.Money{Cents: 200000},
		TotalExpense: core.Money{Cents: 500},
		NetBalance:   core.Money{Cents: 199500},
		ByCategory:   map[string]core.Money{"Food": {Cents: 500}},
		GoalProgress: 99,
	}
	// Registration goes through the loop; give it a moment before
	// broadcasting.
	time.Sleep(50 * time.Millisecond)
	b.BroadcastSnapshot("mario", snap)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, body, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal %q: %v", body, err)
	}
	if got["type"] != "snapshot" {
		t.Errorf("type = %v, want snapshot", got["type"])
	}
	if got["net_balance"] != 1995.0 {
		t.Errorf("net_balance = %v, want 1995", got["net_balance"])
	}
	if got["goal_progress"] != 99.0 {
		t.Errorf("goal_progress = %v, want 99", got["goal_progress"])
	}
}

func TestBroadcastIsOwnerScoped(t *testing.T) {
	b := NewBroadcaster()
	b.Start()
	defer b.Stop()

	other := dialTestClient(t, b, "luigi")

	time.Sleep(50 * time.Millisecond)
	b.BroadcastSnapshot("mario", core.Snapshot{NetBalance: core.Money{Cents: 100}})

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatal("client received another owner's snapshot")
	}
}
