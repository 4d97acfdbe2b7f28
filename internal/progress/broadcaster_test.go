package progress

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"cadlang/internal/node"
)

func TestBroadcasterDeliversEventToConnectedClient(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server goroutine a moment to register the connection.
	time.Sleep(20 * time.Millisecond)

	cb := b.Callback()
	n := &node.AbstractNode{Index: 2, Label: "cube"}
	cancel := cb(n, 3, 5)
	if cancel {
		t.Fatal("Callback should never request cancellation on its own")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if evt.NodeIndex != 2 || evt.Mark != 3 || evt.Total != 5 || evt.Label != "cube" {
		t.Fatalf("got %+v, want NodeIndex=2 Mark=3 Total=5 Label=cube", evt)
	}
}

func TestBroadcasterDropsDeadConnections(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(b)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
	time.Sleep(20 * time.Millisecond)

	cb := b.Callback()
	cb(&node.AbstractNode{Index: 0}, 1, 1)
	time.Sleep(20 * time.Millisecond)

	b.mu.Lock()
	n := len(b.conns)
	b.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected dead connection to be dropped, %d remain", n)
	}
}
