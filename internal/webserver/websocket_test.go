package webserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ichi0g0y/name-picker/internal/reveal"
)

func readWSMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read ws message: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count=%d want=%d", h.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_ConnectAndBroadcast(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?clientId=overlay-1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	msg := readWSMessage(t, conn)
	if msg.Type != MsgConnected || !strings.Contains(string(msg.Data), "overlay-1") {
		t.Fatalf("unexpected first message: %s %s", msg.Type, msg.Data)
	}
	waitForClients(t, hub, 1)

	hub.RenderFrame("draw-1", reveal.WheelFrame{Mode: reveal.ModeWheel, Rotation: 1.5})
	msg = readWSMessage(t, conn)
	if msg.Type != MsgDrawFrame {
		t.Fatalf("type=%s want=%s", msg.Type, MsgDrawFrame)
	}
	var payload struct {
		DrawID string          `json:"draw_id"`
		Frame  json.RawMessage `json:"frame"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		t.Fatalf("decode frame payload: %v", err)
	}
	if payload.DrawID != "draw-1" || !strings.Contains(string(payload.Frame), `"wheel"`) {
		t.Fatalf("unexpected frame payload: %s", msg.Data)
	}

	hub.Broadcast(MsgPoolChanged, []string{"Anna"})
	msg = readWSMessage(t, conn)
	if msg.Type != MsgPoolChanged {
		t.Fatalf("type=%s want=%s", msg.Type, MsgPoolChanged)
	}

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastUnmarshalable(t *testing.T) {
	hub := NewHub()
	// チャネルに積まれないこと
	hub.Broadcast(MsgDrawStatus, func() {})
	if len(hub.broadcast) != 0 {
		t.Fatalf("unmarshalable payload should be dropped, queued=%d", len(hub.broadcast))
	}
}

func fillBroadcastQueue(h *Hub) {
	for len(h.broadcast) < cap(h.broadcast) {
		h.Broadcast(MsgDrawFrame, map[string]int{"n": len(h.broadcast)})
	}
}

func TestHub_FramesDroppedWhenQueueFull(t *testing.T) {
	hub := NewHub()
	fillBroadcastQueue(hub)

	returned := make(chan struct{})
	go func() {
		hub.Broadcast(MsgDrawFrame, map[string]int{"n": -1})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("frame broadcast blocked on a full queue")
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Fatalf("queue length changed: got=%d want=%d", len(hub.broadcast), cap(hub.broadcast))
	}
}

func TestHub_ResultWaitsForQueueSpace(t *testing.T) {
	hub := NewHub()
	fillBroadcastQueue(hub)

	go hub.Broadcast(MsgDrawResult, map[string]string{"winner": "Anna"})

	deadline := time.After(broadcastWait)
	for {
		select {
		case msg := <-hub.broadcast:
			if msg.Type == MsgDrawResult {
				return
			}
		case <-deadline:
			t.Fatal("draw_result was dropped on a full queue")
		}
	}
}

func TestHub_BroadcastReturnsAfterStop(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	fillBroadcastQueue(hub)
	returned := make(chan struct{})
	go func() {
		hub.Broadcast(MsgDrawStatus, map[string]bool{"drawing": false})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(broadcastWait / 2):
		t.Fatal("broadcast blocked after the hub stopped")
	}
}
