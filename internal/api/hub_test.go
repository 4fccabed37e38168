package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"CryptoPilot/internal/model"
)

func TestHub_PushesSnapshots(t *testing.T) {
	bot := &fakeBot{}
	hub := NewHub(func() interface{} { return bot.Dashboard() })
	srv := httptest.NewServer(NewServer(bot, "", hub).Router())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, 20*time.Millisecond)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first model.Dashboard
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if first.Status.IsRunning {
		t.Errorf("initial snapshot = %+v", first.Status)
	}

	_ = bot.Start(ctx)
	for {
		var d model.Dashboard
		if err := conn.ReadJSON(&d); err != nil {
			t.Fatalf("read pushed snapshot: %v", err)
		}
		if d.Status.IsRunning {
			break
		}
	}
}

func TestHub_DropsClosedClients(t *testing.T) {
	hub := NewHub(func() interface{} { return map[string]int{"n": 1} })
	srv := httptest.NewServer(NewServer(&fakeBot{}, "", hub).Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	var msg json.RawMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if hub.Clients() != 1 {
		t.Fatalf("clients = %d", hub.Clients())
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Clients() != 0 {
		t.Errorf("closed client not removed, clients = %d", hub.Clients())
	}
}

func TestHub_BroadcastDropsStalledClient(t *testing.T) {
	hub := NewHub(func() interface{} { return nil })
	registered := make(chan *client, 1)
	// Registers without a writer so the client's queue never drains.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		registered <- hub.register(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	stalled := <-registered

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer+3; i++ {
			hub.Broadcast([]byte(`{}`))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a stalled client")
	}

	if hub.Clients() != 0 {
		t.Errorf("stalled client should be dropped, clients = %d", hub.Clients())
	}
	if _, ok := <-stalled.send; !ok {
		t.Error("expected queued snapshots before the queue was closed")
	}
}
