package web

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ranstack/nrmac/pkg/logger"
)

func TestWebSocketHub_New(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	hub := NewWebSocketHub(log)

	if hub == nil {
		t.Fatal("NewWebSocketHub returned nil")
	}
}

func TestWebSocketHub_Broadcast(t *testing.T) {
	log := logger.New(logger.Config{Level: "info"})
	hub := NewWebSocketHub(log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go hub.Run(ctx)
	time.Sleep(50 * time.Millisecond)

	// Broadcast should not panic even with no clients
	hub.Broadcast(Event{
		Type: "test",
		Data: map[string]interface{}{"message": "hello"},
	})

	time.Sleep(50 * time.Millisecond)
}

func TestWebSocketHub_ClientReceivesEvents(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	hub := NewWebSocketHub(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go hub.Run(ctx)

	server := httptest.NewServer(hub.Handler())
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer func() {
		_ = conn.Close()
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	// Wait for registration before broadcasting
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.BroadcastUplink(0x4601, 4, 42)

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("invalid event JSON: %v", err)
	}
	if event.Type != "uplink" {
		t.Errorf("event.Type = %q, want uplink", event.Type)
	}
	if event.Data["rnti"] != float64(0x4601) {
		t.Errorf("event rnti = %v, want %d", event.Data["rnti"], 0x4601)
	}
}

func TestEvent_Marshal(t *testing.T) {
	event := Event{
		Type:      "downlink",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"slot":     uint32(80),
			"nof_pdus": 2,
		},
	}

	data, err := event.Marshal()
	if err != nil {
		t.Fatalf("Failed to marshal event: %v", err)
	}

	if !strings.Contains(string(data), "downlink") {
		t.Error("Marshaled data doesn't contain event type")
	}
}
