package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/blockfall/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// Second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	watcher := newTestClient(hub, "a")
	other := newTestClient(hub, "b")
	hub.registerClient(watcher)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		SessionID: "a",
		Event:     EventStateUpdate,
		GameState: &engine.GameState{Score: 300, Level: 2},
	})

	select {
	case data := <-watcher.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "a" || message.Event != EventStateUpdate {
			t.Errorf("Unexpected envelope: %+v", message)
		}
		if message.GameState.Score != 300 || message.GameState.Level != 2 {
			t.Error("GameState not correctly transmitted")
		}
	default:
		t.Error("No message queued for the session's client")
	}

	select {
	case <-other.send:
		t.Error("Client of another session received the message")
	default:
	}
}

func TestHubTargetedMessage(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(hub, "s")
	c2 := newTestClient(hub, "s")
	hub.registerClient(c1)
	hub.registerClient(c2)

	hub.broadcastMessage(&Message{SessionID: "s", Event: EventError, Data: "nope", target: c2})

	if len(c1.send) != 0 {
		t.Error("Targeted message reached another client")
	}
	if len(c2.send) != 1 {
		t.Error("Targeted client did not receive the message")
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub()

	// Nobody runs the hub; the queue fills and further updates are dropped
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.BroadcastToSession("x", &engine.GameState{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastToSession blocked")
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("Expected a full queue, got %d", len(hub.broadcast))
	}
}

type recordedCommand struct {
	sessionID string
	action    string
}

func startHubServer(t *testing.T, handler CommandHandler) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	hub.OnCommand(handler)
	go hub.Run()
	t.Cleanup(hub.Stop)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients in %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketLifecycle(t *testing.T) {
	hub, wsURL := startHubServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=ws-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}

	waitForClients(t, hub, "ws-test", 1)

	conn.Close()

	waitForClients(t, hub, "ws-test", 0)
}

func TestWebSocketStateUpdate(t *testing.T) {
	hub, wsURL := startHubServer(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=msg-test", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "msg-test", 1)

	hub.BroadcastToSession("msg-test", &engine.GameState{
		Status: engine.StatusRunning,
		Score:  200,
		Board:  []string{"....", "#..#"},
	})

	message := readMessage(t, conn)
	if message.SessionID != "msg-test" || message.Event != EventStateUpdate {
		t.Errorf("Unexpected envelope: %+v", message)
	}
	if message.GameState == nil || message.GameState.Score != 200 {
		t.Fatal("GameState not correctly received")
	}
	if len(message.GameState.Board) != 2 || message.GameState.Board[1] != "#..#" {
		t.Errorf("Board not correctly received: %v", message.GameState.Board)
	}
}

func TestWebSocketCommands(t *testing.T) {
	var (
		mu       sync.Mutex
		received []recordedCommand
	)
	hub, wsURL := startHubServer(t, func(ctx context.Context, sessionID, action string) error {
		if action == "jump" {
			return errors.New("unknown command: jump")
		}
		mu.Lock()
		received = append(received, recordedCommand{sessionID, action})
		mu.Unlock()
		return nil
	})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=cmd1", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "cmd1", 1)

	for _, action := range []string{"start", "left", "rotate"} {
		if err := conn.WriteJSON(ClientMessage{Action: action}); err != nil {
			t.Fatalf("Failed to send %s: %v", action, err)
		}
	}
	if err := conn.WriteJSON(ClientMessage{Action: "jump"}); err != nil {
		t.Fatalf("Failed to send jump: %v", err)
	}

	message := readMessage(t, conn)
	if message.Event != EventError {
		t.Fatalf("Expected error event, got %+v", message)
	}
	if text, _ := message.Data.(string); !strings.Contains(text, "jump") {
		t.Errorf("Expected error text to name the command, got %v", message.Data)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []recordedCommand{{"cmd1", "start"}, {"cmd1", "left"}, {"cmd1", "rotate"}}
	if len(received) != len(want) {
		t.Fatalf("Expected %d commands, got %v", len(want), received)
	}
	for i := range want {
		if received[i] != want[i] {
			t.Errorf("Command %d: expected %v, got %v", i, want[i], received[i])
		}
	}
}

func TestWebSocketMalformedMessage(t *testing.T) {
	hub, wsURL := startHubServer(t, func(context.Context, string, string) error { return nil })

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?session=bad1", nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "bad1", 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	message := readMessage(t, conn)
	if message.Event != EventError {
		t.Errorf("Expected error event, got %+v", message)
	}
}
