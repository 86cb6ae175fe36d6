// Package websocket streams game state to browser clients.
//
// A central Hub tracks the clients watching each session. Every client gets
// a read goroutine and a write goroutine; all bookkeeping runs on the hub's
// own goroutine.
//
// Message Protocol:
//
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "game_state": {...}}
//     after every gravity tick and every command. Failures go only to the
//     client that caused them as {"event": "error", "data": "..."}.
//   - Incoming: {"action": "left"}, one of left, right, down, rotate or start.
//     Actions are handed to the CommandHandler set with OnCommand.
//
// Clients pick a session with the query parameter ?session=ab12.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.OnCommand(func(ctx context.Context, id, action string) error { ... })
//	go hub.Run()
//	defer hub.Stop()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Broadcasting never blocks the caller. Updates are dropped when the hub
// queue is full, and a client whose buffer is full is disconnected.
package websocket
