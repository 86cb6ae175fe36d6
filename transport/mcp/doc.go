// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request to the REST API
// of a running server, and the answer is rendered as text with the board
// drawn row by row.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - start_game, game_state
//   - command: one of left, right, down, rotate
//   - bulk_command: up to 50 commands with no gravity tick in between
//   - high_score, list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.Serve(); err != nil { // stdio
//		log.Fatal(err)
//	}
package mcp
