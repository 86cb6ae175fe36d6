// Package service provides the business logic layer for blockfall.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Command parsing, batching and event derivation
//   - High score lookup
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an engine driven by its own game loop;
// the service never touches an engine directly and instead runs every
// operation through the session loop, so commands never interleave with
// gravity ticks.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, highscore.NewMemoryStore())
//
//	// Create a new session and start playing
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService.StartGame(ctx, sessionInfo.ID)
//
//	// Execute commands
//	result, err := gameService.Command(ctx, sessionInfo.ID, "rotate")
//
// Events:
//
// Command results carry events derived by comparing the state before and
// after each command: move, rotate, blocked, landed, lines_cleared,
// level_up, game_over and high_score.
package service
