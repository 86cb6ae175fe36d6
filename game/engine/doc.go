// Package engine provides the core game logic for blockfall, a falling-block
// puzzle game.
//
// The engine package implements the game mechanics including:
//   - Grid occupancy, full-row detection and row compaction
//   - Pieces as origin plus offsets with pure translate and rotate transforms
//   - Collision checking through a single IsValid authority
//   - Landing, line clears, scoring, levels and the speed curve
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds everything that changes during
// a game, while GameConfig defines the board size and speed curve loaded
// from JSON files. Rendering, audio, high-score storage and input are
// collaborators behind small interfaces (Renderer, AudioController,
// HighScoreStore, InputSource).
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config, engine.WithRenderer(r))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.StartGame()
//	gameEngine.Apply(engine.Rotate)
//	gameEngine.Tick()
//	state := gameEngine.Snapshot()
//
// GameEngine is not safe for concurrent use. The loop package owns an engine
// on a single goroutine and drives Tick at the engine's current Speed.
//
// Game Rules:
//
// A piece falls one row per tick. Moving down into an obstacle lands it; full
// rows are cleared and scored (100, 300, 500 or 800 plus 100 per level for
// one to four rows). Every ten cleared rows raise the level, which shortens
// the tick interval down to a configured floor. The game ends when a new
// piece cannot be placed at the spawn position.
package engine
