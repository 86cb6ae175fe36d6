// Command bruteforcer plays blockfall through the REST API. For every piece
// it tries each rotation and column, scores the resulting board and sends
// the winning placement as one bulk command.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wricardo/blockfall/game/engine"
)

// Bot plays one session
type Bot struct {
	client  *Client
	verbose bool
	delay   time.Duration
}

// GameResult summarises one finished or abandoned game
type GameResult struct {
	Score    int
	Lines    int
	Level    int
	Pieces   int
	GameOver bool
}

// Play places pieces until the game ends or maxPieces pieces have landed
func (b *Bot) Play(ctx context.Context, state *engine.GameState, maxPieces int) (*GameResult, error) {
	// a landing always advances PiecesPlaced, so this bounds stuck loops
	maxRounds := maxPieces * 4

	for round := 0; round < maxRounds; round++ {
		if state.IsGameOver || state.PiecesPlaced >= maxPieces {
			break
		}
		if state.Active == nil || state.Grid == nil {
			return nil, errors.New("state has no active piece")
		}

		placement, ok := BestPlacement(state.Grid, *state.Active)
		if !ok {
			return nil, fmt.Errorf("no placement for %s", state.Active.Name)
		}

		commands := placement.Commands()
		if len(commands) > engine.MaxBulkCommands {
			// the rest is planned again from where the piece ends up
			commands = commands[:engine.MaxBulkCommands]
		}

		result, err := b.client.Bulk(ctx, commands)
		if err != nil {
			return nil, err
		}
		if b.verbose {
			log.Printf("%s rot=%d shift=%+d drop=%d lines=%d score=%d",
				state.Active.Name, placement.Rotations, placement.Shift, placement.Drop,
				placement.Lines, result.GameState.Score)
		}
		state = result.GameState

		if b.delay > 0 {
			time.Sleep(b.delay)
		}
	}

	return &GameResult{
		Score:    state.Score,
		Lines:    state.TotalLines,
		Level:    state.Level,
		Pieces:   state.PiecesPlaced,
		GameOver: state.IsGameOver,
	}, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configName := flag.String("config", "", "Game configuration name (classic, sprint, small)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	maxPieces := flag.Int("max-pieces", 500, "Maximum pieces per game")
	games := flag.Int("games", 1, "Number of games to play")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between placements in milliseconds (0 = no delay)")
	flag.Parse()

	ctx := context.Background()
	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := *continueSession
	if savedSessionID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		if _, err := client.GetState(ctx); err != nil {
			log.Printf("Failed to resume session %s (may be expired): %v", savedSessionID, err)
			savedSessionID = ""
		} else {
			log.Printf("Resuming session: %s", savedSessionID)
		}
	}

	if savedSessionID == "" {
		info, err := client.CreateSession(ctx, *configName)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("Session created: %s (config %s)", info.ID, info.ConfigName)
		if err := os.WriteFile(sessionFile, []byte(info.ID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	bot := &Bot{
		client:  client,
		verbose: *verbose,
		delay:   time.Duration(*delayMs) * time.Millisecond,
	}

	best := 0
	for game := 1; game <= *games; game++ {
		state, err := client.Start(ctx)
		if err != nil {
			log.Fatalf("Failed to start game: %v", err)
		}

		result, err := bot.Play(ctx, state, *maxPieces)
		if err != nil {
			log.Fatalf("Game %d failed: %v", game, err)
		}

		outcome := "stopped"
		if result.GameOver {
			outcome = "game over"
		}
		log.Printf("Game %d/%d %s: score=%d lines=%d level=%d pieces=%d",
			game, *games, outcome, result.Score, result.Lines, result.Level, result.Pieces)
		best = max(best, result.Score)
	}

	fmt.Printf("Best score over %d game(s): %d\n", *games, best)
}
