package service

import (
	"errors"
	"time"

	"github.com/wricardo/blockfall/game/engine"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Event types reported in command results
const (
	EventMove         = "move"
	EventRotate       = "rotate"
	EventBlocked      = "blocked"
	EventLanded       = "landed"
	EventLinesCleared = "lines_cleared"
	EventLevelUp      = "level_up"
	EventGameOver     = "game_over"
	EventHighScore    = "high_score"
	EventStart        = "start"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CommandResult contains the result of a single command
type CommandResult struct {
	Success   bool              `json:"success"`
	Command   engine.Command    `json:"command"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BulkCommandResult contains the result of several commands applied in one
// turn of the game loop
type BulkCommandResult struct {
	CommandsExecuted  int               `json:"commands_executed"`
	RequestedCommands int               `json:"requested_commands"`
	Success           bool              `json:"success"`
	GameState         *engine.GameState `json:"game_state"`
	Events            []GameEvent       `json:"events"`
	Steps             []StepInfo        `json:"steps,omitempty"`
	StoppedReason     string            `json:"stopped_reason,omitempty"`
	StoppedOnCommand  int               `json:"stopped_on_command,omitempty"` // 1-based
	Truncated         bool              `json:"truncated,omitempty"`
	Limit             int               `json:"limit,omitempty"`

	ScoreDelta int    `json:"score_delta"`
	LinesDelta int    `json:"lines_delta"`
	GameOver   bool   `json:"game_over"`
	Message    string `json:"message,omitempty"`
}

// StepInfo is a compact record for each executed command in a bulk call
type StepInfo struct {
	Idx     int            `json:"idx"`
	Command engine.Command `json:"command"`
	Success bool           `json:"success"`
	Landed  bool           `json:"landed,omitempty"`
	Cleared int            `json:"cleared,omitempty"`
	Score   int            `json:"score"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Rows      []int     `json:"rows,omitempty"`
}

// HighScoreInfo reports the stored best score
type HighScoreInfo struct {
	HighScore int  `json:"high_score"`
	Stored    bool `json:"stored"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"` // The identifier to use for session creation
	Name         string `json:"name"`      // Display name
	Description  string `json:"description"`
	Rows         int    `json:"rows"`
	Columns      int    `json:"columns"`
	InitialSpeed int    `json:"initial_speed_ms"`
	MinSpeed     int    `json:"min_speed_ms"`
}
