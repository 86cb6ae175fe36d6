package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wricardo/blockfall/game/engine"
)

// ErrGameNotRunning is returned for commands sent before the first start
var ErrGameNotRunning = errors.New("game not started")

// StateListener is told about the state of a session after every command
type StateListener func(sessionID string, state *engine.GameState)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithStateListener registers a listener for post-command states
func WithStateListener(fn StateListener) Option {
	return func(s *gameServiceImpl) {
		s.listener = fn
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   engine.HighScoreStore
	listener StateListener
}

// NewGameService creates a new game service instance. scores may be nil when
// no high score is kept.
func NewGameService(sessions SessionManager, configs ConfigManager, scores engine.HighScoreStore, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		scores:   scores,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	// Load configuration
	var config *engine.GameConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.DefaultID()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(ctx, sess)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(ctx, sess)
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		info, err := s.sessionInfo(ctx, sess)
		if err != nil {
			// Session stopped while listing
			continue
		}
		result = append(result, info)
	}

	return result, nil
}

// DeleteSession removes a session and stops its game loop
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(sessionID)
}

// StartGame starts a new game in a session, discarding any game in progress
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Loop.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	state, err := sess.Loop.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[GAME] session=%s started config=%s", sess.ID, sess.ConfigID)
	s.notify(sess.ID, state)
	return state, nil
}

// Command applies one player command
func (s *gameServiceImpl) Command(ctx context.Context, sessionID, command string) (*CommandResult, error) {
	cmd, err := engine.ParseCommand(command)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var (
		result  *CommandResult
		started = true
	)
	err = sess.Loop.Do(ctx, func(e *engine.GameEngine) {
		if e.Status() == engine.StatusReady {
			started = false
			return
		}
		before := captureCounters(e.GetState())
		moved := e.Apply(cmd)
		state := e.Snapshot()
		result = &CommandResult{
			Success:   moved,
			Command:   cmd,
			GameState: state,
			Message:   state.Message,
			Events:    deriveEvents(cmd, moved, before, state),
		}
	})
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, fmt.Errorf("%w: start the game in session %s first", ErrGameNotRunning, sess.ID)
	}

	s.notify(sess.ID, result.GameState)
	return result, nil
}

// BulkCommand applies up to engine.MaxBulkCommands commands without a
// gravity tick in between. All commands are parsed before any is applied.
func (s *gameServiceImpl) BulkCommand(ctx context.Context, sessionID string, commands []string) (*BulkCommandResult, error) {
	result := &BulkCommandResult{
		RequestedCommands: len(commands),
		Events:            make([]GameEvent, 0),
		Success:           true,
	}

	// Limit commands to prevent abuse
	if len(commands) > engine.MaxBulkCommands {
		result.Truncated = true
		result.Limit = engine.MaxBulkCommands
		commands = commands[:engine.MaxBulkCommands]
	}

	parsed := make([]engine.Command, 0, len(commands))
	for i, c := range commands {
		cmd, err := engine.ParseCommand(c)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		}
		parsed = append(parsed, cmd)
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	started := true
	err = sess.Loop.Do(ctx, func(e *engine.GameEngine) {
		if e.Status() == engine.StatusReady {
			started = false
			return
		}
		start := captureCounters(e.GetState())

		for i, cmd := range parsed {
			if e.IsGameOver() {
				result.StoppedReason = EventGameOver
				result.StoppedOnCommand = i + 1
				break
			}

			before := captureCounters(e.GetState())
			moved := e.Apply(cmd)
			after := e.GetState()
			result.CommandsExecuted++
			if !moved {
				result.Success = false
			}

			result.Events = append(result.Events, deriveEvents(cmd, moved, before, after)...)
			result.Steps = append(result.Steps, StepInfo{
				Idx:     i + 1,
				Command: cmd,
				Success: moved,
				Landed:  after.PiecesPlaced > before.pieces,
				Cleared: after.TotalLines - before.lines,
				Score:   after.Score,
			})
		}

		state := e.Snapshot()
		result.GameState = state
		result.ScoreDelta = state.Score - start.score
		result.LinesDelta = state.TotalLines - start.lines
		result.GameOver = state.IsGameOver
		result.Message = state.Message
	})
	if err != nil {
		return nil, err
	}
	if !started {
		return nil, fmt.Errorf("%w: start the game in session %s first", ErrGameNotRunning, sess.ID)
	}

	s.notify(sess.ID, result.GameState)
	return result, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Loop.Snapshot(ctx)
}

// GetHighScore returns the stored best score
func (s *gameServiceImpl) GetHighScore(ctx context.Context) (*HighScoreInfo, error) {
	if s.scores == nil {
		return &HighScoreInfo{}, nil
	}
	score, ok, err := s.scores.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read high score: %w", err)
	}
	return &HighScoreInfo{HighScore: score, Stored: ok}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(ctx context.Context, sess *Session) (*SessionInfo, error) {
	state, err := sess.Loop.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      state,
		GameConfig:     sess.Config,
	}, nil
}

func (s *gameServiceImpl) notify(sessionID string, state *engine.GameState) {
	if s.listener != nil && state != nil {
		s.listener(sessionID, state)
	}
}

// counters are the state fields events are derived from
type counters struct {
	pieces int
	lines  int
	level  int
	score  int
	high   int
	over   bool
}

func captureCounters(st *engine.GameState) counters {
	return counters{
		pieces: st.PiecesPlaced,
		lines:  st.TotalLines,
		level:  st.Level,
		score:  st.Score,
		high:   st.HighScore,
		over:   st.IsGameOver,
	}
}

// deriveEvents compares the state before and after one command
func deriveEvents(cmd engine.Command, moved bool, before counters, after *engine.GameState) []GameEvent {
	now := time.Now()
	var events []GameEvent

	switch {
	case moved && cmd == engine.Rotate:
		events = append(events, GameEvent{Type: EventRotate, Message: "Rotated clockwise", Timestamp: now})
	case moved:
		events = append(events, GameEvent{Type: EventMove, Message: fmt.Sprintf("Moved %s", cmd), Timestamp: now})
	case after.PiecesPlaced == before.pieces && !before.over:
		events = append(events, GameEvent{Type: EventBlocked, Message: fmt.Sprintf("Can't %s", cmd), Timestamp: now})
	}

	if after.PiecesPlaced > before.pieces {
		events = append(events, GameEvent{Type: EventLanded, Message: fmt.Sprintf("Piece landed (%d placed)", after.PiecesPlaced), Timestamp: now})
	}
	if cleared := after.TotalLines - before.lines; cleared > 0 {
		events = append(events, GameEvent{
			Type:      EventLinesCleared,
			Message:   fmt.Sprintf("Cleared %d row(s), score %d", cleared, after.Score),
			Timestamp: now,
			Rows:      append([]int(nil), after.LastCleared...),
		})
	}
	if after.Level > before.level {
		events = append(events, GameEvent{Type: EventLevelUp, Message: fmt.Sprintf("Level %d, speed %dms", after.Level, after.GameSpeed), Timestamp: now})
	}
	if after.IsGameOver && !before.over {
		events = append(events, GameEvent{Type: EventGameOver, Message: after.Message, Timestamp: now})
		if after.HighScore > before.high && after.HighScore == after.Score {
			events = append(events, GameEvent{Type: EventHighScore, Message: fmt.Sprintf("New high score: %d", after.Score), Timestamp: now})
		}
	}
	return events
}
