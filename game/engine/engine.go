package engine

import (
	"log"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	StartGame()
	GameOver()
	Status() Status
	IsGameOver() bool

	// Player input and gravity
	RequestMove(dir Direction) bool
	RequestRotate() bool
	Tick() bool
	Apply(cmd Command) bool

	// Read access
	GetState() *GameState
	Snapshot() *GameState
	GetScore() int
	Speed() time.Duration
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; the game loop serializes every call onto one goroutine.
type GameEngine struct {
	state  *GameState
	config *GameConfig

	renderer Renderer
	audio    AudioController
	scores   HighScoreStore
	source   PieceSource
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithRenderer sets the renderer notified after every visible change
func WithRenderer(r Renderer) Option {
	return func(e *GameEngine) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithAudio sets the audio controller
func WithAudio(a AudioController) Option {
	return func(e *GameEngine) {
		if a != nil {
			e.audio = a
		}
	}
}

// WithHighScoreStore sets where the best score is read and written
func WithHighScoreStore(s HighScoreStore) Option {
	return func(e *GameEngine) {
		e.scores = s
	}
}

// WithPieceSource overrides the random piece order
func WithPieceSource(s PieceSource) Option {
	return func(e *GameEngine) {
		if s != nil {
			e.source = s
		}
	}
}

// NewEngine creates a new game engine with the provided configuration. The
// engine starts in StatusReady with an empty grid.
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config:   config,
		renderer: NopRenderer{},
		audio:    NopAudio{},
		source:   NewRandomSource(config.Seed),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.initialState()
	e.state.Message = "Press start to play"
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultConfig(), opts...)
	if err != nil {
		// DefaultConfig always validates
		panic(err)
	}
	return e
}

func (e *GameEngine) initialState() *GameState {
	return &GameState{
		Status:     StatusReady,
		Grid:       NewGrid(e.config.Rows, e.config.Columns),
		Level:      1,
		GameSpeed:  e.config.InitialSpeed,
		ConfigName: e.config.Name,
	}
}

// StartGame resets the board and score state, deals the first two pieces and
// enters StatusRunning. It may be called from any state.
func (e *GameEngine) StartGame() {
	highScore := e.state.HighScore
	e.state = e.initialState()
	e.state.HighScore = highScore
	e.loadHighScore()

	e.renderer.ClearPieceDisplay()
	e.renderer.ClearAllLandedDisplay()

	e.state.Next = e.spawn()
	e.promote()
	e.state.Status = StatusRunning
	e.state.Message = "Game started"

	e.renderer.UpdateLabel(LabelScore, 0)
	e.renderer.UpdateLabel(LabelLevel, 1)
	e.renderer.UpdateLabel(LabelLines, 0)
	e.renderer.UpdateLabel(LabelHighScore, e.state.HighScore)
	e.audio.PlayBackgroundMusic()
}

// Status returns the lifecycle state
func (e *GameEngine) Status() Status {
	return e.state.Status
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.IsGameOver
}

// GetState returns the live game state. Callers outside the loop goroutine
// should use Snapshot instead.
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a deep copy of the state with the text board filled in
func (e *GameEngine) Snapshot() *GameState {
	s := e.state.Clone()
	s.Board = RenderBoard(s)
	return s
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.state.Score
}

// Speed returns the current interval between gravity ticks
func (e *GameEngine) Speed() time.Duration {
	return time.Duration(e.state.GameSpeed) * time.Millisecond
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// spawn draws a new piece from the source at the spawn position
func (e *GameEngine) spawn() *Piece {
	shape := e.source.Next()
	p, err := NewPiece(shape, e.config.Columns)
	if err != nil {
		log.Printf("Warning: piece source returned %v, using %s", err, ShapeI)
		p, _ = NewPiece(ShapeI, e.config.Columns)
	}
	return &p
}

// promote makes the queued piece active and queues a fresh one
func (e *GameEngine) promote() {
	e.state.Active = e.state.Next
	e.state.Next = e.spawn()
	e.renderer.DrawPiece(*e.state.Active)
	e.renderer.DrawNextPiece(*e.state.Next)
}

// loadHighScore refreshes the displayed high score from the store
func (e *GameEngine) loadHighScore() {
	if e.scores == nil {
		return
	}
	stored, ok, err := e.scores.Read()
	if err != nil {
		log.Printf("Warning: failed to read high score: %v", err)
		return
	}
	if ok {
		e.state.HighScore = stored
	}
}
