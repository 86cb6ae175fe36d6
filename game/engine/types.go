package engine

import "errors"

// Shape identifies a piece kind
type Shape string

const (
	ShapeI Shape = "I"
	ShapeO Shape = "O"
	ShapeT Shape = "T"
	ShapeS Shape = "S"
	ShapeZ Shape = "Z"
	ShapeJ Shape = "J"
	ShapeL Shape = "L"
)

// Status is the engine lifecycle state
type Status string

const (
	StatusReady    Status = "ready"
	StatusRunning  Status = "running"
	StatusGameOver Status = "game_over"
)

// Direction is a translation request for the active piece
type Direction string

const (
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

const (
	// Grid defaults
	DefaultRows    = 20
	DefaultColumns = 10

	// Validation constants
	MinRows    = 4
	MaxRows    = 40
	MinColumns = 4
	MaxColumns = 30

	// Speed curve defaults in milliseconds
	DefaultInitialSpeed = 500
	DefaultMinSpeed     = 100
	DefaultSpeedStep    = 20
	MinSpeedFloor       = 10
	MaxInitialSpeed     = 5000

	// LinesPerLevel is the number of cleared rows needed to gain a level
	LinesPerLevel = 10

	// CellsPerPiece is the size of every shape kind
	CellsPerPiece = 4

	MaxBulkCommands = 50
)

var (
	ErrOutOfBounds    = errors.New("coordinate out of bounds")
	ErrUnknownShape   = errors.New("unknown shape")
	ErrUnknownCommand = errors.New("unknown command")

	ErrMalformedConfig = errors.New("malformed config")
)

// Coord is a (row, col) cell coordinate
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the coordinate shifted by d
func (c Coord) Add(d Coord) Coord {
	return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// Cell is a single grid cell
type Cell struct {
	Occupied bool  `json:"occupied"`
	Shape    Shape `json:"shape,omitempty"` // kind that filled the cell
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Rows         int    `json:"rows"`
	Columns      int    `json:"columns"`
	InitialSpeed int    `json:"initial_speed_ms"`
	MinSpeed     int    `json:"min_speed_ms"`
	SpeedStep    int    `json:"speed_step_ms"`
	// Seed fixes the piece order when non-zero
	Seed uint64 `json:"seed,omitempty"`
}

// GameState represents the complete game state
type GameState struct {
	Status        Status `json:"status"`
	Grid          *Grid  `json:"grid"`
	Active        *Piece `json:"active,omitempty"`
	Next          *Piece `json:"next,omitempty"`
	Score         int    `json:"score"`
	Level         int    `json:"level"`
	CompletedRows int    `json:"completed_rows"`
	GameSpeed     int    `json:"game_speed_ms"`
	IsGameOver    bool   `json:"is_game_over"`
	HighScore     int    `json:"high_score"`
	Message       string `json:"message"`
	ConfigName    string `json:"config_name"`

	// Running totals for the current game
	TotalLines   int   `json:"total_lines"`
	PiecesPlaced int   `json:"pieces_placed"`
	LastCleared  []int `json:"last_cleared,omitempty"`

	// Computed helper view (not required for core game logic)
	Board []string `json:"board,omitempty"`
}

// Clone returns a deep copy that shares nothing with the receiver
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	if gs.Grid != nil {
		c.Grid = gs.Grid.Clone()
	}
	if gs.Active != nil {
		p := gs.Active.Clone()
		c.Active = &p
	}
	if gs.Next != nil {
		p := gs.Next.Clone()
		c.Next = &p
	}
	if gs.LastCleared != nil {
		c.LastCleared = append([]int(nil), gs.LastCleared...)
	}
	if gs.Board != nil {
		c.Board = append([]string(nil), gs.Board...)
	}
	return &c
}
