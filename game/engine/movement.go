package engine

import "fmt"

var directionDelta = map[Direction]Coord{
	Down:  {Row: 1, Col: 0},
	Left:  {Row: 0, Col: -1},
	Right: {Row: 0, Col: 1},
}

// RequestMove translates the active piece one cell in dir when the target
// position is valid. A rejected Down lands the piece; rejected Left and Right
// are no-ops. Returns true only when the piece moved.
func (e *GameEngine) RequestMove(dir Direction) bool {
	if e.state.Status != StatusRunning {
		return false
	}
	delta, ok := directionDelta[dir]
	if !ok {
		return false
	}

	candidate := e.state.Active.Translate(delta.Row, delta.Col)
	if e.state.Grid.Fits(candidate) {
		e.commit(candidate)
		return true
	}

	if dir == Down {
		e.land()
		return false
	}
	e.state.Message = fmt.Sprintf("Can't move %s", dir)
	return false
}

// RequestRotate turns the active piece clockwise when the rotated position is
// valid; otherwise the piece stays as it was.
func (e *GameEngine) RequestRotate() bool {
	if e.state.Status != StatusRunning {
		return false
	}

	candidate := e.state.Active.RotateClockwise()
	if !e.state.Grid.Fits(candidate) {
		e.state.Message = "Can't rotate"
		return false
	}
	e.commit(candidate)
	return true
}

// Tick advances gravity by one row. It is what the game loop calls.
func (e *GameEngine) Tick() bool {
	return e.RequestMove(Down)
}

func (e *GameEngine) commit(p Piece) {
	e.state.Active = &p
	e.state.Message = ""
	e.renderer.ClearPieceDisplay()
	e.renderer.DrawPiece(p)
}

// land fixes the active piece into the grid, clears full rows, updates the
// score state and promotes the next piece. If the promoted piece does not fit
// at its spawn position the game is over.
func (e *GameEngine) land() {
	s := e.state
	landed := *s.Active

	if err := s.Grid.Occupy(landed.Name, landed.Cells()); err != nil {
		// Only reachable if a committed position bypassed IsValid
		panic(fmt.Sprintf("landing %s: %v", landed.Name, err))
	}
	s.PiecesPlaced++

	full := s.Grid.FindFullRows()
	if err := s.Grid.ClearRows(full); err != nil {
		panic(fmt.Sprintf("clearing rows %v: %v", full, err))
	}
	s.LastCleared = full

	// Score uses the level in effect before this clear can raise it
	e.UpdateCompletedRows(len(full))
	e.CalculateScore(len(full))
	s.TotalLines += len(full)
	e.UpdateScore()

	if len(full) > 0 {
		s.Message = fmt.Sprintf("Cleared %d row(s)", len(full))
	} else {
		s.Message = ""
	}

	e.renderer.ClearPieceDisplay()
	e.renderer.DrawLanded(s.Grid)
	e.promote()

	if !s.Grid.Fits(*s.Active) {
		e.renderer.ClearPieceDisplay()
		e.GameOver()
	}
}
