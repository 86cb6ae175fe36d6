package engine

import (
	"fmt"
	"log"
)

// lineClearBase is the score for clearing 1..4 rows at once, before the
// per-level bonus.
var lineClearBase = [...]int{0, 100, 300, 500, 800}

// LineClearPoints returns the points for clearing fullLines rows at level.
// Zero or negative counts score nothing; counts above four score as four.
func LineClearPoints(fullLines, level int) int {
	if fullLines <= 0 {
		return 0
	}
	fullLines = min(fullLines, len(lineClearBase)-1)
	return lineClearBase[fullLines] + 100*level
}

// CalculateScore adds the points for a clear of fullLines rows at the current level
func (e *GameEngine) CalculateScore(fullLines int) {
	e.state.Score += LineClearPoints(fullLines, e.state.Level)
}

// UpdateCompletedRows adds fullLines toward the next level. A negative value
// resets the counter to zero.
func (e *GameEngine) UpdateCompletedRows(fullLines int) {
	if fullLines >= 0 {
		e.state.CompletedRows += fullLines
	} else {
		e.state.CompletedRows = 0
	}
}

// UpdateLevel raises the level by one when fullLinesTotal reaches
// LinesPerLevel, carrying the remainder into CompletedRows. Below the
// threshold nothing changes.
func (e *GameEngine) UpdateLevel(fullLinesTotal int) {
	if fullLinesTotal < LinesPerLevel {
		return
	}
	e.state.Level++
	e.state.CompletedRows = fullLinesTotal % LinesPerLevel
	e.renderer.UpdateLabel(LabelLevel, e.state.Level)
}

// UpdateScore publishes the score, applies any pending level-up and
// recomputes the tick speed from the level.
func (e *GameEngine) UpdateScore() {
	e.renderer.UpdateLabel(LabelScore, e.state.Score)
	e.UpdateLevel(e.state.CompletedRows)
	e.state.GameSpeed = e.config.SpeedForLevel(e.state.Level)
	e.renderer.UpdateLabel(LabelLines, e.state.TotalLines)
}

// GameOver ends the game, switches the music, shows the end screen and
// records a new high score. Calling it again has no effect.
func (e *GameEngine) GameOver() {
	if e.state.IsGameOver {
		return
	}
	e.state.IsGameOver = true
	e.state.Status = StatusGameOver
	e.state.Message = fmt.Sprintf("Game over! Final score: %d", e.state.Score)

	e.audio.StopBackgroundMusic()
	e.audio.PlayGameOverMusic()
	e.renderer.ShowGameOver(e.state.Score)
	e.updateHighScore()
}

// updateHighScore writes the final score when nothing is stored yet or it
// strictly beats the stored value.
func (e *GameEngine) updateHighScore() {
	if e.scores == nil {
		if e.state.Score > e.state.HighScore {
			e.state.HighScore = e.state.Score
		}
		return
	}

	stored, ok, err := e.scores.Read()
	if err != nil {
		log.Printf("Warning: failed to read high score: %v", err)
		return
	}
	if ok && e.state.Score <= stored {
		e.state.HighScore = stored
		return
	}

	if err := e.scores.Write(e.state.Score); err != nil {
		log.Printf("Warning: failed to write high score %d: %v", e.state.Score, err)
		return
	}
	e.state.HighScore = e.state.Score
	e.state.Message = fmt.Sprintf("Game over! New high score: %d", e.state.Score)
	e.renderer.UpdateLabel(LabelHighScore, e.state.Score)
}
