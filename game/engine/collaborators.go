package engine

import "log"

// Label names passed to Renderer.UpdateLabel
const (
	LabelScore     = "score"
	LabelLevel     = "level"
	LabelHighScore = "highscore"
	LabelLines     = "lines"
)

// Renderer receives every user-visible state change. Implementations must
// not call back into the engine.
type Renderer interface {
	DrawPiece(p Piece)
	ClearPieceDisplay()
	ClearAllLandedDisplay()
	DrawLanded(grid *Grid)
	DrawNextPiece(p Piece)
	UpdateLabel(name string, value int)
	ShowGameOver(finalScore int)
}

// AudioController plays and stops the game's music
type AudioController interface {
	PlayBackgroundMusic()
	StopBackgroundMusic()
	PlayGameOverMusic()
}

// HighScoreStore persists the single best score. Read reports ok=false
// when nothing has been stored yet.
type HighScoreStore interface {
	Read() (score int, ok bool, err error)
	Write(score int) error
}

// InputSource delivers player commands
type InputSource interface {
	Commands() <-chan Command
}

// NopRenderer discards all drawing calls
type NopRenderer struct{}

func (NopRenderer) DrawPiece(Piece)         {}
func (NopRenderer) ClearPieceDisplay()      {}
func (NopRenderer) ClearAllLandedDisplay()  {}
func (NopRenderer) DrawLanded(*Grid)        {}
func (NopRenderer) DrawNextPiece(Piece)     {}
func (NopRenderer) UpdateLabel(string, int) {}
func (NopRenderer) ShowGameOver(int)        {}

// NopAudio is a silent AudioController
type NopAudio struct{}

func (NopAudio) PlayBackgroundMusic() {}
func (NopAudio) StopBackgroundMusic() {}
func (NopAudio) PlayGameOverMusic()   {}

// LogAudio reports music changes to the standard logger, tagged with a
// session or game name.
type LogAudio struct {
	Name string
}

func (a LogAudio) PlayBackgroundMusic() {
	log.Printf("[AUDIO] %s: background music started", a.Name)
}

func (a LogAudio) StopBackgroundMusic() {
	log.Printf("[AUDIO] %s: background music stopped", a.Name)
}

func (a LogAudio) PlayGameOverMusic() {
	log.Printf("[AUDIO] %s: game over music", a.Name)
}

// MultiRenderer fans every call out to several renderers in order
type MultiRenderer []Renderer

func (m MultiRenderer) DrawPiece(p Piece) {
	for _, r := range m {
		r.DrawPiece(p)
	}
}

func (m MultiRenderer) ClearPieceDisplay() {
	for _, r := range m {
		r.ClearPieceDisplay()
	}
}

func (m MultiRenderer) ClearAllLandedDisplay() {
	for _, r := range m {
		r.ClearAllLandedDisplay()
	}
}

func (m MultiRenderer) DrawLanded(grid *Grid) {
	for _, r := range m {
		r.DrawLanded(grid)
	}
}

func (m MultiRenderer) DrawNextPiece(p Piece) {
	for _, r := range m {
		r.DrawNextPiece(p)
	}
}

func (m MultiRenderer) UpdateLabel(name string, value int) {
	for _, r := range m {
		r.UpdateLabel(name, value)
	}
}

func (m MultiRenderer) ShowGameOver(finalScore int) {
	for _, r := range m {
		r.ShowGameOver(finalScore)
	}
}

// LogRenderer writes label changes and game over to the standard logger.
// Cell drawing is not logged.
type LogRenderer struct {
	Name string
}

func (LogRenderer) DrawPiece(Piece)        {}
func (LogRenderer) ClearPieceDisplay()     {}
func (LogRenderer) ClearAllLandedDisplay() {}
func (LogRenderer) DrawLanded(*Grid)       {}

func (r LogRenderer) DrawNextPiece(p Piece) {
	log.Printf("[GAME] %s: next %s", r.Name, p.Name)
}

func (r LogRenderer) UpdateLabel(name string, value int) {
	log.Printf("[GAME] %s: %s=%d", r.Name, name, value)
}

func (r LogRenderer) ShowGameOver(finalScore int) {
	log.Printf("[GAME] %s: game over, final score %d", r.Name, finalScore)
}
