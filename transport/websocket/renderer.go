package websocket

import "github.com/wricardo/blockfall/game/engine"

// Renderer events
const (
	EventLabel    = "label"
	EventNext     = "next_piece"
	EventGameOver = "game_over"
)

// LabelUpdate is the payload of a label event
type LabelUpdate struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Renderer turns engine display calls into events for one session's
// clients. Board frames travel as state updates, so the drawing calls that
// only touch cells are ignored.
type Renderer struct {
	hub       *Hub
	sessionID string
}

// NewRenderer returns a Renderer publishing to sessionID's clients
func NewRenderer(hub *Hub, sessionID string) *Renderer {
	return &Renderer{hub: hub, sessionID: sessionID}
}

func (r *Renderer) DrawPiece(engine.Piece)  {}
func (r *Renderer) ClearPieceDisplay()      {}
func (r *Renderer) ClearAllLandedDisplay()  {}
func (r *Renderer) DrawLanded(*engine.Grid) {}

func (r *Renderer) DrawNextPiece(p engine.Piece) {
	r.hub.BroadcastEvent(r.sessionID, EventNext, map[string]interface{}{
		"shape":   p.Name,
		"preview": engine.PreviewPiece(&p),
	})
}

func (r *Renderer) UpdateLabel(name string, value int) {
	r.hub.BroadcastEvent(r.sessionID, EventLabel, LabelUpdate{Name: name, Value: value})
}

func (r *Renderer) ShowGameOver(finalScore int) {
	r.hub.BroadcastEvent(r.sessionID, EventGameOver, map[string]int{"final_score": finalScore})
}
