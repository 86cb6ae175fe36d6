package engine

import (
	"fmt"
	"math"
)

// Piece is a shape kind placed at an origin. Absolute cells are always
// Origin + Offsets; transforms return new pieces and never touch the receiver.
type Piece struct {
	Name    Shape   `json:"name"`
	Origin  Coord   `json:"origin"`
	Offsets []Coord `json:"offsets"`
}

// shapeOffsets holds each kind in its spawn orientation, origin at the
// top-left of a 2x4 box.
var shapeOffsets = map[Shape][]Coord{
	ShapeI: {{0, 0}, {0, 1}, {0, 2}, {0, 3}},
	ShapeO: {{0, 1}, {0, 2}, {1, 1}, {1, 2}},
	ShapeT: {{0, 0}, {0, 1}, {0, 2}, {1, 1}},
	ShapeS: {{0, 1}, {0, 2}, {1, 0}, {1, 1}},
	ShapeZ: {{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	ShapeJ: {{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	ShapeL: {{0, 2}, {1, 0}, {1, 1}, {1, 2}},
}

// AllShapes lists every shape kind in a stable order
var AllShapes = []Shape{ShapeI, ShapeO, ShapeT, ShapeS, ShapeZ, ShapeJ, ShapeL}

// SpawnOrigin returns where new pieces appear in a grid with the given width
func SpawnOrigin(columns int) Coord {
	return Coord{Row: 0, Col: (columns - CellsPerPiece) / 2}
}

// NewPiece creates a piece of the given kind at the spawn position
func NewPiece(shape Shape, columns int) (Piece, error) {
	offsets, ok := shapeOffsets[shape]
	if !ok {
		return Piece{}, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
	return Piece{
		Name:    shape,
		Origin:  SpawnOrigin(columns),
		Offsets: append([]Coord(nil), offsets...),
	}, nil
}

// Cells returns the absolute coordinates of the piece
func (p Piece) Cells() []Coord {
	cells := make([]Coord, len(p.Offsets))
	for i, off := range p.Offsets {
		cells[i] = p.Origin.Add(off)
	}
	return cells
}

// Translate returns a copy shifted by the given delta
func (p Piece) Translate(dRow, dCol int) Piece {
	moved := p.Clone()
	moved.Origin = p.Origin.Add(Coord{Row: dRow, Col: dCol})
	return moved
}

// RotateClockwise returns a copy rotated 90 degrees clockwise about the
// rounded centroid of its cells. The origin stays put; offsets are rewritten.
func (p Piece) RotateClockwise() Piece {
	cells := p.Cells()
	if len(cells) == 0 {
		return p.Clone()
	}
	center := centroid(cells)

	rotated := Piece{Name: p.Name, Origin: p.Origin, Offsets: make([]Coord, len(cells))}
	for i, cell := range cells {
		rowOffset := cell.Row - center.Row
		colOffset := cell.Col - center.Col
		abs := Coord{Row: center.Row - colOffset, Col: center.Col + rowOffset}
		rotated.Offsets[i] = Coord{Row: abs.Row - p.Origin.Row, Col: abs.Col - p.Origin.Col}
	}
	return rotated
}

// Clone returns a copy that shares no memory with p
func (p Piece) Clone() Piece {
	return Piece{Name: p.Name, Origin: p.Origin, Offsets: append([]Coord(nil), p.Offsets...)}
}

// centroid averages rows and columns, rounding halves up
func centroid(cells []Coord) Coord {
	var rows, cols int
	for _, c := range cells {
		rows += c.Row
		cols += c.Col
	}
	n := float64(len(cells))
	return Coord{
		Row: int(math.Floor(float64(rows)/n + 0.5)),
		Col: int(math.Floor(float64(cols)/n + 0.5)),
	}
}
