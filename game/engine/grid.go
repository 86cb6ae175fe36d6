package engine

import "fmt"

// Grid is the fixed-size board of landed cells. Cells is exported for
// serialization only; mutate through the methods.
type Grid struct {
	Cells [][]Cell `json:"cells"`
}

// NewGrid creates an empty rows x columns grid
func NewGrid(rows, columns int) *Grid {
	g := &Grid{Cells: make([][]Cell, rows)}
	for i := range g.Cells {
		g.Cells[i] = make([]Cell, columns)
	}
	return g
}

// Rows returns the number of rows
func (g *Grid) Rows() int {
	return len(g.Cells)
}

// Columns returns the number of columns
func (g *Grid) Columns() int {
	if len(g.Cells) == 0 {
		return 0
	}
	return len(g.Cells[0])
}

// Reset empties every cell
func (g *Grid) Reset() {
	for r := range g.Cells {
		for c := range g.Cells[r] {
			g.Cells[r][c] = Cell{}
		}
	}
}

// InBounds reports whether coord addresses a cell of the grid
func (g *Grid) InBounds(coord Coord) bool {
	return coord.Row >= 0 && coord.Row < g.Rows() && coord.Col >= 0 && coord.Col < g.Columns()
}

// IsOccupied reports whether the cell at coord is occupied
func (g *Grid) IsOccupied(coord Coord) (bool, error) {
	if !g.InBounds(coord) {
		return false, fmt.Errorf("%w: (%d,%d) in %dx%d grid", ErrOutOfBounds, coord.Row, coord.Col, g.Rows(), g.Columns())
	}
	return g.Cells[coord.Row][coord.Col].Occupied, nil
}

// Occupy marks every coordinate as occupied by shape. Nothing is written
// unless all coordinates are in bounds.
func (g *Grid) Occupy(shape Shape, coords []Coord) error {
	for _, coord := range coords {
		if !g.InBounds(coord) {
			return fmt.Errorf("%w: (%d,%d) in %dx%d grid", ErrOutOfBounds, coord.Row, coord.Col, g.Rows(), g.Columns())
		}
	}
	for _, coord := range coords {
		g.Cells[coord.Row][coord.Col] = Cell{Occupied: true, Shape: shape}
	}
	return nil
}

// FindFullRows returns the ascending indices of rows where every cell is occupied
func (g *Grid) FindFullRows() []int {
	var full []int
	for r, row := range g.Cells {
		if rowFull(row) {
			full = append(full, r)
		}
	}
	return full
}

func rowFull(row []Cell) bool {
	for _, cell := range row {
		if !cell.Occupied {
			return false
		}
	}
	return len(row) > 0
}

// ClearRows removes the given rows in one compaction and inserts the same
// number of empty rows at the top. Remaining rows keep their relative order,
// so the result does not depend on the order of rows.
func (g *Grid) ClearRows(rows []int) error {
	remove := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r < 0 || r >= g.Rows() {
			return fmt.Errorf("%w: row %d in %d-row grid", ErrOutOfBounds, r, g.Rows())
		}
		remove[r] = true
	}
	if len(remove) == 0 {
		return nil
	}

	kept := make([][]Cell, 0, g.Rows())
	for i := 0; i < len(remove); i++ {
		kept = append(kept, make([]Cell, g.Columns()))
	}
	for r, row := range g.Cells {
		if !remove[r] {
			kept = append(kept, row)
		}
	}
	g.Cells = kept
	return nil
}

// OccupiedCount returns the number of occupied cells
func (g *Grid) OccupiedCount() int {
	count := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.Occupied {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	c := &Grid{Cells: make([][]Cell, len(g.Cells))}
	for r, row := range g.Cells {
		c.Cells[r] = append([]Cell(nil), row...)
	}
	return c
}
