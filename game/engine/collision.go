package engine

// IsValid reports whether every coordinate of shape is inside the grid and
// lands on an empty cell. All movement goes through here before committing.
func IsValid(shape []Coord, grid *Grid) bool {
	for _, coord := range shape {
		if !grid.InBounds(coord) {
			return false
		}
		if grid.Cells[coord.Row][coord.Col].Occupied {
			return false
		}
	}
	return true
}

// Fits reports whether the piece can occupy its current position
func (g *Grid) Fits(p Piece) bool {
	return IsValid(p.Cells(), g)
}
