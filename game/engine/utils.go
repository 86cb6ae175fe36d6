package engine

import "strings"

// Board characters used by RenderBoard
const (
	BoardEmpty  = '.'
	BoardLanded = '#'
)

// RenderBoard draws the grid as one string per row: '.' for empty cells, '#'
// for landed cells and the shape letter for the active piece. Active cells
// that overlap landed ones (a game-over spawn) are not drawn.
func RenderBoard(state *GameState) []string {
	if state == nil || state.Grid == nil {
		return nil
	}
	rows := make([][]byte, state.Grid.Rows())
	for r, row := range state.Grid.Cells {
		rows[r] = make([]byte, len(row))
		for c, cell := range row {
			if cell.Occupied {
				rows[r][c] = BoardLanded
			} else {
				rows[r][c] = BoardEmpty
			}
		}
	}

	if state.Active != nil && !state.IsGameOver {
		for _, coord := range state.Active.Cells() {
			if state.Grid.InBounds(coord) && rows[coord.Row][coord.Col] == BoardEmpty {
				rows[coord.Row][coord.Col] = state.Active.Name[0]
			}
		}
	}

	board := make([]string, len(rows))
	for i, row := range rows {
		board[i] = string(row)
	}
	return board
}

// PreviewPiece draws a piece inside its own bounding box, for "next piece"
// displays.
func PreviewPiece(p *Piece) []string {
	if p == nil || len(p.Offsets) == 0 {
		return nil
	}
	minR, minC := p.Offsets[0].Row, p.Offsets[0].Col
	maxR, maxC := minR, minC
	for _, o := range p.Offsets {
		minR, maxR = min(minR, o.Row), max(maxR, o.Row)
		minC, maxC = min(minC, o.Col), max(maxC, o.Col)
	}

	lines := make([][]byte, maxR-minR+1)
	for i := range lines {
		lines[i] = []byte(strings.Repeat(string(BoardEmpty), maxC-minC+1))
	}
	for _, o := range p.Offsets {
		lines[o.Row-minR][o.Col-minC] = p.Name[0]
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out
}
