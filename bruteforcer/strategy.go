package main

import (
	"github.com/wricardo/blockfall/game/engine"
)

// Placement score weights: lower stacks, more cleared rows, fewer covered
// holes and a flatter surface are better.
const (
	weightHeight    = -0.51
	weightLines     = 0.76
	weightHoles     = -0.36
	weightBumpiness = -0.18
)

// Placement is one way to bring the active piece down
type Placement struct {
	Rotations int // clockwise turns, applied first
	Shift     int // columns to move after rotating, negative is left
	Drop      int // rows fallen before the piece rests
	Lines     int // rows the landing clears
	Score     float64
}

// Commands returns the command words that realise the placement. The last
// "down" lands the piece.
func (p Placement) Commands() []string {
	var cmds []string
	for i := 0; i < p.Rotations; i++ {
		cmds = append(cmds, "rotate")
	}
	step, n := "right", p.Shift
	if n < 0 {
		step, n = "left", -n
	}
	for i := 0; i < n; i++ {
		cmds = append(cmds, step)
	}
	for i := 0; i <= p.Drop; i++ {
		cmds = append(cmds, "down")
	}
	return cmds
}

// BestPlacement tries every reachable rotation and column for active and
// returns the best scoring one. ok is false when the piece cannot move at
// all, which only happens on a full board.
func BestPlacement(grid *engine.Grid, active engine.Piece) (best Placement, ok bool) {
	consider := func(p engine.Piece, rotations, shift int) {
		drop := 0
		for grid.Fits(p.Translate(drop+1, 0)) {
			drop++
		}
		landed := p.Translate(drop, 0)

		after := grid.Clone()
		if err := after.Occupy(landed.Name, landed.Cells()); err != nil {
			return
		}
		full := after.FindFullRows()
		if err := after.ClearRows(full); err != nil {
			return
		}

		height, holes, bumpiness := surface(after)
		score := weightHeight*float64(height) +
			weightLines*float64(len(full)) +
			weightHoles*float64(holes) +
			weightBumpiness*float64(bumpiness)

		if !ok || score > best.Score {
			best = Placement{Rotations: rotations, Shift: shift, Drop: drop, Lines: len(full), Score: score}
			ok = true
		}
	}

	if !grid.Fits(active) {
		return Placement{}, false
	}

	piece := active
	for rotations := 0; rotations < 4; rotations++ {
		if rotations > 0 {
			turned := piece.RotateClockwise()
			if !grid.Fits(turned) {
				break
			}
			piece = turned
		}

		consider(piece, rotations, 0)
		for _, dir := range []int{-1, 1} {
			p := piece
			for shift := dir; ; shift += dir {
				next := p.Translate(0, dir)
				if !grid.Fits(next) {
					break
				}
				p = next
				consider(p, rotations, shift)
			}
		}
	}
	return best, ok
}

// surface measures a grid: the summed column heights, empty cells under
// the top of their column, and the summed height difference of neighbours.
func surface(grid *engine.Grid) (height, holes, bumpiness int) {
	rows, cols := grid.Rows(), grid.Columns()
	heights := make([]int, cols)

	for c := 0; c < cols; c++ {
		top := rows
		for r := 0; r < rows; r++ {
			if grid.Cells[r][c].Occupied {
				if top == rows {
					top = r
				}
			} else if top < rows {
				holes++
			}
		}
		heights[c] = rows - top
		height += heights[c]
	}

	for c := 0; c+1 < cols; c++ {
		d := heights[c] - heights[c+1]
		if d < 0 {
			d = -d
		}
		bumpiness += d
	}
	return height, holes, bumpiness
}
