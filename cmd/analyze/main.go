// Command analyze prints quick, human-readable heuristics about the
// configuration files in the project's configs directory: board size, the
// speed curve by level, where it reaches its floor and how long a piece
// takes to fall the whole board along the way.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wricardo/blockfall/game/config"
	"github.com/wricardo/blockfall/game/engine"
)

// maxCurveRows caps the printed speed table
const maxCurveRows = 12

// CurvePoint is one level of a speed curve
type CurvePoint struct {
	Level      int
	Lines      int // cleared rows needed to reach Level
	SpeedMs    int
	BoardDrop  time.Duration // time to fall from the top row to the bottom
	FloorSpeed bool
}

// SpeedCurve returns the curve from level 1 until the floor speed, or
// maxLevel levels when the floor is never reached.
func SpeedCurve(c *engine.GameConfig, maxLevel int) []CurvePoint {
	last := c.FloorLevel()
	if last == 0 || last > maxLevel {
		last = maxLevel
	}

	points := make([]CurvePoint, 0, last)
	for level := 1; level <= last; level++ {
		speed := c.SpeedForLevel(level)
		points = append(points, CurvePoint{
			Level:      level,
			Lines:      (level - 1) * engine.LinesPerLevel,
			SpeedMs:    speed,
			BoardDrop:  time.Duration(c.Rows*speed) * time.Millisecond,
			FloorSpeed: speed == c.MinSpeed,
		})
	}
	return points
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := analyzeDir(os.Stdout, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func analyzeDir(w io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	for _, info := range infos {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		c, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "Error loading config: %v\n", err)
			continue
		}
		analyzeConfig(w, c)
	}
	return nil
}

func analyzeConfig(w io.Writer, c *engine.GameConfig) {
	fmt.Fprintf(w, "Name: %s\n", c.Name)
	fmt.Fprintf(w, "Board: %d rows x %d columns\n", c.Rows, c.Columns)
	fmt.Fprintf(w, "Start speed: %dms, floor %dms, step %dms per level\n", c.InitialSpeed, c.MinSpeed, c.SpeedStep)

	floor := c.FloorLevel()
	if floor == 0 {
		fmt.Fprintf(w, "⚠️  Speed never reaches the %dms floor\n", c.MinSpeed)
	} else {
		fmt.Fprintf(w, "Floor reached at level %d after %d cleared rows\n", floor, (floor-1)*engine.LinesPerLevel)
	}

	curve := SpeedCurve(c, maxCurveRows)
	fmt.Fprintf(w, "%6s %6s %8s %10s\n", "level", "rows", "speed", "board drop")
	for _, p := range curve {
		marker := ""
		if p.FloorSpeed {
			marker = " (floor)"
		}
		fmt.Fprintf(w, "%6d %6d %6dms %10s%s\n", p.Level, p.Lines, p.SpeedMs, p.BoardDrop, marker)
	}
	if floor > maxCurveRows {
		fmt.Fprintf(w, "   ... %d more levels\n", floor-maxCurveRows)
	}
}
