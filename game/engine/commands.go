package engine

import (
	"fmt"
	"strings"
)

// Command is a discrete player input
type Command string

const (
	MoveLeft  Command = "left"
	MoveRight Command = "right"
	MoveDown  Command = "down"
	Rotate    Command = "rotate"
)

// AllCommands lists the accepted player inputs
var AllCommands = []Command{MoveLeft, MoveRight, MoveDown, Rotate}

// ParseCommand maps a user-supplied string to a Command. A few common
// aliases are accepted.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "moveleft":
		return MoveLeft, nil
	case "right", "r", "moveright":
		return MoveRight, nil
	case "down", "d", "movedown":
		return MoveDown, nil
	case "rotate", "up", "cw", "space":
		return Rotate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
	}
}

// Apply routes a command to RequestMove or RequestRotate. It reports whether
// the active piece moved.
func (e *GameEngine) Apply(cmd Command) bool {
	switch cmd {
	case MoveLeft:
		return e.RequestMove(Left)
	case MoveRight:
		return e.RequestMove(Right)
	case MoveDown:
		return e.RequestMove(Down)
	case Rotate:
		return e.RequestRotate()
	default:
		return false
	}
}
