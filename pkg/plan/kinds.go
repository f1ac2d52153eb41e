package plan

import "fmt"

// JointKind classifies what happens where wall endpoints meet.
type JointKind int

const (
	JointNone    JointKind = iota // collinear pass-through, no corner geometry
	JointCorner                   // two non-collinear walls
	JointTee                      // three walls
	JointCross                    // four walls
	JointOblique                  // five or more walls, no dedicated treatment
)

func (k JointKind) String() string {
	switch k {
	case JointNone:
		return "none"
	case JointCorner:
		return "corner"
	case JointTee:
		return "tee"
	case JointCross:
		return "cross"
	case JointOblique:
		return "oblique"
	default:
		return "unknown"
	}
}

// WallEnd identifies one of a wall's two endpoints.
type WallEnd int

const (
	EndStart WallEnd = iota
	EndEnd
)

func (e WallEnd) String() string {
	if e == EndStart {
		return "start"
	}
	return "end"
}

// JoinStrategy selects how junction geometry is resolved.
type JoinStrategy int

const (
	// StrategyAutomatic miters two-wall corners and butts everything else.
	StrategyAutomatic JoinStrategy = iota
	// StrategyButt uses butt joints at every junction.
	StrategyButt
	// StrategyMiter miters wherever exactly two walls meet; other
	// junctions still fall back to butt.
	StrategyMiter
)

func (s JoinStrategy) String() string {
	switch s {
	case StrategyAutomatic:
		return "automatic"
	case StrategyButt:
		return "butt"
	case StrategyMiter:
		return "miter"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a strategy name (config file, DSL keyword) to a
// JoinStrategy.
func ParseStrategy(name string) (JoinStrategy, error) {
	switch name {
	case "automatic", "auto":
		return StrategyAutomatic, nil
	case "butt":
		return StrategyButt, nil
	case "miter", "mitered":
		return StrategyMiter, nil
	}
	return StrategyAutomatic, fmt.Errorf("unknown join strategy %q, expected automatic, butt, or miter", name)
}
