package domain

import "fmt"

// Immutable grid coordinate. Comparable, so it can be used as a map key.
type Coordinate struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coordinate) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Less orders coordinates by x, then y.
func (c Coordinate) Less(o Coordinate) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// Compare returns -1, 0 or 1 using the same ordering as Less.
func (c Coordinate) Compare(o Coordinate) int {
	switch {
	case c.Less(o):
		return -1
	case o.Less(c):
		return 1
	default:
		return 0
	}
}

// Distance returns the Manhattan distance between two coordinates.
func Distance(a, b Coordinate) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
