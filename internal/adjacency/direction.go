// Package adjacency accumulates directional tile co-occurrence counts from
// decoded map grids and serves ranked neighbor queries over them.
package adjacency

import "fmt"

// Direction is one of the four cardinal neighbor directions.
type Direction string

const (
	Right  Direction = "right"
	Bottom Direction = "bottom"
	Left   Direction = "left"
	Top    Direction = "top"
)

// Directions lists all directions in canonical order.
var Directions = []Direction{Right, Bottom, Left, Top}

// Opposite returns the inverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Right:
		return Left
	case Left:
		return Right
	case Bottom:
		return Top
	case Top:
		return Bottom
	}
	return d
}

// Offset returns the (row, col) delta for the direction.
func (d Direction) Offset() (int, int) {
	switch d {
	case Right:
		return 0, 1
	case Bottom:
		return 1, 0
	case Left:
		return 0, -1
	case Top:
		return -1, 0
	}
	return 0, 0
}

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Right, Bottom, Left, Top:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown direction %q (want right, bottom, left or top)", s)
}
