package model

import (
	"fmt"
	"strconv"
)

// Cell identifies an intersection on the board
type Cell struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// maxColumns is the number of column letters available (A-Z)
const maxColumns = 26

// String returns the textual form "<rowNumber><ColumnLetter>", e.g. "14M"
func (c Cell) String() string {
	return strconv.Itoa(c.Row+1) + string(rune('A'+c.Col))
}

// InBounds returns true if the cell lies on a board of the given dimension
func (c Cell) InBounds(dim int) bool {
	return c.Row >= 0 && c.Row < dim && c.Col >= 0 && c.Col < dim
}

// Step returns the neighbouring cell in the given direction
func (c Cell) Step(d Direction) Cell {
	return Cell{Row: c.Row + d.DRow, Col: c.Col + d.DCol}
}

// ParseCell parses the textual form produced by Cell.String
func ParseCell(s string) (Cell, error) {
	if len(s) < 2 {
		return Cell{}, fmt.Errorf("%w: %q", ErrMalformedCell, s)
	}
	colChar := s[len(s)-1]
	if colChar < 'A' || colChar >= 'A'+maxColumns {
		return Cell{}, fmt.Errorf("%w: %q", ErrMalformedCell, s)
	}
	digits := s[:len(s)-1]
	if digits[0] == '0' {
		return Cell{}, fmt.Errorf("%w: %q", ErrMalformedCell, s)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Cell{}, fmt.Errorf("%w: %q", ErrMalformedCell, s)
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil || row <= 0 {
		return Cell{}, fmt.Errorf("%w: %q", ErrMalformedCell, s)
	}
	return Cell{Row: row - 1, Col: int(colChar - 'A')}, nil
}

// Direction is a unit step between neighbouring cells
type Direction struct {
	DRow int
	DCol int
}

// Opposite returns the direction pointing the other way
func (d Direction) Opposite() Direction {
	return Direction{DRow: -d.DRow, DCol: -d.DCol}
}

// Axes are the four lines through a cell, each given by one of its two directions.
// The other direction of each axis is obtained with Opposite.
var Axes = []Direction{
	{DRow: 1, DCol: -1}, // down-left / up-right
	{DRow: 1, DCol: 1},  // down-right / up-left
	{DRow: -1, DCol: 0}, // up / down
	{DRow: 0, DCol: -1}, // left / right
}
