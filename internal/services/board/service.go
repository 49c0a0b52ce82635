// Package board applies single moves to a board under a variant's rules.
// Everything here is a pure function of its arguments.
package board

import (
	"fmt"

	"github.com/mcoot/gomoku-go/internal/model"
)

// winCheckThreshold is the stone count below which nobody can have five in a row
const winCheckThreshold = 2*model.WinLength - 2

// ApplyMove places piece on cell and returns the resulting board.
// The input board is never modified.
func ApplyMove(b model.Board, cell model.Cell, piece model.Piece, v model.Variant) (model.Board, error) {
	if b.IsOver() {
		return b, model.ErrGameAlreadyOver
	}
	if !cell.InBounds(v.BoardDim) {
		return b, fmt.Errorf("%w: %s on %dx%d", model.ErrOutOfBounds, cell, v.BoardDim, v.BoardDim)
	}
	if piece != b.Piece {
		return b, fmt.Errorf("%w: %s to move, got %s", model.ErrWrongPiece, b.Piece, piece)
	}
	if _, occupied := b.PieceAt(cell); occupied {
		return b, model.ErrPositionOccupied
	}

	switch b.Phase {
	case model.PhaseOpen:
		// A swap opening waits for the side decision before normal play starts
		if v.OpeningRule == model.OpeningSwap {
			return b.With(cell, piece, model.PhaseOpen, piece.Other()), nil
		}
		return b.With(cell, piece, model.PhaseRun, piece.Other()), nil

	case model.PhaseRun:
		next := b.With(cell, piece, model.PhaseRun, piece.Other())
		if IsWin(next.Moves, cell, v) {
			return next.Retag(model.PhaseWin, piece), nil
		}
		if IsDraw(next.Moves, v) {
			return next.Retag(model.PhaseDraw, ""), nil
		}
		return next, nil
	}

	return b, fmt.Errorf("%w: unknown phase %q", model.ErrMalformedBoard, b.Phase)
}

// IsWin reports whether the stone on cell is part of a line of at least WinLength
func IsWin(moves model.Moves, cell model.Cell, v model.Variant) bool {
	if len(moves) < winCheckThreshold {
		return false
	}
	piece, ok := moves[cell]
	if !ok {
		return false
	}
	for _, axis := range model.Axes {
		forward := countRun(moves, cell, axis, piece, v.BoardDim)
		backward := countRun(moves, cell, axis.Opposite(), piece, v.BoardDim)
		if backward+1+forward >= model.WinLength {
			return true
		}
	}
	return false
}

// IsDraw reports whether every intersection is taken
func IsDraw(moves model.Moves, v model.Variant) bool {
	return len(moves) == v.Cells()
}

// CanPlayOn reports whether the side to move may place a stone on cell
func CanPlayOn(b model.Board, cell model.Cell, v model.Variant) bool {
	if b.IsOver() || !cell.InBounds(v.BoardDim) {
		return false
	}
	if _, occupied := b.PieceAt(cell); occupied {
		return false
	}

	switch v.PlacementRule {
	case model.PlacementThreeAndThree:
		return countOpenThrees(b.Moves, cell, b.Piece, v.BoardDim) < 2
	default:
		return true
	}
}

// countOpenThrees counts the axes on which placing piece at cell would leave a run
// of exactly three own stones with neither end blocked by the opponent or the edge
func countOpenThrees(moves model.Moves, cell model.Cell, piece model.Piece, dim int) int {
	open := 0
	for _, axis := range model.Axes {
		back := axis.Opposite()
		forward := countRun(moves, cell, axis, piece, dim)
		backward := countRun(moves, cell, back, piece, dim)
		if forward+1+backward != 3 {
			continue
		}
		if flankOpen(moves, cell, axis, forward+1, piece, dim) &&
			flankOpen(moves, cell, back, backward+1, piece, dim) {
			open++
		}
	}
	return open
}

// flankOpen reports whether the cell dist steps from c along d is on the board
// and not held by the opponent
func flankOpen(moves model.Moves, c model.Cell, d model.Direction, dist int, piece model.Piece, dim int) bool {
	at := model.Cell{Row: c.Row + d.DRow*dist, Col: c.Col + d.DCol*dist}
	if !at.InBounds(dim) {
		return false
	}
	p, ok := moves[at]
	return !ok || p != piece.Other()
}

// countRun counts consecutive stones of piece starting next to c and moving along d
func countRun(moves model.Moves, c model.Cell, d model.Direction, piece model.Piece, dim int) int {
	n := 0
	for at := c.Step(d); at.InBounds(dim); at = at.Step(d) {
		if moves[at] != piece {
			break
		}
		n++
	}
	return n
}
