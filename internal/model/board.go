package model

// Piece is one of the two stone colours
type Piece string

const (
	PieceBlack Piece = "BLACK"
	PieceWhite Piece = "WHITE"
)

// Other returns the opposing piece
func (p Piece) Other() Piece {
	if p == PieceBlack {
		return PieceWhite
	}
	return PieceBlack
}

// Valid returns true for BLACK and WHITE
func (p Piece) Valid() bool {
	return p == PieceBlack || p == PieceWhite
}

// Phase tags what a board is waiting for
type Phase string

const (
	PhaseOpen Phase = "Open" // first move of a swap opening, side decision pending
	PhaseRun  Phase = "Run"
	PhaseWin  Phase = "Win"
	PhaseDraw Phase = "Draw"
)

// Moves maps occupied cells to the piece placed there
type Moves map[Cell]Piece

// Board is an immutable snapshot of the stones and the phase of play.
// For Open and Run, Piece is the side to move; for Win it is the winner; for Draw it is empty.
type Board struct {
	Phase Phase
	Piece Piece
	Moves Moves
}

// NewOpenBoard returns an empty board in the opening phase
func NewOpenBoard(turn Piece) Board {
	return Board{Phase: PhaseOpen, Piece: turn, Moves: Moves{}}
}

// NewRunBoard returns an empty board in normal play
func NewRunBoard(turn Piece) Board {
	return Board{Phase: PhaseRun, Piece: turn, Moves: Moves{}}
}

// IsOver returns true once the board is won or drawn
func (b Board) IsOver() bool {
	return b.Phase == PhaseWin || b.Phase == PhaseDraw
}

// Turn returns the piece to move and whether the board still accepts moves
func (b Board) Turn() (Piece, bool) {
	if b.IsOver() {
		return "", false
	}
	return b.Piece, true
}

// PieceAt returns the piece on the cell, if any
func (b Board) PieceAt(c Cell) (Piece, bool) {
	p, ok := b.Moves[c]
	return p, ok
}

// Count returns the number of stones on the board
func (b Board) Count() int {
	return len(b.Moves)
}

// With returns a copy of the board with the cell set and the phase replaced.
// The receiver is left untouched.
func (b Board) With(c Cell, p Piece, phase Phase, piece Piece) Board {
	moves := make(Moves, len(b.Moves)+1)
	for k, v := range b.Moves {
		moves[k] = v
	}
	moves[c] = p
	return Board{Phase: phase, Piece: piece, Moves: moves}
}

// Retag returns a copy of the board with the same stones and a new phase
func (b Board) Retag(phase Phase, piece Piece) Board {
	moves := make(Moves, len(b.Moves))
	for k, v := range b.Moves {
		moves[k] = v
	}
	if phase == PhaseDraw {
		piece = ""
	}
	return Board{Phase: phase, Piece: piece, Moves: moves}
}

// Equal compares phase, piece and stones
func (b Board) Equal(other Board) bool {
	if b.Phase != other.Phase || b.Piece != other.Piece || len(b.Moves) != len(other.Moves) {
		return false
	}
	for c, p := range b.Moves {
		if other.Moves[c] != p {
			return false
		}
	}
	return true
}
