package board

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-go/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	standard model.Variant
	swap     model.Variant
	renju    model.Variant
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	var err error
	s.standard, err = model.LookupVariant("STANDARD")
	s.Require().NoError(err)
	s.swap, err = model.LookupVariant("SWAP")
	s.Require().NoError(err)
	s.renju, err = model.LookupVariant("RENJU")
	s.Require().NoError(err)
}

// play applies alternating moves starting from b, failing the test on any error
func (s *ServiceSuite) play(b model.Board, v model.Variant, cells ...model.Cell) model.Board {
	for _, c := range cells {
		next, err := ApplyMove(b, c, b.Piece, v)
		s.Require().NoError(err, "move %s", c)
		b = next
	}
	return b
}

func cell(row, col int) model.Cell {
	return model.Cell{Row: row, Col: col}
}

// ApplyMove tests

func (s *ServiceSuite) TestFirstMoveStandardOpeningStartsRunning() {
	b, err := ApplyMove(model.NewOpenBoard(model.PieceBlack), cell(7, 7), model.PieceBlack, s.standard)
	s.Require().NoError(err)

	s.Equal(model.PhaseRun, b.Phase)
	s.Equal(model.PieceWhite, b.Piece)
	s.Equal(1, b.Count())
}

func (s *ServiceSuite) TestFirstMoveSwapOpeningStaysOpen() {
	b, err := ApplyMove(model.NewOpenBoard(model.PieceBlack), cell(7, 7), model.PieceBlack, s.swap)
	s.Require().NoError(err)

	s.Equal(model.PhaseOpen, b.Phase)
	s.Equal(model.PieceWhite, b.Piece)
}

func (s *ServiceSuite) TestRunAlternatesTurn() {
	b := s.play(model.NewRunBoard(model.PieceBlack), s.standard, cell(0, 0), cell(1, 1))

	s.Equal(model.PhaseRun, b.Phase)
	s.Equal(model.PieceBlack, b.Piece)
	s.Equal(model.PieceBlack, b.Moves[cell(0, 0)])
	s.Equal(model.PieceWhite, b.Moves[cell(1, 1)])
}

func (s *ServiceSuite) TestOccupiedCellIsRejectedAndBoardUnchanged() {
	b := s.play(model.NewRunBoard(model.PieceBlack), s.standard, cell(3, 3))

	_, err := ApplyMove(b, cell(3, 3), model.PieceWhite, s.standard)
	s.ErrorIs(err, model.ErrPositionOccupied)
	s.Equal(model.PieceBlack, b.Moves[cell(3, 3)])
	s.Equal(1, b.Count())
}

func (s *ServiceSuite) TestApplyMoveDoesNotMutateInput() {
	before := model.NewRunBoard(model.PieceBlack)

	_, err := ApplyMove(before, cell(0, 0), model.PieceBlack, s.standard)
	s.Require().NoError(err)
	s.Equal(0, before.Count())
}

func (s *ServiceSuite) TestWrongPieceIsRejected() {
	_, err := ApplyMove(model.NewRunBoard(model.PieceBlack), cell(0, 0), model.PieceWhite, s.standard)
	s.ErrorIs(err, model.ErrWrongPiece)
}

func (s *ServiceSuite) TestOutOfBoundsIsRejected() {
	_, err := ApplyMove(model.NewRunBoard(model.PieceBlack), cell(15, 0), model.PieceBlack, s.standard)
	s.ErrorIs(err, model.ErrOutOfBounds)

	_, err = ApplyMove(model.NewRunBoard(model.PieceBlack), cell(0, -1), model.PieceBlack, s.standard)
	s.ErrorIs(err, model.ErrOutOfBounds)
}

func (s *ServiceSuite) TestFinishedBoardsRejectEveryMove() {
	won := model.Board{Phase: model.PhaseWin, Piece: model.PieceBlack, Moves: model.Moves{cell(0, 0): model.PieceBlack}}
	drawn := model.Board{Phase: model.PhaseDraw, Moves: model.Moves{}}

	for _, b := range []model.Board{won, drawn} {
		for _, p := range []model.Piece{model.PieceBlack, model.PieceWhite} {
			_, err := ApplyMove(b, cell(5, 5), p, s.standard)
			s.ErrorIs(err, model.ErrGameAlreadyOver)
		}
	}
}

// Win detection tests

func (s *ServiceSuite) TestFiveInARowWins() {
	b := s.play(model.NewRunBoard(model.PieceBlack), s.standard,
		cell(0, 0), cell(2, 0),
		cell(0, 1), cell(2, 1),
		cell(0, 2), cell(2, 2),
		cell(0, 3), cell(2, 4),
	)
	s.Equal(model.PhaseRun, b.Phase)

	b, err := ApplyMove(b, cell(0, 4), model.PieceBlack, s.standard)
	s.Require().NoError(err)
	s.Equal(model.PhaseWin, b.Phase)
	s.Equal(model.PieceBlack, b.Piece)
	s.Equal(9, b.Count())
}

func (s *ServiceSuite) TestFiveInAColumnWins() {
	b := s.play(model.NewRunBoard(model.PieceBlack), s.standard,
		cell(10, 14), cell(0, 0),
		cell(11, 14), cell(0, 2),
		cell(12, 14), cell(0, 4),
		cell(14, 14), cell(0, 6),
	)

	// Filling the gap joins both halves of the column
	b, err := ApplyMove(b, cell(13, 14), model.PieceBlack, s.standard)
	s.Require().NoError(err)
	s.Equal(model.PhaseWin, b.Phase)
	s.Equal(model.PieceBlack, b.Piece)
}

func (s *ServiceSuite) TestDiagonalWinForWhite() {
	b := s.play(model.NewRunBoard(model.PieceBlack), s.standard,
		cell(14, 0), cell(4, 10),
		cell(14, 2), cell(5, 9),
		cell(14, 4), cell(6, 8),
		cell(14, 6), cell(7, 7),
		cell(12, 0),
	)

	b, err := ApplyMove(b, cell(8, 6), model.PieceWhite, s.standard)
	s.Require().NoError(err)
	s.Equal(model.PhaseWin, b.Phase)
	s.Equal(model.PieceWhite, b.Piece)
}

func (s *ServiceSuite) TestFourIsNotAWin() {
	moves := model.Moves{}
	for col := 0; col < 4; col++ {
		moves[cell(0, col)] = model.PieceBlack
		moves[cell(5, col*2)] = model.PieceWhite
	}
	s.False(IsWin(moves, cell(0, 3), s.standard))
}

func (s *ServiceSuite) TestLinesBrokenByOpponentDoNotWin() {
	moves := model.Moves{
		cell(0, 0): model.PieceBlack,
		cell(0, 1): model.PieceBlack,
		cell(0, 2): model.PieceWhite,
		cell(0, 3): model.PieceBlack,
		cell(0, 4): model.PieceBlack,
		cell(0, 5): model.PieceBlack,
		cell(9, 9): model.PieceWhite,
		cell(9, 7): model.PieceWhite,
	}
	s.False(IsWin(moves, cell(0, 5), s.standard))
}

// Draw detection tests

// drawPattern colours a board so no line of five exists in any direction
func drawPattern(row, col int) model.Piece {
	if (row+2*col)%4 < 2 {
		return model.PieceBlack
	}
	return model.PieceWhite
}

func (s *ServiceSuite) TestFullBoardWithoutFiveIsDraw() {
	dim := s.standard.BoardDim
	last := cell(dim-1, dim-1)

	moves := model.Moves{}
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			if c := cell(row, col); c != last {
				moves[c] = drawPattern(row, col)
			}
		}
	}
	piece := drawPattern(last.Row, last.Col)
	b := model.Board{Phase: model.PhaseRun, Piece: piece, Moves: moves}

	next, err := ApplyMove(b, last, piece, s.standard)
	s.Require().NoError(err)
	s.Equal(model.PhaseDraw, next.Phase)
	s.Equal(model.Piece(""), next.Piece)
	s.Equal(dim*dim, next.Count())

	_, err = ApplyMove(next, cell(0, 0), model.PieceBlack, s.standard)
	s.ErrorIs(err, model.ErrGameAlreadyOver)
}

// CanPlayOn tests

func (s *ServiceSuite) doubleThreeBoard() model.Board {
	return model.Board{
		Phase: model.PhaseRun,
		Piece: model.PieceBlack,
		Moves: model.Moves{
			cell(7, 5):   model.PieceBlack,
			cell(7, 6):   model.PieceBlack,
			cell(5, 7):   model.PieceBlack,
			cell(6, 7):   model.PieceBlack,
			cell(0, 0):   model.PieceWhite,
			cell(0, 14):  model.PieceWhite,
			cell(14, 0):  model.PieceWhite,
			cell(14, 14): model.PieceWhite,
		},
	}
}

func (s *ServiceSuite) TestDoubleOpenThreeRejectedUnderThreeAndThree() {
	b := s.doubleThreeBoard()

	s.False(CanPlayOn(b, cell(7, 7), s.renju))
	s.True(CanPlayOn(b, cell(7, 7), s.standard))
}

func (s *ServiceSuite) TestSingleOpenThreeAllowedUnderThreeAndThree() {
	b := s.doubleThreeBoard()
	delete(b.Moves, cell(5, 7))

	s.True(CanPlayOn(b, cell(7, 7), s.renju))
}

func (s *ServiceSuite) TestThreeBlockedByOpponentIsNotOpen() {
	b := s.doubleThreeBoard()
	b.Moves[cell(7, 4)] = model.PieceWhite

	s.True(CanPlayOn(b, cell(7, 7), s.renju))
}

func (s *ServiceSuite) TestThreeAgainstEdgeIsNotOpen() {
	b := model.Board{
		Phase: model.PhaseRun,
		Piece: model.PieceBlack,
		Moves: model.Moves{
			cell(0, 1): model.PieceBlack,
			cell(0, 2): model.PieceBlack,
			cell(1, 0): model.PieceBlack,
			cell(2, 0): model.PieceBlack,
		},
	}

	// Row 0 run is 0..2 with the edge past column 0; column 0 run is rows 0..2 with the edge past row 0
	s.True(CanPlayOn(b, cell(0, 0), s.renju))
}

func (s *ServiceSuite) TestFourIsNotAThree() {
	b := s.doubleThreeBoard()
	b.Moves[cell(7, 4)] = model.PieceBlack

	s.True(CanPlayOn(b, cell(7, 7), s.renju))
}

func (s *ServiceSuite) TestCanPlayOnOccupiedOrOutside() {
	b := s.doubleThreeBoard()

	s.False(CanPlayOn(b, cell(7, 5), s.standard))
	s.False(CanPlayOn(b, cell(-1, 3), s.standard))
	s.False(CanPlayOn(b, cell(3, 15), s.standard))
}

func (s *ServiceSuite) TestCanPlayOnFinishedBoard() {
	b := s.doubleThreeBoard().Retag(model.PhaseWin, model.PieceWhite)
	s.False(CanPlayOn(b, cell(3, 3), s.standard))
}
