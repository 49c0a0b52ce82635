package model

import (
	"encoding/json"
	"fmt"
)

// boardJSON is the persisted and wire form of a Board:
// {"kind":"Run","piece":"WHITE","moves":{"8H":"BLACK"}}
type boardJSON struct {
	Kind  Phase            `json:"kind"`
	Piece Piece            `json:"piece"`
	Moves map[string]Piece `json:"moves"`
}

// MarshalJSON implements json.Marshaler
func (b Board) MarshalJSON() ([]byte, error) {
	moves := make(map[string]Piece, len(b.Moves))
	for c, p := range b.Moves {
		moves[c.String()] = p
	}
	piece := b.Piece
	if b.Phase == PhaseDraw {
		piece = ""
	}
	return json.Marshal(boardJSON{Kind: b.Phase, Piece: piece, Moves: moves})
}

// UnmarshalJSON implements json.Unmarshaler
func (b *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Kind {
	case PhaseOpen, PhaseRun, PhaseWin:
		if !raw.Piece.Valid() {
			return fmt.Errorf("%w: board %s has piece %q", ErrMalformedBoard, raw.Kind, raw.Piece)
		}
	case PhaseDraw:
		if raw.Piece != "" {
			return fmt.Errorf("%w: draw board has piece %q", ErrMalformedBoard, raw.Piece)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedBoard, raw.Kind)
	}

	moves := make(Moves, len(raw.Moves))
	for key, p := range raw.Moves {
		c, err := ParseCell(key)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedBoard, err)
		}
		if !p.Valid() {
			return fmt.Errorf("%w: cell %s has piece %q", ErrMalformedBoard, key, p)
		}
		moves[c] = p
	}

	*b = Board{Phase: raw.Kind, Piece: raw.Piece, Moves: moves}
	return nil
}
