package model

import "time"

// MatchmakingEntryID uniquely identifies a matchmaking entry
type MatchmakingEntryID string

// MatchmakingStatus tracks whether an entry has been paired
type MatchmakingStatus string

const (
	MatchmakingPending MatchmakingStatus = "PENDING"
	MatchmakingMatched MatchmakingStatus = "MATCHED"
)

// MatchmakingEntry is a user's intent to be paired into a game
type MatchmakingEntry struct {
	ID        MatchmakingEntryID
	UserID    PlayerID
	Variant   VariantName
	Status    MatchmakingStatus
	GameID    GameID // empty until matched
	CreatedAt time.Time
}

// MatchmakingRequest is the caller's side of a pairing attempt
type MatchmakingRequest struct {
	UserID  PlayerID
	Variant Variant

	// EntryID and CreatedAt are used if the caller ends up enqueued
	EntryID   MatchmakingEntryID
	CreatedAt time.Time
}

// MatchmakingOutcome is the result of a pairing attempt: either Game is set
// (paired with Entry, now MATCHED) or Entry is the caller's new PENDING entry.
type MatchmakingOutcome struct {
	Game  *Game
	Entry MatchmakingEntry
}

// Matched returns true if the attempt produced a game
func (o MatchmakingOutcome) Matched() bool {
	return o.Game != nil
}
