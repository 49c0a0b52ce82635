package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameCreated EventType = "game_created"
	EventRoundPlayed EventType = "round_played"
	EventGameEnded   EventType = "game_ended"
	EventMatchFound  EventType = "match_found"
	EventQueueJoined EventType = "queue_joined"
	EventQueueLeft   EventType = "queue_left"
)

// Event is published after a change has been committed
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	GameID    GameID    `json:"game_id,omitempty"`
	PlayerID  PlayerID  `json:"player_id,omitempty"` // the player who triggered the event
	Payload   any       `json:"payload,omitempty"`
}

// RoundPlayedPayload contains data for round played events
type RoundPlayedPayload struct {
	Cell    string       `json:"cell,omitempty"`
	Swapped bool         `json:"swapped,omitempty"`
	Outcome RoundOutcome `json:"outcome"`
	State   GameState    `json:"state"`
}

// GameEndedPayload contains data for game ended events
type GameEndedPayload struct {
	State  GameState `json:"state"`
	Winner PlayerID  `json:"winner,omitempty"`
	Reason string    `json:"reason"` // "five", "draw", "timeout" or "left"
}

// MatchFoundPayload contains data for match found events
type MatchFoundPayload struct {
	EntryID     MatchmakingEntryID `json:"entry_id"`
	PlayerBlack PlayerID           `json:"player_black"`
	PlayerWhite PlayerID           `json:"player_white"`
	Variant     VariantName        `json:"variant"`
}

// QueuePayload contains data for queue joined and left events
type QueuePayload struct {
	EntryID MatchmakingEntryID `json:"entry_id"`
	Variant VariantName        `json:"variant"`
}
