package request

// CreatePlayerRequest is the request body for registering a player.
// ID is optional; one is generated when empty.
type CreatePlayerRequest struct {
	ID          string `json:"id,omitempty"`
	DisplayName string `json:"display_name"`
}

// CreateGameRequest is the request body for starting a game directly
type CreateGameRequest struct {
	PlayerBlack string `json:"player_black"`
	PlayerWhite string `json:"player_white"`
	Variant     string `json:"variant"`
}

// PlayRoundRequest is the request body for a round. Cell is ignored
// while the game waits for the swap decision.
type PlayRoundRequest struct {
	Cell        string `json:"cell,omitempty"`
	WantsToSwap bool   `json:"wants_to_swap,omitempty"`
}

// MatchmakingRequest is the request body for entering matchmaking
type MatchmakingRequest struct {
	Variant string `json:"variant"`
}
