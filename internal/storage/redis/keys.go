package redis

import (
	"fmt"

	"github.com/mcoot/gomoku-go/internal/model"
)

// Key prefix for all gomoku data
const keyPrefix = "gomoku"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// statsKey returns the Redis key for the HASH of a player's statistics
func statsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the SET of all player IDs
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the ZSET of all games by creation time
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// playerGamesIndexKey returns the Redis key for the ZSET of a player's games
func playerGamesIndexKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_games:%s", keyPrefix, id)
}

// entryKey returns the Redis key for a MatchmakingEntry
func entryKey(id model.MatchmakingEntryID) string {
	return fmt.Sprintf("%s:mm:entry:%s", keyPrefix, id)
}

// pendingQueueKey returns the Redis key for the ZSET of pending entries of a variant
func pendingQueueKey(variant model.VariantName) string {
	return fmt.Sprintf("%s:mm:pending:%s", keyPrefix, variant)
}

// userPendingKey returns the Redis key holding a user's pending entry ID
func userPendingKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:mm:user_pending:%s", keyPrefix, id)
}
