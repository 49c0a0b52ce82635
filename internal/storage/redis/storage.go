package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// Statistics hash fields
const (
	fieldGamesPlayed = "games_played"
	fieldWins        = "wins"
	fieldLosses      = "losses"
	fieldDraws       = "draws"
	fieldPoints      = "points"
)

// Storage is a Redis-backed implementation of the storage interface.
// Multi-key writes use WATCH/MULTI so that racing writers fail instead of interleaving.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, playerKey(player.ID), data, 0)
		pipe.HSetNX(ctx, statsKey(player.ID), fieldGamesPlayed, 0)
		pipe.SAdd(ctx, playersIndexKey(), string(player.ID))
		return nil
	})
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, gameKey(game.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("game %s: %w", game.ID, model.ErrConflict)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.indexGame(ctx, pipe, game)
		return nil
	})
	return err
}

// indexGame queues the listing index writes for a new game
func (s *Storage) indexGame(ctx context.Context, pipe redis.Pipeliner, game *model.Game) {
	member := redis.Z{Score: float64(game.CreatedAt.UnixMilli()), Member: string(game.ID)}
	pipe.ZAdd(ctx, gamesIndexKey(), member)
	pipe.ZAdd(ctx, playerGamesIndexKey(game.PlayerBlack), member)
	pipe.ZAdd(ctx, playerGamesIndexKey(game.PlayerWhite), member)
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return getGame(ctx, s.client, id)
}

func getGame(ctx context.Context, c redis.Cmdable, id model.GameID) (*model.Game, error) {
	data, err := c.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	return s.listIndexedGames(ctx, gamesIndexKey())
}

func (s *Storage) ListGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	return s.listIndexedGames(ctx, playerGamesIndexKey(playerID))
}

func (s *Storage) listIndexedGames(ctx context.Context, indexKey string) ([]*model.Game, error) {
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*model.Game, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var game model.Game
		if err := json.Unmarshal([]byte(raw), &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	storage.SortGamesNewestFirst(games)
	return games, nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateGameFunc) (*model.Game, error) {
	var result *model.Game

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getGame(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			result = current
			return nil
		}

		saved := next.Clone()
		saved.Version = current.Version + 1
		data, err := json.Marshal(&saved)
		if err != nil {
			return err
		}

		var gameResult *model.GameResult
		if !current.State.IsEnded() && saved.State.IsEnded() {
			gameResult = model.ResultOf(&saved)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(id), data, 0)
			if gameResult != nil {
				s.applyResult(ctx, pipe, *gameResult)
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = &saved
		return nil
	}, gameKey(id))

	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("game %s: %w", id, model.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyResult queues the statistics increments for both players of a finished game
func (s *Storage) applyResult(ctx context.Context, pipe redis.Pipeliner, result model.GameResult) {
	for _, id := range []model.PlayerID{result.Black, result.White} {
		delta := model.PlayerStats{PlayerID: id}
		delta.Apply(result)

		key := statsKey(id)
		pipe.HIncrBy(ctx, key, fieldGamesPlayed, int64(delta.GamesPlayed))
		pipe.HIncrBy(ctx, key, fieldWins, int64(delta.Wins))
		pipe.HIncrBy(ctx, key, fieldLosses, int64(delta.Losses))
		pipe.HIncrBy(ctx, key, fieldDraws, int64(delta.Draws))
		pipe.HIncrBy(ctx, key, fieldPoints, int64(delta.Points))
	}
}

// Matchmaking operations

func (s *Storage) Matchmake(ctx context.Context, req model.MatchmakingRequest, build storage.BuildGameFunc) (model.MatchmakingOutcome, error) {
	var outcome model.MatchmakingOutcome
	err := s.optimistic(func() error {
		var err error
		outcome, err = s.tryMatchmake(ctx, req, build)
		return err
	})
	return outcome, err
}

// tryMatchmake makes one attempt under WATCH of the variant queue and the
// caller's pending marker. A concurrent claim or enqueue aborts the EXEC.
func (s *Storage) tryMatchmake(ctx context.Context, req model.MatchmakingRequest, build storage.BuildGameFunc) (model.MatchmakingOutcome, error) {
	var outcome model.MatchmakingOutcome
	queue := pendingQueueKey(req.Variant.Name)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		ids, err := tx.ZRange(ctx, queue, 0, -1).Result()
		if err != nil {
			return err
		}

		for _, id := range ids {
			entry, err := getEntry(ctx, tx, model.MatchmakingEntryID(id))
			if errors.Is(err, model.ErrMatchDoesNotExist) {
				continue
			}
			if err != nil {
				return err
			}
			if entry.UserID == req.UserID || entry.Status != model.MatchmakingPending {
				continue
			}
			return s.claim(ctx, tx, queue, entry, build, &outcome)
		}

		queued, err := tx.Exists(ctx, userPendingKey(req.UserID)).Result()
		if err != nil {
			return err
		}
		if queued > 0 {
			return model.ErrUserAlreadyQueued
		}

		entry := model.MatchmakingEntry{
			ID:        req.EntryID,
			UserID:    req.UserID,
			Variant:   req.Variant.Name,
			Status:    model.MatchmakingPending,
			CreatedAt: req.CreatedAt,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, entryKey(entry.ID), data, 0)
			pipe.ZAdd(ctx, queue, redis.Z{Score: float64(entry.CreatedAt.UnixMilli()), Member: string(entry.ID)})
			pipe.Set(ctx, userPendingKey(entry.UserID), string(entry.ID), 0)
			return nil
		})
		if err != nil {
			return err
		}
		outcome = model.MatchmakingOutcome{Entry: entry}
		return nil
	}, queue, userPendingKey(req.UserID))

	return outcome, err
}

// claim pairs the caller with a pending entry and stores the new game in one transaction
func (s *Storage) claim(ctx context.Context, tx *redis.Tx, queue string, entry *model.MatchmakingEntry, build storage.BuildGameFunc, outcome *model.MatchmakingOutcome) error {
	game, err := build(*entry)
	if err != nil {
		return err
	}
	taken, err := tx.Exists(ctx, gameKey(game.ID)).Result()
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("game %s: %w", game.ID, model.ErrConflict)
	}

	entry.Status = model.MatchmakingMatched
	entry.GameID = game.ID
	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	gameData, err := json.Marshal(game)
	if err != nil {
		return err
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, queue, string(entry.ID))
		pipe.Del(ctx, userPendingKey(entry.UserID))
		pipe.Set(ctx, entryKey(entry.ID), entryData, s.cfg.MatchedEntryTTL)
		pipe.Set(ctx, gameKey(game.ID), gameData, 0)
		s.indexGame(ctx, pipe, game)
		return nil
	})
	if err != nil {
		return err
	}
	*outcome = model.MatchmakingOutcome{Game: game, Entry: *entry}
	return nil
}

func (s *Storage) GetMatchmakingEntry(ctx context.Context, id model.MatchmakingEntryID) (*model.MatchmakingEntry, error) {
	return getEntry(ctx, s.client, id)
}

func getEntry(ctx context.Context, c redis.Cmdable, id model.MatchmakingEntryID) (*model.MatchmakingEntry, error) {
	data, err := c.Get(ctx, entryKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchDoesNotExist
		}
		return nil, err
	}

	var entry model.MatchmakingEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Storage) DeletePendingEntry(ctx context.Context, id model.MatchmakingEntryID, userID model.PlayerID) error {
	return s.optimistic(func() error {
		return s.client.Watch(ctx, func(tx *redis.Tx) error {
			entry, err := getEntry(ctx, tx, id)
			if err != nil {
				return err
			}
			if entry.UserID != userID || entry.Status != model.MatchmakingPending {
				return model.ErrMatchDoesNotExist
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, entryKey(id))
				pipe.ZRem(ctx, pendingQueueKey(entry.Variant), string(id))
				pipe.Del(ctx, userPendingKey(userID))
				return nil
			})
			return err
		}, entryKey(id))
	})
}

// optimistic reruns fn while its transaction loses a WATCH race
func (s *Storage) optimistic(fn func() error) error {
	attempts := s.cfg.MaxTxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		err := fn()
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, model.ErrConflict)
}

// Statistics operations

func (s *Storage) GetStats(ctx context.Context, playerID model.PlayerID) (*model.PlayerStats, error) {
	known, err := s.client.SIsMember(ctx, playersIndexKey(), string(playerID)).Result()
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, model.ErrPlayerNotFound
	}

	ranked, err := s.Ranking(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, st := range ranked {
		if st.PlayerID == playerID {
			return &st, nil
		}
	}
	return nil, model.ErrPlayerNotFound
}

func (s *Storage) Ranking(ctx context.Context, limit int) ([]model.PlayerStats, error) {
	ids, err := s.client.SMembers(ctx, playersIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, statsKey(model.PlayerID(id)))
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, err
		}
	}

	stats := make([]model.PlayerStats, len(ids))
	for i, id := range ids {
		st, err := parseStats(model.PlayerID(id), cmds[i].Val())
		if err != nil {
			return nil, err
		}
		stats[i] = st
	}
	return storage.RankStats(stats, limit), nil
}

func parseStats(id model.PlayerID, fields map[string]string) (model.PlayerStats, error) {
	st := model.PlayerStats{PlayerID: id}
	for field, dst := range map[string]*int{
		fieldGamesPlayed: &st.GamesPlayed,
		fieldWins:        &st.Wins,
		fieldLosses:      &st.Losses,
		fieldDraws:       &st.Draws,
		fieldPoints:      &st.Points,
	} {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return st, fmt.Errorf("stats %s field %s: %w", id, field, err)
		}
		*dst = n
	}
	return st, nil
}
