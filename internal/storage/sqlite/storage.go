// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/storage/sqlite/migrations"
)

// Storage persists players, games and the matchmaking queue in SQLite.
// Writes run in IMMEDIATE transactions, so racing writers are serialized by the database.
type Storage struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite database file and applies embedded migrations
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer connection keeps IMMEDIATE transactions from spinning on SQLITE_BUSY
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO players (id, display_name, created_at) VALUES (?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name`,
			string(player.ID), player.DisplayName, toMillis(player.CreatedAt))
		if err != nil {
			return fmt.Errorf("save player: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO player_stats (player_id) VALUES (?)`, string(player.ID))
		if err != nil {
			return fmt.Errorf("init player stats: %w", err)
		}
		return nil
	})
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		player    model.Player
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, created_at FROM players WHERE id = ?`, string(id),
	).Scan(&player.ID, &player.DisplayName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	player.CreatedAt = fromMillis(createdAt)
	return &player, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertGame(ctx, tx, game)
	})
}

func insertGame(ctx context.Context, tx *sql.Tx, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, player_black, player_white, state, version, created_at, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(game.ID), string(game.PlayerBlack), string(game.PlayerWhite),
		string(game.State), game.Version, toMillis(game.CreatedAt), string(data))
	if isUniqueViolation(err) {
		return fmt.Errorf("game %s: %w", game.ID, model.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return getGame(ctx, s.db, id)
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getGame(ctx context.Context, q querier, id model.GameID) (*model.Game, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM games WHERE id = ?`, string(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	var game model.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	return s.queryGames(ctx, `SELECT data FROM games ORDER BY created_at DESC, id DESC`)
}

func (s *Storage) ListGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	return s.queryGames(ctx,
		`SELECT data FROM games WHERE player_black = ? OR player_white = ? ORDER BY created_at DESC, id DESC`,
		string(playerID), string(playerID))
}

func (s *Storage) queryGames(ctx context.Context, query string, args ...any) ([]*model.Game, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []*model.Game
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		var game model.Game
		if err := json.Unmarshal([]byte(data), &game); err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	storage.SortGamesNewestFirst(games)
	return games, nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.UpdateGameFunc) (*model.Game, error) {
	var result *model.Game
	err := s.inTx(ctx, func(tx *sql.Tx) error {
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

		res, err := tx.ExecContext(ctx,
			`UPDATE games SET data = ?, state = ?, version = ? WHERE id = ? AND version = ?`,
			string(data), string(saved.State), saved.Version, string(id), current.Version)
		if err != nil {
			return fmt.Errorf("update game: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("game %s: %w", id, model.ErrConflict)
		}

		if !current.State.IsEnded() && saved.State.IsEnded() {
			if gameResult := model.ResultOf(&saved); gameResult != nil {
				if err := applyResult(ctx, tx, *gameResult); err != nil {
					return err
				}
			}
		}
		result = &saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyResult adds a finished game to both players' statistics
func applyResult(ctx context.Context, tx *sql.Tx, result model.GameResult) error {
	for _, id := range []model.PlayerID{result.Black, result.White} {
		delta := model.PlayerStats{PlayerID: id}
		delta.Apply(result)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO player_stats (player_id, games_played, wins, losses, draws, points)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(player_id) DO UPDATE SET
			   games_played = games_played + excluded.games_played,
			   wins = wins + excluded.wins,
			   losses = losses + excluded.losses,
			   draws = draws + excluded.draws,
			   points = points + excluded.points`,
			string(id), delta.GamesPlayed, delta.Wins, delta.Losses, delta.Draws, delta.Points)
		if err != nil {
			return fmt.Errorf("apply result for %s: %w", id, err)
		}
	}
	return nil
}

// Matchmaking operations

func (s *Storage) Matchmake(ctx context.Context, req model.MatchmakingRequest, build storage.BuildGameFunc) (model.MatchmakingOutcome, error) {
	var outcome model.MatchmakingOutcome
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		opponent, err := scanEntry(tx.QueryRowContext(ctx,
			`SELECT id, user_id, variant, status, game_id, created_at FROM matchmaking_entries
			 WHERE variant = ? AND status = ? AND user_id <> ?
			 ORDER BY created_at, id LIMIT 1`,
			string(req.Variant.Name), string(model.MatchmakingPending), string(req.UserID)))
		switch {
		case err == nil:
			return claim(ctx, tx, opponent, build, &outcome)
		case !errors.Is(err, model.ErrMatchDoesNotExist):
			return err
		}

		var queued int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM matchmaking_entries WHERE user_id = ? AND status = ?`,
			string(req.UserID), string(model.MatchmakingPending)).Scan(&queued)
		if err != nil {
			return fmt.Errorf("check queue: %w", err)
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
		_, err = tx.ExecContext(ctx,
			`INSERT INTO matchmaking_entries (id, user_id, variant, status, created_at) VALUES (?, ?, ?, ?, ?)`,
			string(entry.ID), string(entry.UserID), string(entry.Variant), string(entry.Status), toMillis(entry.CreatedAt))
		if isUniqueViolation(err) {
			return model.ErrUserAlreadyQueued
		}
		if err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}
		outcome = model.MatchmakingOutcome{Entry: entry}
		return nil
	})
	return outcome, err
}

// claim flips a pending entry to MATCHED and stores the game built for it
func claim(ctx context.Context, tx *sql.Tx, entry *model.MatchmakingEntry, build storage.BuildGameFunc, outcome *model.MatchmakingOutcome) error {
	game, err := build(*entry)
	if err != nil {
		return err
	}
	if err := insertGame(ctx, tx, game); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE matchmaking_entries SET status = ?, game_id = ? WHERE id = ? AND status = ?`,
		string(model.MatchmakingMatched), string(game.ID), string(entry.ID), string(model.MatchmakingPending))
	if err != nil {
		return fmt.Errorf("claim entry: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("entry %s: %w", entry.ID, model.ErrConflict)
	}

	entry.Status = model.MatchmakingMatched
	entry.GameID = game.ID
	*outcome = model.MatchmakingOutcome{Game: game, Entry: *entry}
	return nil
}

func (s *Storage) GetMatchmakingEntry(ctx context.Context, id model.MatchmakingEntryID) (*model.MatchmakingEntry, error) {
	return scanEntry(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, variant, status, game_id, created_at FROM matchmaking_entries WHERE id = ?`,
		string(id)))
}

func scanEntry(row *sql.Row) (*model.MatchmakingEntry, error) {
	var (
		entry     model.MatchmakingEntry
		createdAt int64
	)
	err := row.Scan(&entry.ID, &entry.UserID, &entry.Variant, &entry.Status, &entry.GameID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMatchDoesNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	entry.CreatedAt = fromMillis(createdAt)
	return &entry, nil
}

func (s *Storage) DeletePendingEntry(ctx context.Context, id model.MatchmakingEntryID, userID model.PlayerID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM matchmaking_entries WHERE id = ? AND user_id = ? AND status = ?`,
		string(id), string(userID), string(model.MatchmakingPending))
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrMatchDoesNotExist
	}
	return nil
}

// Statistics operations

func (s *Storage) GetStats(ctx context.Context, playerID model.PlayerID) (*model.PlayerStats, error) {
	st := model.PlayerStats{PlayerID: playerID}
	err := s.db.QueryRowContext(ctx,
		`SELECT s.games_played, s.wins, s.losses, s.draws, s.points,
		   1 + (SELECT COUNT(*) FROM player_stats o
		        WHERE o.points > s.points OR (o.points = s.points AND o.player_id < s.player_id))
		 FROM player_stats s WHERE s.player_id = ?`,
		string(playerID),
	).Scan(&st.GamesPlayed, &st.Wins, &st.Losses, &st.Draws, &st.Points, &st.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &st, nil
}

func (s *Storage) Ranking(ctx context.Context, limit int) ([]model.PlayerStats, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, games_played, wins, losses, draws, points FROM player_stats
		 ORDER BY points DESC, player_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	defer rows.Close()

	var stats []model.PlayerStats
	for rows.Next() {
		var st model.PlayerStats
		if err := rows.Scan(&st.PlayerID, &st.GamesPlayed, &st.Wins, &st.Losses, &st.Draws, &st.Points); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		st.Rank = len(stats) + 1
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}
	return stats, nil
}

// inTx runs fn in a transaction, committing only when it returns nil
func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
