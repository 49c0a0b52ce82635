// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
)

// Suite runs the storage contract against a backend. Embed it in a
// backend-specific suite and set NewStorage before SetupTest runs.
type Suite struct {
	suite.Suite

	// NewStorage returns an empty storage for each test
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context

	base    time.Time
	gameSeq atomic.Int64
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewStorage, "NewStorage must be set")
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
	s.base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) variant(name model.VariantName) model.Variant {
	v, err := model.LookupVariant(name)
	s.Require().NoError(err)
	return v
}

func (s *Suite) savePlayers(ids ...model.PlayerID) {
	for _, id := range ids {
		s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: id, DisplayName: string(id), CreatedAt: s.base}))
	}
}

func (s *Suite) newGame(id model.GameID, black, white model.PlayerID, created time.Time) *model.Game {
	deadline := created.Add(time.Minute)
	return &model.Game{
		ID:          id,
		State:       model.GameStateNextPlayerBlack,
		Board:       model.NewRunBoard(model.PieceBlack),
		Variant:     s.variant("STANDARD"),
		PlayerBlack: black,
		PlayerWhite: white,
		Deadline:    &deadline,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// build pairs the claimed entry's user as black against the caller as white
func (s *Suite) build(req model.MatchmakingRequest) storage.BuildGameFunc {
	return func(opponent model.MatchmakingEntry) (*model.Game, error) {
		id := model.GameID(fmt.Sprintf("mm-game-%d", s.gameSeq.Add(1)))
		g := s.newGame(id, opponent.UserID, req.UserID, req.CreatedAt)
		g.Variant = req.Variant
		return g, nil
	}
}

func (s *Suite) request(user model.PlayerID, variant model.VariantName, n int) model.MatchmakingRequest {
	return model.MatchmakingRequest{
		UserID:    user,
		Variant:   s.variant(variant),
		EntryID:   model.MatchmakingEntryID(fmt.Sprintf("entry-%s-%d", user, n)),
		CreatedAt: s.base.Add(time.Duration(n) * time.Second),
	}
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	s.savePlayers("alice")

	p, err := s.Storage.GetPlayer(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), p.ID)
	s.Equal("alice", p.DisplayName)
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Game tests

func (s *Suite) TestCreateAndGetGame() {
	g := s.newGame("g1", "alice", "bob", s.base)
	g.Board = g.Board.With(model.Cell{Row: 7, Col: 7}, model.PieceBlack, model.PhaseRun, model.PieceWhite)
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(g.ID, got.ID)
	s.Equal(g.State, got.State)
	s.Equal(g.PlayerBlack, got.PlayerBlack)
	s.Equal(g.Variant, got.Variant)
	s.True(g.Board.Equal(got.Board))
	s.Require().NotNil(got.Deadline)
	s.True(g.Deadline.Equal(*got.Deadline))
	s.True(g.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestCreateGameTwiceConflicts() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "alice", "bob", s.base)))
	err := s.Storage.CreateGame(s.Ctx, s.newGame("g1", "carol", "dave", s.base))
	s.ErrorIs(err, model.ErrConflict)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestListGamesNewestFirst() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "alice", "bob", s.base)))
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g2", "carol", "alice", s.base.Add(time.Minute))))
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g3", "carol", "dave", s.base.Add(2*time.Minute))))

	all, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.GameID{"g3", "g2", "g1"}, gameIDs(all))

	alices, err := s.Storage.ListGamesForPlayer(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]model.GameID{"g2", "g1"}, gameIDs(alices))

	none, err := s.Storage.ListGamesForPlayer(s.Ctx, "erin")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *Suite) TestUpdateGameWritesAndBumpsVersion() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "alice", "bob", s.base)))

	updated, err := s.Storage.UpdateGame(s.Ctx, "g1", func(current *model.Game) (*model.Game, error) {
		next := current.Clone()
		next.State = model.GameStateNextPlayerWhite
		next.Board = next.Board.With(model.Cell{Row: 0, Col: 0}, model.PieceBlack, model.PhaseRun, model.PieceWhite)
		return &next, nil
	})
	s.Require().NoError(err)
	s.Equal(model.GameStateNextPlayerWhite, updated.State)

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.GameStateNextPlayerWhite, got.State)
	s.Equal(1, got.Board.Count())
	s.Greater(got.Version, int64(0))
}

func (s *Suite) TestUpdateGameNilLeavesRecord() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "alice", "bob", s.base)))

	got, err := s.Storage.UpdateGame(s.Ctx, "g1", func(current *model.Game) (*model.Game, error) {
		return nil, nil
	})
	s.Require().NoError(err)
	s.Equal(model.GameStateNextPlayerBlack, got.State)
	s.Equal(int64(0), got.Version)
}

func (s *Suite) TestUpdateGameErrorAborts() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "alice", "bob", s.base)))

	_, err := s.Storage.UpdateGame(s.Ctx, "g1", func(current *model.Game) (*model.Game, error) {
		return nil, model.ErrNotYourTurn
	})
	s.ErrorIs(err, model.ErrNotYourTurn)
}

func (s *Suite) TestUpdateGameNotFound() {
	_, err := s.Storage.UpdateGame(s.Ctx, "missing", func(current *model.Game) (*model.Game, error) {
		return current, nil
	})
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestEndingGameUpdatesStatsOnce() {
	s.savePlayers("alice", "bob")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "alice", "bob", s.base)))

	win := func(current *model.Game) (*model.Game, error) {
		next := current.Clone()
		next.State = model.GameStatePlayerBlackWon
		next.Board = next.Board.Retag(model.PhaseWin, model.PieceBlack)
		next.Deadline = nil
		return &next, nil
	}
	_, err := s.Storage.UpdateGame(s.Ctx, "g1", win)
	s.Require().NoError(err)

	// Writing an already ended game again must not count twice
	_, err = s.Storage.UpdateGame(s.Ctx, "g1", win)
	s.Require().NoError(err)

	alice, err := s.Storage.GetStats(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Wins)
	s.Equal(110, alice.Points)
	s.Equal(1, alice.Rank)

	bob, err := s.Storage.GetStats(s.Ctx, "bob")
	s.Require().NoError(err)
	s.Equal(1, bob.GamesPlayed)
	s.Equal(1, bob.Losses)
	s.Equal(0, bob.Points)
	s.Equal(2, bob.Rank)

	got, err := s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
	s.Nil(got.Deadline)
}

func (s *Suite) TestDrawUpdatesBothPlayers() {
	s.savePlayers("alice", "bob")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "alice", "bob", s.base)))

	_, err := s.Storage.UpdateGame(s.Ctx, "g1", func(current *model.Game) (*model.Game, error) {
		next := current.Clone()
		next.State = model.GameStateDraw
		next.Board = next.Board.Retag(model.PhaseDraw, "")
		next.Deadline = nil
		return &next, nil
	})
	s.Require().NoError(err)

	for _, id := range []model.PlayerID{"alice", "bob"} {
		st, err := s.Storage.GetStats(s.Ctx, id)
		s.Require().NoError(err)
		s.Equal(1, st.Draws, id)
		s.Equal(1, st.GamesPlayed, id)
	}
}

// Statistics tests

func (s *Suite) TestGetStatsUnknownPlayer() {
	_, err := s.Storage.GetStats(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestRankingOrdersByPoints() {
	s.savePlayers("alice", "bob", "carol")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g1", "carol", "alice", s.base)))
	_, err := s.Storage.UpdateGame(s.Ctx, "g1", func(current *model.Game) (*model.Game, error) {
		next := current.Clone()
		next.State = model.GameStatePlayerBlackWon
		next.Deadline = nil
		return &next, nil
	})
	s.Require().NoError(err)

	ranking, err := s.Storage.Ranking(s.Ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(ranking, 3)
	s.Equal(model.PlayerID("carol"), ranking[0].PlayerID)
	s.Equal(1, ranking[0].Rank)
	// Ties are broken by player ID
	s.Equal(model.PlayerID("alice"), ranking[1].PlayerID)
	s.Equal(model.PlayerID("bob"), ranking[2].PlayerID)
	s.Equal(3, ranking[2].Rank)

	top, err := s.Storage.Ranking(s.Ctx, 1)
	s.Require().NoError(err)
	s.Len(top, 1)
}

// Matchmaking tests

func (s *Suite) TestMatchmakeEnqueuesWhenNobodyWaits() {
	req := s.request("alice", "STANDARD", 1)

	out, err := s.Storage.Matchmake(s.Ctx, req, s.build(req))
	s.Require().NoError(err)
	s.False(out.Matched())
	s.Equal(req.EntryID, out.Entry.ID)
	s.Equal(model.MatchmakingPending, out.Entry.Status)

	entry, err := s.Storage.GetMatchmakingEntry(s.Ctx, req.EntryID)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), entry.UserID)
	s.Equal(model.VariantName("STANDARD"), entry.Variant)
	s.Equal(model.MatchmakingPending, entry.Status)
	s.Empty(entry.GameID)
}

func (s *Suite) TestMatchmakePairsWithWaitingUser() {
	first := s.request("alice", "STANDARD", 1)
	_, err := s.Storage.Matchmake(s.Ctx, first, s.build(first))
	s.Require().NoError(err)

	second := s.request("bob", "STANDARD", 2)
	out, err := s.Storage.Matchmake(s.Ctx, second, s.build(second))
	s.Require().NoError(err)
	s.Require().True(out.Matched())
	s.Equal(model.PlayerID("alice"), out.Game.PlayerBlack)
	s.Equal(model.PlayerID("bob"), out.Game.PlayerWhite)
	s.Equal(first.EntryID, out.Entry.ID)

	entry, err := s.Storage.GetMatchmakingEntry(s.Ctx, first.EntryID)
	s.Require().NoError(err)
	s.Equal(model.MatchmakingMatched, entry.Status)
	s.Equal(out.Game.ID, entry.GameID)

	stored, err := s.Storage.GetGame(s.Ctx, out.Game.ID)
	s.Require().NoError(err)
	s.Equal(model.PlayerID("bob"), stored.PlayerWhite)

	// The caller's entry was never created
	_, err = s.Storage.GetMatchmakingEntry(s.Ctx, second.EntryID)
	s.ErrorIs(err, model.ErrMatchDoesNotExist)
}

func (s *Suite) TestMatchmakeNeverPairsUserWithThemselves() {
	first := s.request("alice", "STANDARD", 1)
	_, err := s.Storage.Matchmake(s.Ctx, first, s.build(first))
	s.Require().NoError(err)

	again := s.request("alice", "STANDARD", 2)
	_, err = s.Storage.Matchmake(s.Ctx, again, s.build(again))
	s.ErrorIs(err, model.ErrUserAlreadyQueued)
}

func (s *Suite) TestMatchmakeAlreadyQueuedInOtherVariant() {
	first := s.request("alice", "STANDARD", 1)
	_, err := s.Storage.Matchmake(s.Ctx, first, s.build(first))
	s.Require().NoError(err)

	other := s.request("alice", "RENJU", 2)
	_, err = s.Storage.Matchmake(s.Ctx, other, s.build(other))
	s.ErrorIs(err, model.ErrUserAlreadyQueued)
}

func (s *Suite) TestMatchmakeOnlyPairsSameVariant() {
	first := s.request("alice", "STANDARD", 1)
	_, err := s.Storage.Matchmake(s.Ctx, first, s.build(first))
	s.Require().NoError(err)

	second := s.request("bob", "OMOK", 2)
	out, err := s.Storage.Matchmake(s.Ctx, second, s.build(second))
	s.Require().NoError(err)
	s.False(out.Matched())
}

func (s *Suite) TestMatchmakeClaimedEntryIsNotReused() {
	alice := s.request("alice", "STANDARD", 1)
	_, err := s.Storage.Matchmake(s.Ctx, alice, s.build(alice))
	s.Require().NoError(err)
	bob := s.request("bob", "STANDARD", 2)
	_, err = s.Storage.Matchmake(s.Ctx, bob, s.build(bob))
	s.Require().NoError(err)

	carol := s.request("carol", "STANDARD", 3)
	out, err := s.Storage.Matchmake(s.Ctx, carol, s.build(carol))
	s.Require().NoError(err)
	s.False(out.Matched())

	// Once matched, alice may queue again
	again := s.request("alice", "STANDARD", 4)
	out, err = s.Storage.Matchmake(s.Ctx, again, s.build(again))
	s.Require().NoError(err)
	s.Require().True(out.Matched())
	s.Equal(model.PlayerID("carol"), out.Game.PlayerBlack)
	s.Equal(model.PlayerID("alice"), out.Game.PlayerWhite)
}

func (s *Suite) TestDeletePendingEntry() {
	req := s.request("alice", "STANDARD", 1)
	_, err := s.Storage.Matchmake(s.Ctx, req, s.build(req))
	s.Require().NoError(err)

	s.ErrorIs(s.Storage.DeletePendingEntry(s.Ctx, req.EntryID, "bob"), model.ErrMatchDoesNotExist)
	s.Require().NoError(s.Storage.DeletePendingEntry(s.Ctx, req.EntryID, "alice"))

	_, err = s.Storage.GetMatchmakingEntry(s.Ctx, req.EntryID)
	s.ErrorIs(err, model.ErrMatchDoesNotExist)
	s.ErrorIs(s.Storage.DeletePendingEntry(s.Ctx, req.EntryID, "alice"), model.ErrMatchDoesNotExist)

	// Leaving the queue allows queueing again
	again := s.request("alice", "STANDARD", 2)
	out, err := s.Storage.Matchmake(s.Ctx, again, s.build(again))
	s.Require().NoError(err)
	s.False(out.Matched())

	// and a removed entry is never claimed
	bob := s.request("bob", "STANDARD", 3)
	out, err = s.Storage.Matchmake(s.Ctx, bob, s.build(bob))
	s.Require().NoError(err)
	s.Require().True(out.Matched())
	s.Equal(again.EntryID, out.Entry.ID)
}

func (s *Suite) TestDeleteMatchedEntryFails() {
	first := s.request("alice", "STANDARD", 1)
	_, err := s.Storage.Matchmake(s.Ctx, first, s.build(first))
	s.Require().NoError(err)
	second := s.request("bob", "STANDARD", 2)
	_, err = s.Storage.Matchmake(s.Ctx, second, s.build(second))
	s.Require().NoError(err)

	s.ErrorIs(s.Storage.DeletePendingEntry(s.Ctx, first.EntryID, "alice"), model.ErrMatchDoesNotExist)

	entry, err := s.Storage.GetMatchmakingEntry(s.Ctx, first.EntryID)
	s.Require().NoError(err)
	s.Equal(model.MatchmakingMatched, entry.Status)
}

func (s *Suite) TestConcurrentMatchmakingNeverDoubleClaims() {
	const users = 16

	var (
		mu       sync.Mutex
		games    []*model.Game
		claimed  = map[model.MatchmakingEntryID]model.GameID{}
		enqueued []model.MatchmakingEntryID
	)

	var g errgroup.Group
	for i := 0; i < users; i++ {
		req := s.request(model.PlayerID(fmt.Sprintf("user-%02d", i)), "STANDARD", i)
		g.Go(func() error {
			out, err := s.Storage.Matchmake(s.Ctx, req, s.build(req))
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if !out.Matched() {
				enqueued = append(enqueued, out.Entry.ID)
				return nil
			}
			if prev, dup := claimed[out.Entry.ID]; dup {
				return fmt.Errorf("entry %s claimed by %s and %s", out.Entry.ID, prev, out.Game.ID)
			}
			claimed[out.Entry.ID] = out.Game.ID
			games = append(games, out.Game)
			return nil
		})
	}
	s.Require().NoError(g.Wait())

	s.Len(games, users/2)
	s.Len(enqueued, users/2)

	seen := map[model.PlayerID]bool{}
	for _, game := range games {
		s.NotEqual(game.PlayerBlack, game.PlayerWhite)
		s.False(seen[game.PlayerBlack], "user %s in two games", game.PlayerBlack)
		s.False(seen[game.PlayerWhite], "user %s in two games", game.PlayerWhite)
		seen[game.PlayerBlack] = true
		seen[game.PlayerWhite] = true
	}

	for entryID, gameID := range claimed {
		entry, err := s.Storage.GetMatchmakingEntry(s.Ctx, entryID)
		s.Require().NoError(err)
		s.Equal(model.MatchmakingMatched, entry.Status)
		s.Equal(gameID, entry.GameID)
	}

	stored, err := s.Storage.ListGames(s.Ctx)
	s.Require().NoError(err)
	s.Len(stored, users/2)
}

func gameIDs(games []*model.Game) []model.GameID {
	ids := make([]model.GameID, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}
