package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage"
	"github.com/mcoot/gomoku-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini  *miniredis.Miniredis
	redis *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.MatchedEntryTTL = time.Hour
	cfg.MaxTxAttempts = 64

	s.redis = NewWithClient(client, cfg)
	s.NewStorage = func() storage.Storage { return s.redis }
	s.Suite.SetupTest()
}

func (s *StorageSuite) TearDownTest() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestKeysUseGomokuPrefix() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "alice"}))

	s.True(s.mini.Exists("gomoku:player:alice"))
	s.True(s.mini.Exists("gomoku:stats:alice"))
	ok, err := s.mini.SIsMember("gomoku:idx:players", "alice")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *StorageSuite) TestMatchedEntryExpires() {
	first := model.MatchmakingRequest{UserID: "alice", Variant: model.Variant{Name: "STANDARD"}, EntryID: "e1", CreatedAt: time.Now()}
	build := func(opponent model.MatchmakingEntry) (*model.Game, error) {
		return &model.Game{ID: "g1", PlayerBlack: opponent.UserID, PlayerWhite: "bob", Board: model.NewRunBoard(model.PieceBlack)}, nil
	}
	_, err := s.Storage.Matchmake(s.Ctx, first, build)
	s.Require().NoError(err)

	second := model.MatchmakingRequest{UserID: "bob", Variant: model.Variant{Name: "STANDARD"}, EntryID: "e2", CreatedAt: time.Now()}
	out, err := s.Storage.Matchmake(s.Ctx, second, build)
	s.Require().NoError(err)
	s.Require().True(out.Matched())
	s.False(s.mini.Exists("gomoku:mm:user_pending:alice"))

	s.mini.FastForward(2 * time.Hour)

	_, err = s.Storage.GetMatchmakingEntry(s.Ctx, "e1")
	s.ErrorIs(err, model.ErrMatchDoesNotExist)
	_, err = s.Storage.GetGame(s.Ctx, "g1")
	s.Require().NoError(err)
}

func (s *StorageSuite) TestCorruptStatsReported() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "alice"}))
	s.mini.HSet("gomoku:stats:alice", "points", "lots")

	_, err := s.Storage.Ranking(s.Ctx, 0)
	s.Error(err)
}
