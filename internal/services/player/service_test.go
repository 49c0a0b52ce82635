package player

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gomoku-go/internal/dependencies/mocks"
	"github.com/mcoot/gomoku-go/internal/model"
	"github.com/mcoot/gomoku-go/internal/storage/memory"
	"github.com/mcoot/gomoku-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestCreatePlayerWithGeneratedID() {
	s.random.QueueUUID("1234")

	p, err := s.service.CreatePlayer(s.ctx, "", "  Alice ")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("p_1234"), p.ID)
	s.Equal("Alice", p.DisplayName)
	s.Equal(s.clock.Now(), p.CreatedAt)

	stored, err := s.service.GetPlayer(s.ctx, "p_1234")
	s.Require().NoError(err)
	s.Equal("Alice", stored.DisplayName)
}

func (s *ServiceSuite) TestCreatePlayerWithChosenID() {
	p, err := s.service.CreatePlayer(s.ctx, "alice", "Alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("alice"), p.ID)

	_, err = s.service.CreatePlayer(s.ctx, "alice", "Another Alice")
	s.ErrorIs(err, model.ErrPlayerExists)
}

func (s *ServiceSuite) TestCreatePlayerValidatesDisplayName() {
	_, err := s.service.CreatePlayer(s.ctx, "", "   ")
	s.ErrorIs(err, ErrInvalidDisplayName)

	_, err = s.service.CreatePlayer(s.ctx, "", strings.Repeat("x", MaxDisplayNameLength+1))
	s.ErrorIs(err, ErrInvalidDisplayName)

	_, err = s.service.CreatePlayer(s.ctx, "", strings.Repeat("é", MaxDisplayNameLength))
	s.NoError(err)
}

func (s *ServiceSuite) TestNewPlayerHasEmptyStats() {
	_, err := s.service.CreatePlayer(s.ctx, "alice", "Alice")
	s.Require().NoError(err)

	stats, err := s.service.GetStats(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(0, stats.GamesPlayed)
	s.Equal(1, stats.Rank)

	_, err = s.service.GetStats(s.ctx, "bob")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestRanking() {
	for _, id := range []model.PlayerID{"carol", "alice", "bob"} {
		_, err := s.service.CreatePlayer(s.ctx, id, string(id))
		s.Require().NoError(err)
	}

	all, err := s.service.Ranking(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(model.PlayerID("alice"), all[0].PlayerID)

	top, err := s.service.Ranking(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(top, 2)
}
