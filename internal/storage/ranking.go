package storage

import (
	"sort"

	"github.com/mcoot/gomoku-go/internal/model"
)

// RankStats orders stats by points (highest first, ties by player ID), fills
// in Rank and truncates to limit when limit is positive
func RankStats(stats []model.PlayerStats, limit int) []model.PlayerStats {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Points != stats[j].Points {
			return stats[i].Points > stats[j].Points
		}
		return stats[i].PlayerID < stats[j].PlayerID
	})
	for i := range stats {
		stats[i].Rank = i + 1
	}
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// SortGamesNewestFirst orders games by creation time, newest first, ties by ID
func SortGamesNewestFirst(games []*model.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.After(games[j].CreatedAt)
		}
		return games[i].ID > games[j].ID
	})
}
