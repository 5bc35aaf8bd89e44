package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	games := []CompletedGame{
		{ID: "1", Winner: "human", Status: "won"},
		{ID: "2", Winner: "heuristic", Status: "won"},
		{ID: "3", Winner: "human", Status: "won"},
		{ID: "4", Status: "tied"},
		{ID: "5", Winner: "random", Status: "won"},
		{ID: "1", Winner: "human", Status: "won"},
	}
	for _, g := range games {
		require.NoError(t, s.SaveGame(ctx, g))
	}

	rows, err := s.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardRow{
		{Name: "human", Wins: 2},
		{Name: "heuristic", Wins: 1},
		{Name: "random", Wins: 1},
	}, rows)

	rows, err = s.GetLeaderboard(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	g, ok := s.GetGame(ctx, "4")
	require.True(t, ok)
	assert.Equal(t, "tied", g.Status)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	assert.ErrorIs(t, s.SaveGame(ctx, CompletedGame{ID: "x"}), context.Canceled)
	_, err := s.GetLeaderboard(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
