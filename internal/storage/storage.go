package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

type CompletedGame struct {
	ID        string
	Winner    string
	Status    string
	Moves     int
	StartedAt time.Time
	EndedAt   time.Time
}

type LeaderboardRow struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

type Store interface {
	SaveGame(ctx context.Context, game CompletedGame) error
	GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
}

// MemoryStore keeps completed games for the life of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]CompletedGame
	wins  map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]CompletedGame),
		wins:  make(map[string]int),
	}
}

// SaveGame records a game once; saving the same ID again is a no-op.
func (m *MemoryStore) SaveGame(ctx context.Context, game CompletedGame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[game.ID]; ok {
		return nil
	}
	m.games[game.ID] = game
	if game.Winner != "" {
		m.wins[game.Winner]++
	}
	return nil
}

func (m *MemoryStore) GetGame(ctx context.Context, id string) (CompletedGame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	return g, ok
}

// GetLeaderboard orders winners by wins, then name.
func (m *MemoryStore) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	res := make([]LeaderboardRow, 0, len(m.wins))
	for name, wins := range m.wins {
		res = append(res, LeaderboardRow{Name: name, Wins: wins})
	}
	m.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].Wins != res[j].Wins {
			return res[i].Wins > res[j].Wins
		}
		return res[i].Name < res[j].Name
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
