package opponent

import (
	"context"
	"math/rand/v2"
	"sync"

	"emittr/connect4/internal/game"
)

// Random picks uniformly among the columns that can still take a piece.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random seeded with seed, so games can be replayed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) NextMove(ctx context.Context, s game.State) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	cols := s.ValidColumns()
	if len(cols) == 0 {
		return -1, ErrNoMoves
	}
	r.mu.Lock()
	i := r.rng.IntN(len(cols))
	r.mu.Unlock()
	return cols[i], nil
}
