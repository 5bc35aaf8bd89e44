package opponent

import (
	"context"

	"emittr/connect4/internal/game"
)

// preferred orders columns from the centre out to build threats.
var preferred = []int{3, 2, 4, 1, 5, 0, 6}

// Heuristic looks one move ahead. It plays a column that completes a line
// for itself, else one that would complete a line for the other side, else
// the first open column in centre-out order.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) NextMove(ctx context.Context, s game.State) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	if len(s.ValidColumns()) == 0 {
		return -1, ErrNoMoves
	}

	if col, ok := findImmediate(s); ok {
		return col, nil
	}
	opp := game.FromBoard(s.Board(), s.CurrentPlayer().Opponent())
	if col, ok := findImmediate(opp); ok {
		return col, nil
	}
	for _, col := range preferred {
		if _, err := s.PlayPiece(col); err == nil {
			return col, nil
		}
	}
	return -1, ErrNoMoves
}

// findImmediate returns a column that wins on the spot for the player to
// move in s. A line completed with the last empty cell scores Tie and is
// missed, but then that column is the only legal move anyway.
func findImmediate(s game.State) (int, bool) {
	for _, col := range s.ValidColumns() {
		res, err := s.PlayPiece(col)
		if err == nil && res.Outcome == game.Win {
			return col, true
		}
	}
	return -1, false
}
