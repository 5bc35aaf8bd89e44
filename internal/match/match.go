// Package match drives a game from a starting state to a terminal outcome,
// asking a MoveSource for each player's column.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"emittr/connect4/internal/game"
	"emittr/connect4/internal/opponent"
)

var ErrTooManyInvalid = errors.New("too many invalid moves")

type Loop struct {
	Sources map[game.Player]opponent.MoveSource
	Logger  *slog.Logger

	// OnState is called with the starting state and after every accepted
	// move that does not end the game.
	OnState func(game.State)
	// OnInvalid is called when the engine rejects a column.
	OnInvalid func(p game.Player, column int, err error)
	// MaxInvalid bounds consecutive rejected columns; 0 means no limit.
	MaxInvalid int
}

// Result is the terminal move plus every state the game passed through,
// starting with the state the loop was given.
type Result struct {
	Final   game.MoveResult
	History []game.State
}

func (r Result) Winner() (game.Player, bool) {
	if r.Final.Outcome != game.Win {
		return 0, false
	}
	return r.Final.Mover, true
}

func (l *Loop) Run(ctx context.Context, start game.State) (Result, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	state := start
	history := []game.State{start}
	if l.OnState != nil {
		l.OnState(state)
	}

	invalid := 0
	for {
		player := state.CurrentPlayer()
		src, ok := l.Sources[player]
		if !ok {
			return Result{History: history}, fmt.Errorf("no move source for %s", player)
		}
		col, err := src.NextMove(ctx, state)
		if err != nil {
			return Result{History: history}, fmt.Errorf("%s move: %w", player, err)
		}

		res, err := state.PlayPiece(col)
		if err != nil {
			logger.Debug("move rejected", "player", player, "column", col, "err", err)
			if l.OnInvalid != nil {
				l.OnInvalid(player, col, err)
			}
			invalid++
			if l.MaxInvalid > 0 && invalid >= l.MaxInvalid {
				return Result{History: history}, fmt.Errorf("%s: %w", player, ErrTooManyInvalid)
			}
			continue
		}
		invalid = 0
		history = append(history, res.State)
		logger.Debug("move played", "player", player, "column", col, "row", res.Row, "outcome", res.Outcome)

		if res.Outcome.Terminal() {
			return Result{Final: res, History: history}, nil
		}
		state = res.State
		if l.OnState != nil {
			l.OnState(state)
		}
	}
}
