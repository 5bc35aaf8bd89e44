// Package opponent supplies column choices to the engine. A MoveSource
// knows nothing about turn order or outcomes; it only picks a column for
// the state it is shown.
package opponent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"emittr/connect4/internal/game"
)

var ErrNoMoves = errors.New("no valid columns")

// MoveSource picks the next column for the player to move in s.
type MoveSource interface {
	NextMove(ctx context.Context, s game.State) (int, error)
}

// Kind names a built-in move source.
type Kind string

const (
	KindHuman     Kind = "human"
	KindRandom    Kind = "random"
	KindHeuristic Kind = "heuristic"
)

func ParseKind(v string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(v))); k {
	case KindHuman, KindRandom, KindHeuristic:
		return k, nil
	}
	return "", fmt.Errorf("unknown opponent %q: must be human, random or heuristic", v)
}

// Automated reports whether the kind picks moves without input.
func (k Kind) Automated() bool {
	return k == KindRandom || k == KindHeuristic
}
