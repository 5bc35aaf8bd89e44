package opponent

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emittr/connect4/internal/game"
)

func parse(t *testing.T, text string) game.State {
	t.Helper()
	s, err := game.Parse(text)
	require.NoError(t, err)
	return s
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"human":     KindHuman,
		" Random ":  KindRandom,
		"HEURISTIC": KindHeuristic,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("minimax")
	assert.ErrorContains(t, err, "unknown opponent")

	assert.True(t, KindRandom.Automated())
	assert.False(t, KindHuman.Automated())
}

func TestRandomPicksOnlyValidColumns(t *testing.T) {
	// Columns 0, 2 and 6 are full.
	s := parse(t, "r\nrbrbrb\n\nbrbrbr\n\n\n\nrbrbrb")
	r := NewRandom(1)

	seen := map[int]int{}
	for i := 0; i < 500; i++ {
		col, err := r.NextMove(context.Background(), s)
		require.NoError(t, err)
		seen[col]++
	}
	assert.Len(t, seen, 4)
	for _, col := range []int{1, 3, 4, 5} {
		assert.Greater(t, seen[col], 50, "column %d picked too rarely", col)
	}
}

func TestRandomIsDeterministicPerSeed(t *testing.T) {
	a, b := NewRandom(42), NewRandom(42)
	s := game.NewGame()
	for i := 0; i < 20; i++ {
		ca, err := a.NextMove(context.Background(), s)
		require.NoError(t, err)
		cb, err := b.NextMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	}
}

func TestRandomFullBoard(t *testing.T) {
	s := parse(t, "r"+strings.Repeat("\nrbrbrb", game.Columns))
	_, err := NewRandom(1).NextMove(context.Background(), s)
	assert.ErrorIs(t, err, ErrNoMoves)
}

func TestRandomHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRandom(1).NextMove(ctx, game.NewGame())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristic(t *testing.T) {
	h := NewHeuristic()

	t.Run("takes the win", func(t *testing.T) {
		// Red has three in column 5 and Blue threatens row 0.
		s := parse(t, "r\nb\nb\nb\n\n\nrrr")
		col, err := h.NextMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, 5, col)
	})

	t.Run("blocks the opponent", func(t *testing.T) {
		s := parse(t, "r\nb\nb\nb\n\n\nr\nr")
		col, err := h.NextMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, 3, col)
	})

	t.Run("prefers the centre", func(t *testing.T) {
		col, err := h.NextMove(context.Background(), game.NewGame())
		require.NoError(t, err)
		assert.Equal(t, 3, col)

		s := parse(t, "r\n\n\n\nrbrbrb")
		col, err = h.NextMove(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, 2, col)
	})
}

func TestHeuristicLastCell(t *testing.T) {
	// Column 0 is the only gap; the move fills the board.
	s := parse(t, "r\nbbrrb\nrrbbrr\nbbrrbb\nrrbbrr\nbbrrbb\nrrbbrr\nbbrrbb")
	col, err := NewHeuristic().NextMove(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, col)
}

func TestReader(t *testing.T) {
	var prompt bytes.Buffer
	var invalid []string
	r := NewReader(strings.NewReader("abc\n 4 \n\n-1\n"), &prompt)
	r.OnInvalid = func(line string, err error) { invalid = append(invalid, line) }
	defer r.Close()

	ctx := context.Background()
	col, err := r.NextMove(ctx, game.NewGame())
	require.NoError(t, err)
	assert.Equal(t, 4, col)
	assert.Equal(t, []string{"abc"}, invalid)

	// Range checks belong to the engine, so -1 comes through as is.
	col, err = r.NextMove(ctx, game.NewGame())
	require.NoError(t, err)
	assert.Equal(t, -1, col)
	assert.Equal(t, []string{"abc", ""}, invalid)

	_, err = r.NextMove(ctx, game.NewGame())
	assert.ErrorIs(t, err, io.EOF)
	_, err = r.NextMove(ctx, game.NewGame())
	assert.ErrorIs(t, err, io.EOF)

	assert.Contains(t, prompt.String(), "Red, your move: ")
}

func TestReaderHonoursContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := NewReader(pr, nil)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.NextMove(ctx, game.NewGame())
	assert.ErrorIs(t, err, context.Canceled)
}
