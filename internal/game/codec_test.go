package game

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("player only", func(t *testing.T) {
		s := mustParse(t, "b")
		assert.Equal(t, Blue, s.CurrentPlayer())
		assert.Equal(t, Board{}, s.Board())
	})

	t.Run("columns read bottom to top", func(t *testing.T) {
		s := mustParse(t, "r\nrb\n\nbbr")
		b := s.Board()
		assert.Equal(t, Piece(Red), b[0][0])
		assert.Equal(t, Piece(Blue), b[0][1])
		assert.Equal(t, Empty, b[0][2])
		assert.Equal(t, Empty, b[1][0])
		assert.Equal(t, Piece(Blue), b[2][0])
		assert.Equal(t, Piece(Red), b[2][2])
		assert.Equal(t, 5, s.Moves())
	})

	t.Run("trailing newline and carriage returns", func(t *testing.T) {
		want := mustParse(t, "r\nrb\nb")
		assert.Equal(t, want, mustParse(t, "r\nrb\nb\n"))
		assert.Equal(t, want, mustParse(t, "r\r\nrb\r\nb\r\n"))
	})

	t.Run("every column listed", func(t *testing.T) {
		s := mustParse(t, "r"+strings.Repeat("\nrb", Columns))
		assert.Equal(t, 2*Columns, s.Moves())
	})

	t.Run("player line plus one line per column", func(t *testing.T) {
		// 1+Columns lines is the largest input; the last column can be full.
		text := "b" + strings.Repeat("\n", Columns-1) + "\nrbrbrb"
		require.Len(t, strings.Split(text, "\n"), 1+Columns)
		s := mustParse(t, text)
		assert.Equal(t, Rows, s.Board().Height(Columns-1))
		assert.Equal(t, text, s.Serialize())
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
		line int
	}{
		{"empty input", "", ErrMissingPlayer, 1},
		{"unknown player", "x", ErrInvalidPlayerCharacter, 1},
		{"uppercase player", "R\nr", ErrInvalidPlayerCharacter, 1},
		{"two player characters", "rb", ErrInvalidPlayerCharacter, 1},
		{"blank player line", "\nrb", ErrInvalidPlayerCharacter, 1},
		{"unknown piece", "r\nrb\nrx", ErrInvalidPieceCharacter, 3},
		{"gap in column", "r\nr.b", ErrInvalidPieceCharacter, 2},
		{"column too tall", "r\nrbrbrbr", ErrRowTooLong, 2},
		{"too many columns", "r" + strings.Repeat("\nr", Columns+1), ErrTooManyRows, Columns + 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.text)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, State{}, s)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestSerialize(t *testing.T) {
	res := playAll(t, NewGame(), 0, 0, 2)
	assert.Equal(t, "b\nrb\n\nr\n\n\n\n", res.State.Serialize())
	assert.Equal(t, "r\n\n\n\n\n\n\n", NewGame().Serialize())
}

func TestSerializeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for game := 0; game < 20; game++ {
		s := NewGame()
		for {
			text := s.Serialize()
			parsed, err := Parse(text)
			require.NoError(t, err, text)
			require.Equal(t, s, parsed, text)

			cols := s.ValidColumns()
			res, err := s.PlayPiece(cols[rng.IntN(len(cols))])
			require.NoError(t, err)
			if res.Outcome.Terminal() {
				parsed, err := Parse(res.State.Serialize())
				require.NoError(t, err)
				require.Equal(t, res.State, parsed)
				break
			}
			s = res.State
		}
	}
}

func TestTextMarshaling(t *testing.T) {
	s := mustParse(t, "b\nr\nrb")
	text, err := s.MarshalText()
	require.NoError(t, err)

	var got State
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, s, got)

	assert.ErrorIs(t, got.UnmarshalText([]byte("q")), ErrInvalidPlayerCharacter)
	assert.Equal(t, s, got, "failed unmarshal must leave the value alone")
}
