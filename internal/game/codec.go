package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingPlayer          = errors.New("missing player line")
	ErrInvalidPlayerCharacter = errors.New("invalid player character")
	ErrInvalidPieceCharacter  = errors.New("invalid piece character")
	ErrRowTooLong             = errors.New("row too long")
	ErrTooManyRows            = errors.New("too many rows")
)

// ParseError reports the 1-based line a serialized state failed on.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads the text form produced by Serialize. The first line holds the
// player to move ('r' or 'b'); each following line is one column, listed
// left to right, with pieces written bottom to top. Missing upper cells and
// missing trailing columns are empty.
func Parse(text string) (State, error) {
	if text == "" {
		return State{}, &ParseError{Line: 1, Err: ErrMissingPlayer}
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 1+Columns {
		return State{}, &ParseError{Line: len(lines), Err: ErrTooManyRows}
	}

	first := strings.TrimSuffix(lines[0], "\r")
	if len(first) != 1 {
		return State{}, &ParseError{Line: 1, Err: ErrInvalidPlayerCharacter}
	}
	current, ok := playerFromChar(first[0])
	if !ok {
		return State{}, &ParseError{Line: 1, Err: ErrInvalidPlayerCharacter}
	}

	var b Board
	for i, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if len(line) > Rows {
			return State{}, &ParseError{Line: i + 2, Err: ErrRowTooLong}
		}
		for row := 0; row < len(line); row++ {
			p, ok := playerFromChar(line[row])
			if !ok {
				return State{}, &ParseError{Line: i + 2, Err: ErrInvalidPieceCharacter}
			}
			b[i][row] = Piece(p)
		}
	}
	return State{board: b, current: current}, nil
}

// Serialize writes s in the form accepted by Parse, one line per column.
func (s State) Serialize() string {
	var sb strings.Builder
	sb.WriteByte(playerChar(s.CurrentPlayer()))
	for col := 0; col < Columns; col++ {
		sb.WriteByte('\n')
		for row := 0; row < Rows; row++ {
			p, ok := s.board[col][row].Player()
			if !ok {
				break
			}
			sb.WriteByte(playerChar(p))
		}
	}
	return sb.String()
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.Serialize()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func playerFromChar(c byte) (Player, bool) {
	switch c {
	case 'r':
		return Red, true
	case 'b':
		return Blue, true
	}
	return 0, false
}

func playerChar(p Player) byte {
	if p == Blue {
		return 'b'
	}
	return 'r'
}
