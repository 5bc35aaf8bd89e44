package game

import (
	"errors"
	"strings"
)

const (
	Columns = 7
	Rows    = 6
	ToWin   = 4
)

var (
	ErrPositionOutOfBounds = errors.New("position out of bounds")
	ErrColumnFull          = errors.New("column is full")
)

// Player identifies one of the two sides. Red always moves first.
type Player int

const (
	Red Player = iota + 1
	Blue
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	if p == Red {
		return Blue
	}
	return Red
}

func (p Player) String() string {
	switch p {
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	}
	return "Unknown"
}

// Cell is either Empty or holds a piece belonging to a player.
type Cell int

const Empty Cell = 0

// Piece returns the cell occupied by p.
func Piece(p Player) Cell {
	return Cell(p)
}

// Player reports who owns the cell. ok is false for an empty cell.
func (c Cell) Player() (Player, bool) {
	switch Player(c) {
	case Red, Blue:
		return Player(c), true
	}
	return 0, false
}

func (c Cell) glyph() byte {
	switch Player(c) {
	case Red:
		return 'R'
	case Blue:
		return 'B'
	}
	return '.'
}

// Board is indexed [column][row]; row 0 is the floor.
// Pieces obey gravity: within a column every cell below the first Empty
// cell is occupied.
type Board [Columns][Rows]Cell

// At returns the cell at (col, row). Out of range coordinates read as Empty.
func (b Board) At(col, row int) Cell {
	if !inBounds(col, row) {
		return Empty
	}
	return b[col][row]
}

// Height returns the number of pieces in col, which is also its landing row.
// Columns off the board report Rows, as if full.
func (b Board) Height(col int) int {
	if col < 0 || col >= Columns {
		return Rows
	}
	for row := 0; row < Rows; row++ {
		if b[col][row] == Empty {
			return row
		}
	}
	return Rows
}

// IsFull reports whether every column's top row is occupied.
func (b Board) IsFull() bool {
	for col := 0; col < Columns; col++ {
		if b[col][Rows-1] == Empty {
			return false
		}
	}
	return true
}

// Count returns the number of pieces on the board.
func (b Board) Count() int {
	n := 0
	for col := 0; col < Columns; col++ {
		n += b.Height(col)
	}
	return n
}

// drop returns a copy of b with p's piece in the landing row of col.
func (b Board) drop(col int, p Player) (Board, int, error) {
	if col < 0 || col >= Columns {
		return b, -1, ErrPositionOutOfBounds
	}
	row := b.Height(col)
	if row == Rows {
		return b, -1, ErrColumnFull
	}
	b[col][row] = Piece(p)
	return b, row, nil
}

// String renders the grid top row first, one glyph per cell.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(Rows * (Columns + 1))
	for row := Rows - 1; row >= 0; row-- {
		for col := 0; col < Columns; col++ {
			sb.WriteByte(b[col][row].glyph())
		}
		if row > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func inBounds(col, row int) bool {
	return col >= 0 && col < Columns && row >= 0 && row < Rows
}
