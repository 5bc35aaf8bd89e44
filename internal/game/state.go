package game

// Outcome tags the result of a successful move.
type Outcome int

const (
	Continue Outcome = iota
	Win
	Tie
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Win:
		return "win"
	case Tie:
		return "tie"
	}
	return "unknown"
}

// Terminal reports whether no further moves should be played.
func (o Outcome) Terminal() bool {
	return o == Win || o == Tie
}

// State is one board position plus the player to move. It is a value:
// every transition returns a new State and never touches the receiver.
type State struct {
	board   Board
	current Player
}

// MoveResult describes a move that was accepted by PlayPiece.
type MoveResult struct {
	State   State
	Outcome Outcome
	Mover   Player
	Column  int
	Row     int
	// Line holds the winning run when Outcome is Win.
	Line []Coord
}

// NewGame returns an empty board with Red to move.
func NewGame() State {
	return State{current: Red}
}

// FromBoard builds a State from an arbitrary board. It does not check that
// the position is reachable. A current player other than Red or Blue is
// taken as Red.
func FromBoard(b Board, current Player) State {
	return State{board: b, current: current}
}

// CurrentPlayer returns the player to move. The zero State has Red to move.
func (s State) CurrentPlayer() Player {
	if s.current != Blue {
		return Red
	}
	return Blue
}

// Board returns a copy of the board.
func (s State) Board() Board {
	return s.board
}

func (s State) IsFull() bool {
	return s.board.IsFull()
}

// Moves returns the number of pieces played so far.
func (s State) Moves() int {
	return s.board.Count()
}

// ValidColumns lists the columns that can still take a piece.
func (s State) ValidColumns() []int {
	cols := make([]int, 0, Columns)
	for col := 0; col < Columns; col++ {
		if s.board[col][Rows-1] == Empty {
			cols = append(cols, col)
		}
	}
	return cols
}

// PlayPiece drops the current player's piece into column. A full board
// reports Tie even when the same piece also completes a line.
func (s State) PlayPiece(column int) (MoveResult, error) {
	mover := s.CurrentPlayer()
	board, row, err := s.board.drop(column, mover)
	if err != nil {
		return MoveResult{}, err
	}

	res := MoveResult{
		State:   State{board: board, current: mover.Opponent()},
		Outcome: Continue,
		Mover:   mover,
		Column:  column,
		Row:     row,
	}
	if board.IsFull() {
		res.Outcome = Tie
		return res, nil
	}
	if line := winningLine(board, column, row, mover); line != nil {
		res.Outcome = Win
		res.Line = line
	}
	return res, nil
}

// String renders the board followed by the name of the player to move.
func (s State) String() string {
	return s.board.String() + "\n" + s.CurrentPlayer().String()
}
