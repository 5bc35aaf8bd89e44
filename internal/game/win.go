package game

// Coord addresses a single cell.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// axes are the four directions a line can run, as (dCol, dRow):
// horizontal, vertical, diagonal up-right, diagonal up-left.
var axes = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}}

// winningLine returns the run through (col, row) owned by p if any axis
// reaches ToWin, or nil otherwise.
func winningLine(b Board, col, row int, p Player) []Coord {
	for _, d := range axes {
		if line := runAlong(b, col, row, p, d[0], d[1]); len(line) >= ToWin {
			return line
		}
	}
	return nil
}

// runAlong collects the placed cell plus the contiguous cells owned by p in
// both directions of one axis, stopping at an empty cell, an opposing piece
// or the board edge.
func runAlong(b Board, col, row int, p Player, dc, dr int) []Coord {
	line := []Coord{{Col: col, Row: row}}
	walk := func(c, r, dc, dr int) {
		for inBounds(c, r) && b[c][r] == Piece(p) {
			line = append(line, Coord{Col: c, Row: r})
			c += dc
			r += dr
		}
	}
	walk(col+dc, row+dr, dc, dr)
	walk(col-dc, row-dr, -dc, -dr)
	return line
}
