package engine

import (
	"fmt"
	"strings"
)

// win directions in tie-break order: right, up, up-right, down-right
var winDirections = []struct{ dr, dc int }{
	{0, 1},
	{1, 0},
	{1, 1},
	{-1, 1},
}

// NewBoard creates a rows x cols grid of empty cells
func NewBoard(rows, cols int) [][]Cell {
	board := make([][]Cell, rows)
	for r := range board {
		board[r] = make([]Cell, cols)
		for c := range board[r] {
			board[r][c] = Cell{Type: Empty}
		}
	}
	return board
}

// CloneBoard returns a deep copy of the board
func CloneBoard(board [][]Cell) [][]Cell {
	out := make([][]Cell, len(board))
	for r := range board {
		out[r] = make([]Cell, len(board[r]))
		copy(out[r], board[r])
	}
	return out
}

// Clone returns a deep copy of the state that later moves cannot change
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Board = CloneBoard(gs.Board)
	if gs.WinningLine != nil {
		out.WinningLine = append([]Position(nil), gs.WinningLine...)
	}
	if gs.MoveHistory != nil {
		out.MoveHistory = append([]MoveHistoryEntry{}, gs.MoveHistory...)
	}
	return &out
}

// inBounds reports whether (row, col) addresses a cell of the state's board
func (gs *GameState) inBounds(row, col int) bool {
	return row >= 0 && row < gs.Rows && col >= 0 && col < gs.Cols
}

// FindWinningLine scans the board in row-major order and returns the first
// run of WinLength same-player cells found
func (gs *GameState) FindWinningLine() (Player, []Position, bool) {
	for row := 0; row < gs.Rows; row++ {
		for col := 0; col < gs.Cols; col++ {
			player, ok := gs.Board[row][col].Owner()
			if !ok {
				continue
			}
			for _, d := range winDirections {
				line := []Position{{Row: row, Col: col}}
				for i := 1; i < WinLength; i++ {
					r, c := row+d.dr*i, col+d.dc*i
					if !gs.inBounds(r, c) {
						break
					}
					if p, ok := gs.Board[r][c].Owner(); !ok || p != player {
						break
					}
					line = append(line, Position{Row: r, Col: c})
				}
				if len(line) == WinLength {
					return player, line, true
				}
			}
		}
	}
	return "", nil, false
}

// IsFull reports whether no empty cell remains; power-ups count as occupied
func (gs *GameState) IsFull() bool {
	for _, row := range gs.Board {
		for _, cell := range row {
			if cell.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// CountCellType counts the cells of a given type on the board
func CountCellType(board [][]Cell, cellType CellType) int {
	count := 0
	for _, row := range board {
		for _, cell := range row {
			if cell.Type == cellType {
				count++
			}
		}
	}
	return count
}

// ColumnForKey maps the human-facing keys 1..9,0 to columns 0..9
func ColumnForKey(key rune) (int, bool) {
	switch {
	case key >= '1' && key <= '9':
		return int(key - '1'), true
	case key == '0':
		return 9, true
	}
	return 0, false
}

// KeyForColumn is the inverse of ColumnForKey
func KeyForColumn(col int) (rune, bool) {
	switch {
	case col >= 0 && col <= 8:
		return rune('1' + col), true
	case col == 9:
		return '0', true
	}
	return 0, false
}

// CellChar returns the single-character rendering of a cell
func CellChar(cell Cell) string {
	switch cell.Type {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	case Obstacle:
		return "#"
	case PowerUp:
		switch cell.PowerUp {
		case Bomb:
			return "B"
		case Skip:
			return "S"
		case ObstacleSpawner:
			return "W"
		}
		return "P"
	default:
		return "."
	}
}

// RenderBoard draws the board top row first with the column keys underneath
func RenderBoard(gs *GameState) string {
	var b strings.Builder
	for row := gs.Rows - 1; row >= 0; row-- {
		for col := 0; col < gs.Cols; col++ {
			if col > 0 {
				b.WriteString(" ")
			}
			b.WriteString(CellChar(gs.Board[row][col]))
		}
		b.WriteString("\n")
	}
	for col := 0; col < gs.Cols; col++ {
		if col > 0 {
			b.WriteString(" ")
		}
		key, _ := KeyForColumn(col)
		b.WriteRune(key)
	}
	b.WriteString("\n")
	return b.String()
}

// String returns a compact one-line summary of the state
func (gs *GameState) String() string {
	return fmt.Sprintf("%dx%d status=%s player=%s expanded=%t moves=%d",
		gs.Rows, gs.Cols, gs.Status, gs.CurrentPlayer, gs.Expanded, gs.TotalMoves)
}
