package engine

import "fmt"

// markFor returns the cell a player's piece occupies
func markFor(p Player) Cell {
	if p == O {
		return Cell{Type: PlayerO}
	}
	return Cell{Type: PlayerX}
}

// Opponent returns the other player
func Opponent(p Player) Player {
	if p == X {
		return O
	}
	return X
}

// LandingRow finds where a piece dropped into col would come to rest.
// Rows are scanned bottom to top; an empty cell or a power-up is a landing
// cell, and a piece may rest on top of an obstacle when the cell above it is
// empty.
func (gs *GameState) LandingRow(col int) (int, error) {
	if col < 0 || col >= gs.Cols {
		return 0, fmt.Errorf("%w: %d is outside 0-%d", ErrInvalidColumn, col, gs.Cols-1)
	}

	for row := 0; row < gs.Rows; row++ {
		cell := gs.Board[row][col]

		if cell.IsEmpty() || cell.IsPowerUp() {
			if row > 0 && gs.Board[row-1][col].Type == Obstacle && cell.IsEmpty() {
				return 0, fmt.Errorf("column %d: %w", col, ErrBlockedByObstacle)
			}
			return row, nil
		}

		if cell.Type == Obstacle && row+1 < gs.Rows && gs.Board[row+1][col].IsEmpty() {
			return row + 1, nil
		}
	}

	return 0, fmt.Errorf("column %d: %w", col, ErrColumnFull)
}

// DropPiece places the current player's piece in col, resolving any power-up
// at the landing cell first. It neither switches turns nor checks for a
// winner. The board is unchanged when an error is returned.
func (gs *GameState) DropPiece(col int) (DropResult, error) {
	if gs.Status != Playing {
		return DropResult{}, ErrGameOver
	}

	row, err := gs.LandingRow(col)
	if err != nil {
		return DropResult{}, err
	}

	result := DropResult{
		Row:    row,
		Col:    col,
		Player: gs.CurrentPlayer,
	}

	landing := gs.Board[row][col]
	if landing.IsPowerUp() && gs.PowerUpsEnabled {
		result.PowerUp = landing.PowerUp
		gs.resolvePowerUp(&result)
		if result.PowerUp == Bomb {
			return result, nil
		}
	}

	gs.Board[row][col] = markFor(gs.CurrentPlayer)
	result.Placed = true
	return result, nil
}

// SwitchPlayer passes the turn unless a skip is pending, in which case the
// pending skip is consumed and the current player moves again
func (gs *GameState) SwitchPlayer() {
	if gs.Status != Playing {
		return
	}
	if gs.SkipNextTurn {
		gs.SkipNextTurn = false
		return
	}
	gs.CurrentPlayer = Opponent(gs.CurrentPlayer)
}
