package engine

import "math/rand/v2"

// resolvePowerUp applies the effect of the power-up at the landing cell
func (gs *GameState) resolvePowerUp(result *DropResult) {
	row, col := result.Row, result.Col

	switch result.PowerUp {
	case Bomb:
		gs.Board[row][col] = Cell{Type: Empty}
		result.Cleared = append(result.Cleared, Position{Row: row, Col: col})
		if row > 0 {
			gs.Board[row-1][col] = Cell{Type: Empty}
			result.Cleared = append(result.Cleared, Position{Row: row - 1, Col: col})
		}
		gs.SkipNextTurn = true

	case Skip:
		gs.SkipNextTurn = true

	case ObstacleSpawner:
		for _, c := range []int{col - 1, col + 1} {
			if c < 0 || c >= gs.Cols {
				continue
			}
			neighbour := gs.Board[row][c]
			if !neighbour.IsEmpty() && !neighbour.IsPowerUp() {
				continue
			}
			gs.Board[row][c] = Cell{Type: Empty}
			result.Obstacles = append(result.Obstacles, gs.dropObstacle(row, c))
		}
	}
}

// dropObstacle lets an obstacle fall from (row, col) through empty cells
func (gs *GameState) dropObstacle(row, col int) Position {
	for row > 0 && gs.Board[row-1][col].IsEmpty() {
		row--
	}
	gs.Board[row][col] = Cell{Type: Obstacle}
	return Position{Row: row, Col: col}
}

// seedPowerUps places up to n power-ups of random kind on distinct empty
// cells at or above minRow, never in excludeCol (use -1 to allow every
// column). Cells are rejection sampled.
func (gs *GameState) seedPowerUps(rng *rand.Rand, n, minRow, excludeCol int) []Position {
	eligible := 0
	for r := minRow; r < gs.Rows; r++ {
		for c := 0; c < gs.Cols; c++ {
			if c != excludeCol && gs.Board[r][c].IsEmpty() {
				eligible++
			}
		}
	}
	if n > eligible {
		n = eligible
	}

	placed := make([]Position, 0, n)
	for len(placed) < n {
		r := minRow + rng.IntN(gs.Rows-minRow)
		c := rng.IntN(gs.Cols)
		if c == excludeCol || !gs.Board[r][c].IsEmpty() {
			continue
		}
		gs.Board[r][c] = Cell{
			Type:    PowerUp,
			PowerUp: PowerUpKinds[rng.IntN(len(PowerUpKinds))],
		}
		placed = append(placed, Position{Row: r, Col: c})
	}
	return placed
}

// clearPowerUps removes every untriggered power-up from the board
func (gs *GameState) clearPowerUps() int {
	removed := 0
	for r := range gs.Board {
		for c := range gs.Board[r] {
			if gs.Board[r][c].IsPowerUp() {
				gs.Board[r][c] = Cell{Type: Empty}
				removed++
			}
		}
	}
	return removed
}

// spawnRestingPowerUp tries a few random columns and places one power-up on
// top of the first column's stack that has room
func (gs *GameState) spawnRestingPowerUp(rng *rand.Rand) (Position, bool) {
	for attempt := 0; attempt < 10; attempt++ {
		col := rng.IntN(gs.Cols)
		for row := 0; row < gs.Rows; row++ {
			if !gs.Board[row][col].IsEmpty() {
				continue
			}
			if row == 0 || !gs.Board[row-1][col].IsEmpty() {
				gs.Board[row][col] = Cell{
					Type:    PowerUp,
					PowerUp: PowerUpKinds[rng.IntN(len(PowerUpKinds))],
				}
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}
