package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// boardFromRows builds a board from rows written top row first.
// '.' empty, 'X'/'O' pieces, '#' obstacle, 'B'/'S'/'W' power-ups.
func boardFromRows(rows ...string) [][]Cell {
	board := make([][]Cell, len(rows))
	for i, line := range rows {
		r := len(rows) - 1 - i
		board[r] = make([]Cell, len(line))
		for c, ch := range line {
			switch ch {
			case 'X':
				board[r][c] = Cell{Type: PlayerX}
			case 'O':
				board[r][c] = Cell{Type: PlayerO}
			case '#':
				board[r][c] = Cell{Type: Obstacle}
			case 'B':
				board[r][c] = Cell{Type: PowerUp, PowerUp: Bomb}
			case 'S':
				board[r][c] = Cell{Type: PowerUp, PowerUp: Skip}
			case 'W':
				board[r][c] = Cell{Type: PowerUp, PowerUp: ObstacleSpawner}
			default:
				board[r][c] = Cell{Type: Empty}
			}
		}
	}
	return board
}

func stateFromRows(rows ...string) *GameState {
	board := boardFromRows(rows...)
	return &GameState{
		Board:           board,
		Rows:            len(board),
		Cols:            len(board[0]),
		CurrentPlayer:   X,
		PowerUpsEnabled: true,
		Status:          Playing,
		MoveHistory:     []MoveHistoryEntry{},
	}
}

func createTestConfig() *GameConfig {
	config := DefaultConfig()
	config.Name = "engine-test"
	config.Description = "Configuration for engine tests"
	config.PowerUpsEnabled = true
	config.Seed = 42
	return config
}

// newTestEngine returns an engine with power-ups enabled whose board is
// replaced by the given rows
func newTestEngine(t *testing.T, rows ...string) *GameEngine {
	t.Helper()
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)
	require.NoError(t, e.SetState(stateFromRows(rows...)))
	return e
}

func filledRows(rows, cols int, ch byte) []string {
	out := make([]string, rows)
	for i := range out {
		b := make([]byte, cols)
		for j := range b {
			b[j] = ch
		}
		out[i] = string(b)
	}
	return out
}
