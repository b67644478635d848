package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBomb_ClearsLandingAndBelow(t *testing.T) {
	e := newTestEngine(t,
		".......",
		".......",
		".......",
		".......",
		"...B...",
		"...O...",
	)

	res, err := e.DropPiece(3)
	require.NoError(t, err)
	assert.Equal(t, Bomb, res.PowerUp)
	assert.Equal(t, 1, res.Row)
	assert.False(t, res.Placed)
	assert.ElementsMatch(t, []Position{{1, 3}, {0, 3}}, res.Cleared)

	board := e.GetBoard()
	assert.Equal(t, Empty, board[1][3].Type)
	assert.Equal(t, Empty, board[0][3].Type)
	assert.True(t, e.GetState().SkipNextTurn)

	e.SwitchPlayer()
	assert.Equal(t, X, e.GetCurrentPlayer(), "bomb costs the opponent their turn")
}

func TestBomb_BottomRow(t *testing.T) {
	e := newTestEngine(t,
		".......",
		".......",
		".......",
		".......",
		".......",
		"B......",
	)

	res, err := e.DropPiece(0)
	require.NoError(t, err)
	assert.Equal(t, []Position{{0, 0}}, res.Cleared)
	assert.Equal(t, 0, CountCellType(e.GetBoard(), PlayerX))
}

func TestSkip_PlacesPieceAndSkipsOpponent(t *testing.T) {
	e := newTestEngine(t,
		".......",
		".......",
		".......",
		".......",
		".......",
		"...S...",
	)

	res, err := e.DropPiece(3)
	require.NoError(t, err)
	assert.Equal(t, Skip, res.PowerUp)
	assert.True(t, res.Placed)
	assert.Equal(t, PlayerX, e.GetBoard()[0][3].Type)

	e.SwitchPlayer()
	assert.Equal(t, X, e.GetCurrentPlayer())
	e.SwitchPlayer()
	assert.Equal(t, O, e.GetCurrentPlayer())
}

func TestObstacleSpawner_DropsObstaclesUnderGravity(t *testing.T) {
	e := newTestEngine(t,
		".......",
		".......",
		".......",
		"...WX..",
		"...OX..",
		"..OXO..",
	)

	res, err := e.DropPiece(3)
	require.NoError(t, err)
	assert.Equal(t, ObstacleSpawner, res.PowerUp)
	assert.Equal(t, 2, res.Row)
	assert.True(t, res.Placed)
	assert.Equal(t, []Position{{1, 2}}, res.Obstacles)

	board := e.GetBoard()
	assert.Equal(t, Obstacle, board[1][2].Type, "obstacle falls to the lowest reachable slot")
	assert.Equal(t, Empty, board[2][2].Type)
	assert.Equal(t, PlayerX, board[2][4].Type, "occupied neighbour is left alone")
	assert.Equal(t, PlayerX, board[2][3].Type)
}

func TestObstacleSpawner_ConsumesNeighbourPowerUp(t *testing.T) {
	e := newTestEngine(t,
		".......",
		".......",
		".......",
		".......",
		".......",
		"..SW...",
	)

	res, err := e.DropPiece(3)
	require.NoError(t, err)
	assert.Equal(t, []Position{{0, 2}, {0, 4}}, res.Obstacles)

	board := e.GetBoard()
	assert.Equal(t, Obstacle, board[0][2].Type)
	assert.Equal(t, Obstacle, board[0][4].Type)
	assert.False(t, e.GetState().SkipNextTurn, "consumed power-up does not trigger")
}

func TestObstacleSpawner_EdgeColumn(t *testing.T) {
	e := newTestEngine(t,
		".......",
		".......",
		".......",
		".......",
		".......",
		"W......",
	)

	res, err := e.DropPiece(0)
	require.NoError(t, err)
	assert.Equal(t, []Position{{0, 1}}, res.Obstacles)
}

func TestPowerUpsDisabled_PieceOverwritesPowerUp(t *testing.T) {
	gs := stateFromRows(
		".......",
		".......",
		".......",
		".......",
		".......",
		"B......",
	)
	gs.PowerUpsEnabled = false

	res, err := gs.DropPiece(0)
	require.NoError(t, err)
	assert.Empty(t, res.PowerUp)
	assert.True(t, res.Placed)
	assert.Equal(t, PlayerX, gs.Board[0][0].Type)
	assert.False(t, gs.SkipNextTurn)
}

func TestNew_SeedsPowerUps(t *testing.T) {
	e := New(true)
	board := e.GetBoard()
	assert.Equal(t, DefaultPowerUpCount, CountCellType(board, PowerUp))
	for _, row := range board {
		for _, cell := range row {
			if cell.IsPowerUp() {
				assert.Contains(t, PowerUpKinds, cell.PowerUp)
			}
		}
	}

	assert.Zero(t, CountCellType(New(false).GetBoard(), PowerUp))
}

func TestSeededConfigIsDeterministic(t *testing.T) {
	a, err := NewEngine(createTestConfig())
	require.NoError(t, err)
	b, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	assert.Equal(t, a.GetBoard(), b.GetBoard())
}

func TestSeedPowerUps_CappedByEmptyCells(t *testing.T) {
	e := New(false)
	gs := stateFromRows(
		"#.#.",
		"####",
		"####",
		"####",
	)

	placed := gs.seedPowerUps(e.rng, 5, 0, -1)
	assert.Len(t, placed, 2)
	assert.True(t, gs.IsFull())
}

func TestChurnPowerUps(t *testing.T) {
	config := createTestConfig()
	config.PowerUpChurn = true
	e, err := NewEngine(config)
	require.NoError(t, err)

	_, err = e.DropPiece(2)
	require.NoError(t, err)

	spawned := 0
	for i := 0; i < 200; i++ {
		if e.ChurnPowerUps() {
			spawned++
		}
		board := e.GetBoard()
		require.LessOrEqual(t, CountCellType(board, PowerUp), 1)
		for r, row := range board {
			for c, cell := range row {
				if cell.IsPowerUp() {
					resting := r == 0 || !board[r-1][c].IsEmpty()
					assert.True(t, resting, "power-up at %d,%d is floating", r, c)
				}
			}
		}
	}
	assert.Positive(t, spawned)
	assert.Less(t, spawned, 200)
}

func TestChurnPowerUps_DisabledIsNoop(t *testing.T) {
	e := New(false)
	e.GetState().Board[0][0] = Cell{Type: PowerUp, PowerUp: Skip}

	assert.False(t, e.ChurnPowerUps())
	assert.Equal(t, 1, CountCellType(e.GetBoard(), PowerUp))
}
