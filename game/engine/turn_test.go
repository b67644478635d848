package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayTurn_VerticalWin(t *testing.T) {
	e := New(false)

	moves := []int{0, 1, 0, 1, 0, 1}
	for _, col := range moves {
		res, err := e.PlayTurn(col)
		require.NoError(t, err)
		require.Empty(t, res.Winner)
	}

	res, err := e.PlayTurn(0)
	require.NoError(t, err)
	assert.Equal(t, X, res.Winner)
	assert.Equal(t, Won, e.Status())
	assert.True(t, e.IsGameOver())
	assert.Equal(t, X, e.GetState().Winner)
	assert.Equal(t, []Position{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, e.GetState().WinningLine)
	assert.Equal(t, "Player X wins!", e.GetState().Message)

	_, err = e.PlayTurn(2)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestPlayTurn_ExpandsFullBoardAndKeepsMover(t *testing.T) {
	rows := filledRows(BaseRows, BaseCols, '#')
	rows[0] = ".######"
	e := newTestEngine(t, rows...)

	res, err := e.PlayTurn(0)
	require.NoError(t, err)
	assert.True(t, res.Expanded)
	assert.False(t, res.Draw)
	assert.False(t, res.Skipped)
	assert.Equal(t, X, res.NextPlayer, "the player who filled the board moves first after expanding")
	assert.Equal(t, X, e.GetCurrentPlayer())

	gs := e.GetState()
	assert.Equal(t, ExpandedRows, gs.Rows)
	assert.Equal(t, ExpandedCols, gs.Cols)
	assert.True(t, gs.Expanded)
	assert.Equal(t, Playing, gs.Status)
	assert.Equal(t, PlayerX, gs.Board[5][0].Type)
}

func TestPlayTurn_ExpansionKeepsPendingSkip(t *testing.T) {
	rows := filledRows(BaseRows, BaseCols, '#')
	rows[0] = "S######"
	e := newTestEngine(t, rows...)

	res, err := e.PlayTurn(0)
	require.NoError(t, err)
	require.Equal(t, Skip, res.Drop.PowerUp)
	assert.True(t, res.Expanded)
	assert.False(t, res.Skipped)
	assert.Equal(t, X, res.NextPlayer)
	assert.True(t, e.GetState().SkipNextTurn)

	// the skip is spent on X's next regular turn, so X moves again.
	// Column 8 never gets an expansion power-up.
	res, err = e.PlayTurn(ExpandedCols - 2)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, X, res.NextPlayer)
	assert.False(t, e.GetState().SkipNextTurn)
}

func TestPlayTurn_DrawAfterExpansion(t *testing.T) {
	rows := filledRows(ExpandedRows, ExpandedCols, '#')
	rows[0] = ".#########"
	e := newTestEngine(t, rows...)
	e.GetState().Expanded = true

	res, err := e.PlayTurn(0)
	require.NoError(t, err)
	assert.True(t, res.Draw)
	assert.False(t, res.Expanded)
	assert.Equal(t, Draw, e.Status())
	assert.Equal(t, ExpandedRows, e.GetState().Rows, "board never expands twice")

	_, err = e.DropPiece(1)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestPlayTurn_DrawWithoutExpansion(t *testing.T) {
	config := createTestConfig()
	config.AllowExpansion = false
	e, err := NewEngine(config)
	require.NoError(t, err)

	rows := filledRows(BaseRows, BaseCols, '#')
	rows[0] = "######."
	require.NoError(t, e.SetState(stateFromRows(rows...)))

	res, err := e.PlayTurn(6)
	require.NoError(t, err)
	assert.True(t, res.Draw)
	assert.Equal(t, Draw, e.Status())
	assert.Equal(t, BaseRows, e.GetState().Rows)
}

func TestPlayTurn_BombSkipsOpponent(t *testing.T) {
	e := newTestEngine(t,
		".......",
		".......",
		".......",
		".......",
		".......",
		"B......",
	)

	res, err := e.PlayTurn(0)
	require.NoError(t, err)
	assert.Equal(t, Bomb, res.Drop.PowerUp)
	assert.True(t, res.Skipped)
	assert.Equal(t, X, res.NextPlayer)
	assert.False(t, e.GetState().SkipNextTurn)

	res, err = e.PlayTurn(0)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, O, res.NextPlayer)
}

func TestPlayTurn_InvalidColumnKeepsTurn(t *testing.T) {
	e := New(false)

	_, err := e.PlayTurn(7)
	require.ErrorIs(t, err, ErrInvalidColumn)
	assert.Equal(t, X, e.GetCurrentPlayer())
}

func TestPlayTurn_RandomGames(t *testing.T) {
	for seed := uint64(1); seed <= 30; seed++ {
		config := createTestConfig()
		config.Seed = seed
		config.PowerUpChurn = seed%3 == 0
		e, err := NewEngine(config)
		require.NoError(t, err)

		rng := rand.New(rand.NewPCG(seed, seed))
		expansions := 0

		for turn := 0; turn < 1000 && !e.IsGameOver(); turn++ {
			gs := e.GetState()
			var playable []int
			for col := 0; col < gs.Cols; col++ {
				if _, err := gs.LandingRow(col); err == nil {
					playable = append(playable, col)
				}
			}
			require.NotEmpty(t, playable, "seed %d: playing state with no legal column", seed)

			res, err := e.PlayTurn(playable[rng.IntN(len(playable))])
			require.NoError(t, err)
			if res.Expanded {
				expansions++
			}

			gs = e.GetState()
			require.LessOrEqual(t, gs.Cols, MaxCols)
			require.Len(t, gs.Board, gs.Rows)
			if gs.Status == Draw {
				assert.True(t, gs.IsFull())
				assert.True(t, gs.Expanded)
			}
			if gs.Status == Won {
				winner, ok := e.CheckWinner()
				assert.True(t, ok)
				assert.Equal(t, gs.Winner, winner)
			}
		}

		assert.LessOrEqual(t, expansions, 1, "seed %d", seed)
	}
}
