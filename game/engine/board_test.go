package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindWinningLine_Directions(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want Player
		line []Position
	}{
		{
			name: "horizontal",
			rows: []string{
				".......",
				".......",
				".......",
				".......",
				".......",
				"..XXXX.",
			},
			want: X,
			line: []Position{{0, 2}, {0, 3}, {0, 4}, {0, 5}},
		},
		{
			name: "vertical",
			rows: []string{
				".......",
				".......",
				"......O",
				"......O",
				"......O",
				"X.....O",
			},
			want: O,
			line: []Position{{0, 6}, {1, 6}, {2, 6}, {3, 6}},
		},
		{
			name: "diagonal up-right",
			rows: []string{
				".......",
				".......",
				"...X...",
				"..XO...",
				".XOO...",
				"XOOO...",
			},
			want: X,
			line: []Position{{0, 0}, {1, 1}, {2, 2}, {3, 3}},
		},
		{
			name: "diagonal down-right",
			rows: []string{
				".......",
				".......",
				"O......",
				"XO.....",
				"XXO....",
				"XXXO...",
			},
			want: O,
			line: []Position{{3, 0}, {2, 1}, {1, 2}, {0, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := stateFromRows(tt.rows...)
			player, line, ok := gs.FindWinningLine()
			require.True(t, ok)
			assert.Equal(t, tt.want, player)
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestFindWinningLine_NoWin(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"empty", []string{".......", ".......", ".......", ".......", ".......", "......."}},
		{"three in a row", []string{".......", ".......", ".......", ".......", ".......", "XXX.XXX"}},
		{"broken by obstacle", []string{".......", ".......", ".......", ".......", ".......", "XX#XX.."}},
		{"broken by power-up", []string{".......", ".......", ".......", ".......", ".......", "XXBX..."}},
		{"mixed players", []string{".......", ".......", ".......", ".......", ".......", "XXOXX.."}},
		{"obstacles never win", []string{".......", ".......", ".......", ".......", ".......", "####..."}},
		{"power-ups never win", []string{".......", ".......", ".......", "S......", "S......", "SSSS..."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := stateFromRows(tt.rows...).FindWinningLine()
			assert.False(t, ok)
		})
	}
}

func TestFindWinningLine_TieBreak(t *testing.T) {
	// the earlier start cell in row-major order wins
	gs := stateFromRows(
		".......",
		".......",
		"O......",
		"O......",
		"O......",
		"OXXXX..",
	)
	player, _, ok := gs.FindWinningLine()
	require.True(t, ok)
	assert.Equal(t, O, player)

	// horizontal is checked before vertical from the same start cell
	gs = stateFromRows(
		".......",
		".......",
		"X......",
		"X......",
		"X......",
		"XXXX...",
	)
	_, line, ok := gs.FindWinningLine()
	require.True(t, ok)
	assert.Equal(t, []Position{{0, 0}, {0, 1}, {0, 2}, {0, 3}}, line)
}

func TestIsFull(t *testing.T) {
	gs := stateFromRows(filledRows(BaseRows, BaseCols, '#')...)
	assert.True(t, gs.IsFull())

	gs.Board[3][3] = Cell{Type: PowerUp, PowerUp: Skip}
	gs.Board[5][0] = Cell{Type: PowerUp, PowerUp: Bomb}
	assert.True(t, gs.IsFull(), "power-ups count as occupied")

	gs.Board[5][6] = Cell{Type: Empty}
	assert.False(t, gs.IsFull())
}

func TestColumnForKey(t *testing.T) {
	tests := []struct {
		key  rune
		col  int
		good bool
	}{
		{'1', 0, true},
		{'7', 6, true},
		{'9', 8, true},
		{'0', 9, true},
		{'a', 0, false},
		{' ', 0, false},
	}

	for _, tt := range tests {
		col, ok := ColumnForKey(tt.key)
		assert.Equal(t, tt.good, ok, "key %q", tt.key)
		if tt.good {
			assert.Equal(t, tt.col, col, "key %q", tt.key)
			key, ok := KeyForColumn(col)
			assert.True(t, ok)
			assert.Equal(t, tt.key, key)
		}
	}

	_, ok := KeyForColumn(10)
	assert.False(t, ok)
}

func TestRenderBoard(t *testing.T) {
	gs := stateFromRows(
		".......",
		".......",
		".......",
		".......",
		"O......",
		"XB#....",
	)
	out := RenderBoard(gs)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	require.Len(t, lines, BaseRows+1)
	assert.Equal(t, ". . . . . . .", lines[0])
	assert.Equal(t, "O . . . . . .", lines[4])
	assert.Equal(t, "X B # . . . .", lines[5])
	assert.Equal(t, "1 2 3 4 5 6 7", lines[6])
}

func TestCountCellType(t *testing.T) {
	board := boardFromRows("X.#", "OSW")
	assert.Equal(t, 1, CountCellType(board, PlayerX))
	assert.Equal(t, 2, CountCellType(board, PowerUp))
	assert.Equal(t, 1, CountCellType(board, Empty))
}
