package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/power-four/game/config"
	"github.com/wricardo/power-four/game/engine"
)

const configDir = "../../configs"

func loadPreset(t *testing.T, name string) *engine.GameConfig {
	t.Helper()
	configs, err := config.NewManager(configDir)
	require.NoError(t, err)
	cfg, err := configs.LoadConfig(name)
	require.NoError(t, err)
	return cfg
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 50.0, percent(1, 2))
	assert.Equal(t, 0.0, percent(3, 0))
}

func TestAverageTurns(t *testing.T) {
	assert.Equal(t, 0.0, Stats{}.AverageTurns())
	assert.Equal(t, 12.5, Stats{Games: 2, TotalTurns: 25}.AverageTurns())
}

func TestPlayRandomGameEnds(t *testing.T) {
	cfg := loadPreset(t, "classic")
	cfg.Seed = 42

	outcome, err := playRandomGame(cfg, rand.New(rand.NewPCG(42, 42)))
	require.NoError(t, err)

	assert.NotEqual(t, engine.Playing, outcome.status)
	assert.GreaterOrEqual(t, outcome.turns, 7, "nobody wins before the seventh piece")
	if outcome.status == engine.Won {
		assert.Contains(t, []engine.Player{engine.X, engine.O}, outcome.winner)
	}
}

func TestSimulateIsDeterministic(t *testing.T) {
	cfg := loadPreset(t, "powerups")

	first, err := simulate("powerups", cfg, 20, 7)
	require.NoError(t, err)
	second, err := simulate("powerups", cfg, 20, 7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 20, first.Games)
	assert.Equal(t, 20, first.XWins+first.OWins+first.Draws+first.Unfinished)
	assert.GreaterOrEqual(t, first.Longest, 7)
}

func TestSimulateClassicHasNoPowerUps(t *testing.T) {
	stats, err := simulate("classic", loadPreset(t, "classic"), 25, 1)
	require.NoError(t, err)

	assert.Empty(t, stats.PowerUps)
	assert.Zero(t, stats.Skips)
	assert.Zero(t, stats.Unfinished)
}

func TestSimulateSuddenDeathNeverExpands(t *testing.T) {
	stats, err := simulate("sudden-death", loadPreset(t, "sudden-death"), 25, 1)
	require.NoError(t, err)

	assert.Zero(t, stats.Expansions)
	assert.LessOrEqual(t, stats.Longest, engine.BaseRows*engine.BaseCols)
}

func TestAnalyzeAllPresets(t *testing.T) {
	configs, err := config.NewManager(configDir)
	require.NoError(t, err)

	results, err := analyze(context.Background(), configs, nil, 3, 1)
	require.NoError(t, err)

	var names []string
	for _, s := range results {
		names = append(names, s.Preset)
		assert.Equal(t, 3, s.Games)
	}
	assert.Equal(t, []string{"chaos", "classic", "powerups", "sudden-death"}, names)
}

func TestAnalyzeUnknownPreset(t *testing.T) {
	configs, err := config.NewManager(configDir)
	require.NoError(t, err)

	_, err = analyze(context.Background(), configs, []string{"classic", "nope"}, 1, 1)
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestPrintStats(t *testing.T) {
	var out bytes.Buffer
	err := printStats(&out, []Stats{{
		Preset:     "classic",
		Games:      4,
		XWins:      3,
		OWins:      1,
		TotalTurns: 60,
		Longest:    21,
		PowerUps:   map[engine.PowerUpKind]int{engine.Bomb: 2},
	}})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "PRESET")
	assert.Contains(t, text, "classic")
	assert.Contains(t, text, "75.0%")
	assert.Contains(t, text, "15.0")
}

func TestApp(t *testing.T) {
	t.Run("prints a table", func(t *testing.T) {
		var out bytes.Buffer
		app := newApp()
		app.Writer = &out

		err := app.Run(context.Background(), []string{"analyze", "--config-dir", configDir, "--preset", "classic", "--games", "5"})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "classic")
		assert.NotContains(t, out.String(), "chaos")
	})

	t.Run("rejects zero games", func(t *testing.T) {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		err := app.Run(context.Background(), []string{"analyze", "--config-dir", configDir, "--games", "0"})
		assert.ErrorContains(t, err, "--games")
	})

	t.Run("missing config dir", func(t *testing.T) {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		err := app.Run(context.Background(), []string{"analyze", "--config-dir", "/non/existent/path"})
		assert.Error(t, err)
	})
}
