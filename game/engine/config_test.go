package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GameConfig)
		wantErr string
	}{
		{"valid", func(c *GameConfig) {}, ""},
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"missing description", func(c *GameConfig) { c.Description = "" }, "description is required"},
		{"too few rows", func(c *GameConfig) { c.Rows = 3 }, "rows must be at least"},
		{"too many cols", func(c *GameConfig) { c.Cols = 11 }, "cols must be between"},
		{"expansion shrinks", func(c *GameConfig) { c.ExpandedRows = 5 }, "must not be smaller"},
		{"expansion too wide", func(c *GameConfig) { c.ExpandedCols = 12 }, "expanded_cols must be at most"},
		{"expansion adds nothing", func(c *GameConfig) {
			c.ExpandedRows, c.ExpandedCols = c.Rows, c.Cols
		}, "must add cells"},
		{"expansion sizes ignored when disabled", func(c *GameConfig) {
			c.AllowExpansion = false
			c.ExpandedRows, c.ExpandedCols = 0, 0
		}, ""},
		{"too many power-ups", func(c *GameConfig) { c.PowerUpCount = 43 }, "power_up_count must be between"},
		{"negative divisor", func(c *GameConfig) { c.ExpansionPowerUpDivisor = -1 }, "must not be negative"},
		{"churn without power-ups", func(c *GameConfig) {
			c.PowerUpsEnabled = false
			c.PowerUpChurn = true
		}, "power_up_churn requires"},
		{"missing welcome", func(c *GameConfig) { c.Messages.Welcome = "" }, "messages.welcome is required"},
		{"missing draw", func(c *GameConfig) { c.Messages.Draw = "" }, "messages.draw is required"},
		{"missing expanded", func(c *GameConfig) { c.Messages.Expanded = "" }, "messages.expanded is required"},
		{"victory without verb", func(c *GameConfig) { c.Messages.Victory = "Winner!" }, "messages.victory must contain"},
		{"turn without verb", func(c *GameConfig) { c.Messages.Turn = "Next" }, "messages.turn must contain"},
		{"empty turn allowed", func(c *GameConfig) { c.Messages.Turn = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createTestConfig()
			tt.mutate(config)
			err := ValidateGameConfig(config)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "classic.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"name": "classic",
		"description": "JSON preset",
		"rows": 6,
		"cols": 7,
		"expanded_rows": 10,
		"expanded_cols": 10,
		"allow_expansion": true,
		"power_ups_enabled": false,
		"power_up_count": 6,
		"expansion_power_up_divisor": 10,
		"messages": {
			"welcome": "hi",
			"turn": "Player %s",
			"victory": "%s wins",
			"draw": "draw",
			"expanded": "bigger"
		}
	}`), 0644))

	yamlPath := filepath.Join(dir, "chaos.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`name: chaos
description: YAML preset
rows: 6
cols: 7
expanded_rows: 10
expanded_cols: 10
allow_expansion: true
power_ups_enabled: true
power_up_count: 8
expansion_power_up_divisor: 10
power_up_churn: true
seed: 7
messages:
  welcome: hi
  turn: "Player %s"
  victory: "%s wins"
  draw: draw
  expanded: bigger
`), 0644))

	config, err := LoadGameConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "classic", config.Name)
	assert.False(t, config.PowerUpsEnabled)
	assert.Equal(t, "bigger", config.Messages.Expanded)

	config, err = LoadGameConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "chaos", config.Name)
	assert.True(t, config.PowerUpChurn)
	assert.Equal(t, 8, config.PowerUpCount)
	assert.Equal(t, uint64(7), config.Seed)

	_, err = LoadGameConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{not json`), 0644))
	_, err = LoadGameConfig(badPath)
	assert.Error(t, err)
}

func TestLoadGameConfig_ConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	data := []byte("name: over\ndescription: d\nrows: 6\ncols: 7\nexpanded_rows: 10\nexpanded_cols: 10\n" +
		"allow_expansion: true\nmessages:\n  welcome: w\n  victory: \"%s\"\n  draw: d\n  expanded: e\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "over.yml"), data, 0644))

	config, err := LoadGameConfig("configs/over.yml")
	require.NoError(t, err)
	assert.Equal(t, "over", config.Name)
}

func TestInitGameStateFromConfig(t *testing.T) {
	state := InitGameStateFromConfig(nil, nil)
	assert.Equal(t, "classic", state.ConfigName)
	assert.Equal(t, BaseRows, state.Rows)
	assert.Equal(t, BaseCols, state.Cols)
	assert.Equal(t, X, state.CurrentPlayer)
	assert.Equal(t, Playing, state.Status)
	assert.NotNil(t, state.MoveHistory)
	assert.Zero(t, CountCellType(state.Board, PowerUp))

	config := createTestConfig()
	config.PowerUpCount = 3
	state = InitGameStateFromConfig(config, nil)
	assert.Equal(t, 3, CountCellType(state.Board, PowerUp))
	assert.True(t, state.PowerUpsEnabled)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidateGameConfig(DefaultConfig()))
}
