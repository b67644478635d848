package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the classic rules: 6x7 growing once to 10x10, power-ups off
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:                    "classic",
		Description:             "Four in a row on a 6x7 board that grows to 10x10 once when it fills up",
		Rows:                    BaseRows,
		Cols:                    BaseCols,
		ExpandedRows:            ExpandedRows,
		ExpandedCols:            ExpandedCols,
		AllowExpansion:          true,
		PowerUpsEnabled:         false,
		PowerUpCount:            DefaultPowerUpCount,
		ExpansionPowerUpDivisor: DefaultExpansionPowerUpDivisor,
		Messages: Messages{
			Welcome:   "Welcome to Power Four! Connect four pieces in a row to win.",
			Turn:      "Player %s to move",
			Victory:   "Player %s wins!",
			Draw:      "The board is full. It's a draw!",
			Expanded:  "The board is full! Expanding to a bigger board...",
			Bomb:      "Boom! A bomb cleared the column and the next turn is skipped.",
			Skip:      "Skip! The opponent loses their next turn.",
			Obstacles: "Obstacles dropped next to the piece!",
		},
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate board size
	if config.Rows < MinRows {
		return fmt.Errorf("config validation: rows must be at least %d, got %d", MinRows, config.Rows)
	}
	if config.Cols < MinCols || config.Cols > MaxCols {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinCols, MaxCols, config.Cols)
	}
	if config.AllowExpansion {
		if config.ExpandedRows < config.Rows || config.ExpandedCols < config.Cols {
			return fmt.Errorf("config validation: expanded board %dx%d must not be smaller than %dx%d",
				config.ExpandedRows, config.ExpandedCols, config.Rows, config.Cols)
		}
		if config.ExpandedCols > MaxCols {
			return fmt.Errorf("config validation: expanded_cols must be at most %d, got %d", MaxCols, config.ExpandedCols)
		}
		if config.ExpandedRows*config.ExpandedCols == config.Rows*config.Cols {
			return fmt.Errorf("config validation: expanded board must add cells when allow_expansion is true")
		}
	}

	// Validate power-ups
	if config.PowerUpCount < 0 || config.PowerUpCount > config.Rows*config.Cols {
		return fmt.Errorf("config validation: power_up_count must be between 0 and %d, got %d",
			config.Rows*config.Cols, config.PowerUpCount)
	}
	if config.ExpansionPowerUpDivisor < 0 {
		return fmt.Errorf("config validation: expansion_power_up_divisor must not be negative, got %d",
			config.ExpansionPowerUpDivisor)
	}
	if config.PowerUpChurn && !config.PowerUpsEnabled {
		return fmt.Errorf("config validation: power_up_churn requires power_ups_enabled")
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Draw == "" {
		return fmt.Errorf("config validation: messages.draw is required")
	}
	if config.AllowExpansion && config.Messages.Expanded == "" {
		return fmt.Errorf("config validation: messages.expanded is required when allow_expansion is true")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Victory, "%s") {
		return fmt.Errorf("config validation: messages.victory must contain %%s for the winner")
	}
	if config.Messages.Turn != "" && !strings.Contains(config.Messages.Turn, "%s") {
		return fmt.Errorf("config validation: messages.turn must contain %%s for the player")
	}

	return nil
}

// ParseGameConfig decodes a configuration, picking YAML or JSON by file extension
func ParseGameConfig(filename string, data []byte) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(configPath, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// InitGameStateFromConfig creates a new game state using the provided
// configuration, seeding power-ups with rng when they are enabled
func InitGameStateFromConfig(config *GameConfig, rng *rand.Rand) *GameState {
	if config == nil {
		config = DefaultConfig()
	}
	if rng == nil {
		rng = newRand(config.Seed)
	}

	state := &GameState{
		Board:           NewBoard(config.Rows, config.Cols),
		Rows:            config.Rows,
		Cols:            config.Cols,
		CurrentPlayer:   X,
		PowerUpsEnabled: config.PowerUpsEnabled,
		Status:          Playing,
		Message:         config.Messages.Welcome,
		ConfigName:      config.Name,
		MoveHistory:     []MoveHistoryEntry{},
	}

	if config.PowerUpsEnabled {
		state.seedPowerUps(rng, config.PowerUpCount, 0, -1)
	}

	return state
}
