package engine

import "errors"

// CellType represents the content of a single board cell
type CellType string

const (
	Empty    CellType = "empty"
	PlayerX  CellType = "x"
	PlayerO  CellType = "o"
	Obstacle CellType = "obstacle"
	PowerUp  CellType = "power_up"
)

// PowerUpKind identifies what a power-up cell does when landed on
type PowerUpKind string

const (
	Bomb            PowerUpKind = "bomb"
	Skip            PowerUpKind = "skip"
	ObstacleSpawner PowerUpKind = "obstacle_spawner"
)

// PowerUpKinds lists every power-up kind in seeding order
var PowerUpKinds = []PowerUpKind{Bomb, Skip, ObstacleSpawner}

// Player is one of the two sides
type Player string

const (
	X Player = "X"
	O Player = "O"
)

// Status is the game lifecycle state
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
	Draw    Status = "draw"
)

const (
	// Base and expanded board dimensions
	BaseRows     = 6
	BaseCols     = 7
	ExpandedRows = 10
	ExpandedCols = 10

	// MaxCols keeps column selection on single decimal digit keys
	MaxCols = 10
	MinRows = WinLength
	MinCols = WinLength

	WinLength = 4

	DefaultPowerUpCount            = 6
	DefaultExpansionPowerUpDivisor = 10

	// One in ChurnSpawnOdds turns spawns a power-up when churn is on
	ChurnSpawnOdds = 5

	MaxBulkDrops = 50
)

var (
	ErrInvalidColumn     = errors.New("invalid column")
	ErrColumnFull        = errors.New("column is full")
	ErrBlockedByObstacle = errors.New("cannot place a piece above an obstacle")
	ErrGameOver          = errors.New("game is over")
)

// Cell represents a single board cell
type Cell struct {
	Type    CellType    `json:"type"`
	PowerUp PowerUpKind `json:"power_up,omitempty"`
}

// IsEmpty reports whether nothing occupies the cell
func (c Cell) IsEmpty() bool {
	return c.Type == Empty
}

// IsPowerUp reports whether the cell holds an untriggered power-up
func (c Cell) IsPowerUp() bool {
	return c.Type == PowerUp
}

// Owner returns the player whose mark occupies the cell, if any
func (c Cell) Owner() (Player, bool) {
	switch c.Type {
	case PlayerX:
		return X, true
	case PlayerO:
		return O, true
	}
	return "", false
}

// Position represents row,col coordinates with row 0 at the bottom
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Messages holds the player-facing texts of a configuration
type Messages struct {
	Welcome   string `json:"welcome" yaml:"welcome"`
	Turn      string `json:"turn" yaml:"turn"`
	Victory   string `json:"victory" yaml:"victory"`
	Draw      string `json:"draw" yaml:"draw"`
	Expanded  string `json:"expanded" yaml:"expanded"`
	Bomb      string `json:"bomb" yaml:"bomb"`
	Skip      string `json:"skip" yaml:"skip"`
	Obstacles string `json:"obstacles" yaml:"obstacles"`
}

// GameConfig represents the rules of a game, loaded from a preset file
type GameConfig struct {
	Name                    string   `json:"name" yaml:"name"`
	Description             string   `json:"description" yaml:"description"`
	Rows                    int      `json:"rows" yaml:"rows"`
	Cols                    int      `json:"cols" yaml:"cols"`
	ExpandedRows            int      `json:"expanded_rows" yaml:"expanded_rows"`
	ExpandedCols            int      `json:"expanded_cols" yaml:"expanded_cols"`
	AllowExpansion          bool     `json:"allow_expansion" yaml:"allow_expansion"`
	PowerUpsEnabled         bool     `json:"power_ups_enabled" yaml:"power_ups_enabled"`
	PowerUpCount            int      `json:"power_up_count" yaml:"power_up_count"`
	ExpansionPowerUpDivisor int      `json:"expansion_power_up_divisor" yaml:"expansion_power_up_divisor"`
	PowerUpChurn            bool     `json:"power_up_churn,omitempty" yaml:"power_up_churn,omitempty"`
	Seed                    uint64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Messages                Messages `json:"messages" yaml:"messages"`
}

// GameState represents the complete state of one game
type GameState struct {
	Board           [][]Cell           `json:"board"`
	Rows            int                `json:"rows"`
	Cols            int                `json:"cols"`
	CurrentPlayer   Player             `json:"current_player"`
	SkipNextTurn    bool               `json:"skip_next_turn"`
	Expanded        bool               `json:"expanded"`
	PowerUpsEnabled bool               `json:"power_ups_enabled"`
	Status          Status             `json:"status"`
	Winner          Player             `json:"winner,omitempty"`
	WinningLine     []Position         `json:"winning_line,omitempty"`
	Message         string             `json:"message"`
	ConfigName      string             `json:"config_name"`
	Round           int                `json:"round"`
	MoveHistory     []MoveHistoryEntry `json:"move_history"`
	TotalMoves      int                `json:"total_moves"`
}

// DropResult describes what a single drop did to the board
type DropResult struct {
	Row       int         `json:"row"`
	Col       int         `json:"col"`
	Player    Player      `json:"player"`
	Placed    bool        `json:"placed"`
	PowerUp   PowerUpKind `json:"power_up,omitempty"`
	Cleared   []Position  `json:"cleared,omitempty"`
	Obstacles []Position  `json:"obstacles,omitempty"`
}

// MoveHistoryEntry represents a single drop attempt in the game history
type MoveHistoryEntry struct {
	MoveNumber int         `json:"move_number"`
	Player     Player      `json:"player"`
	Column     int         `json:"column"`
	Row        int         `json:"row"`
	PowerUp    PowerUpKind `json:"power_up,omitempty"`
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
	Timestamp  int64       `json:"timestamp"`
}

// TurnResult is the outcome of a full turn run by PlayTurn
type TurnResult struct {
	Drop       DropResult `json:"drop"`
	Winner     Player     `json:"winner,omitempty"`
	Expanded   bool       `json:"expanded"`
	Draw       bool       `json:"draw"`
	Skipped    bool       `json:"skipped"`
	NextPlayer Player     `json:"next_player"`
}
