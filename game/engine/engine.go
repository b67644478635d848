package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	Status() Status

	// Board operations
	GetBoard() [][]Cell
	GetCurrentPlayer() Player
	DropPiece(col int) (DropResult, error)
	SwitchPlayer()
	CheckWinner() (Player, bool)
	IsFull() bool
	ExpandBoard() bool
	ChurnPowerUps() bool
	PlayTurn(col int) (TurnResult, error)

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    *rand.Rand
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config: config,
		rng:    newRand(config.Seed),
	}
	e.state = InitGameStateFromConfig(config, e.rng)

	return e, nil
}

// New creates a classic 6x7 game, seeding power-ups when enabled
func New(powerUpsEnabled bool) *GameEngine {
	config := DefaultConfig()
	config.PowerUpsEnabled = powerUpsEnabled

	e := &GameEngine{
		config: config,
		rng:    newRand(0),
	}
	e.state = InitGameStateFromConfig(config, e.rng)
	return e
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Board) != state.Rows {
		return fmt.Errorf("state board has %d rows, expected %d", len(state.Board), state.Rows)
	}
	for r, row := range state.Board {
		if len(row) != state.Cols {
			return fmt.Errorf("state board row %d has %d cells, expected %d", r, len(row), state.Cols)
		}
	}
	if state.Cols > MaxCols {
		return fmt.Errorf("state board has %d columns, at most %d allowed", state.Cols, MaxCols)
	}
	e.state = state
	return nil
}

// Reset replaces the game with a fresh one from the same configuration.
// Only the round counter carries over.
func (e *GameEngine) Reset() *GameState {
	round := e.state.Round
	e.state = InitGameStateFromConfig(e.config, e.rng)
	e.state.Round = round + 1
	return e.state
}

// IsGameOver returns whether the game has reached a terminal state
func (e *GameEngine) IsGameOver() bool {
	return e.state.Status != Playing
}

// Status returns the lifecycle state of the game
func (e *GameEngine) Status() Status {
	return e.state.Status
}

// GetConfig returns the engine configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetBoard returns a copy of the board, row 0 at the bottom
func (e *GameEngine) GetBoard() [][]Cell {
	return CloneBoard(e.state.Board)
}

// GetCurrentPlayer returns the player whose turn it is
func (e *GameEngine) GetCurrentPlayer() Player {
	return e.state.CurrentPlayer
}

// DropPiece drops the current player's piece into col and records the
// attempt. Attempts on a finished game are not recorded. Turns are not
// switched.
func (e *GameEngine) DropPiece(col int) (DropResult, error) {
	player := e.state.CurrentPlayer
	result, err := e.state.DropPiece(col)
	if errors.Is(err, ErrGameOver) {
		// finished games keep their history as it was
		return result, err
	}
	e.recordMove(player, col, result, err)
	if err != nil {
		return result, err
	}

	switch result.PowerUp {
	case Bomb:
		e.state.Message = e.config.Messages.Bomb
	case Skip:
		e.state.Message = e.config.Messages.Skip
	case ObstacleSpawner:
		e.state.Message = e.config.Messages.Obstacles
	default:
		e.state.Message = ""
	}

	e.refreshStatus()
	return result, nil
}

// SwitchPlayer hands the turn over, honouring a pending skip
func (e *GameEngine) SwitchPlayer() {
	e.state.SwitchPlayer()
	if e.state.Status == Playing && e.state.Message == "" && e.config.Messages.Turn != "" {
		e.state.Message = fmt.Sprintf(e.config.Messages.Turn, e.state.CurrentPlayer)
	}
}

// CheckWinner returns the player owning the first four-in-a-row found
func (e *GameEngine) CheckWinner() (Player, bool) {
	player, _, ok := e.state.FindWinningLine()
	return player, ok
}

// IsFull reports whether no empty cell remains
func (e *GameEngine) IsFull() bool {
	return e.state.IsFull()
}

// ExpandBoard grows a full, undecided, not yet expanded board to the
// expanded size. It reports whether the board was expanded.
func (e *GameEngine) ExpandBoard() bool {
	gs := e.state
	if gs.Expanded || !e.config.AllowExpansion || !gs.IsFull() {
		return false
	}
	if _, ok := e.CheckWinner(); ok {
		return false
	}

	oldRows, oldCells := gs.Rows, gs.Rows*gs.Cols
	rows, cols := e.config.ExpandedRows, e.config.ExpandedCols

	board := NewBoard(rows, cols)
	for r := 0; r < gs.Rows; r++ {
		copy(board[r], gs.Board[r])
	}
	gs.Board = board
	gs.Rows, gs.Cols = rows, cols
	gs.Expanded = true

	if gs.PowerUpsEnabled && e.config.ExpansionPowerUpDivisor > 0 {
		n := (rows*cols - oldCells) / e.config.ExpansionPowerUpDivisor
		gs.seedPowerUps(e.rng, n, oldRows, cols-2)
	}

	gs.Message = e.config.Messages.Expanded
	e.refreshStatus()
	return true
}

// ChurnPowerUps removes every untriggered power-up and, one turn in
// ChurnSpawnOdds, spawns a new one on top of a column. It reports whether a
// power-up was spawned.
func (e *GameEngine) ChurnPowerUps() bool {
	gs := e.state
	if !gs.PowerUpsEnabled || gs.Status != Playing {
		return false
	}

	gs.clearPowerUps()
	if e.rng.IntN(ChurnSpawnOdds) != 0 {
		e.refreshStatus()
		return false
	}
	_, spawned := gs.spawnRestingPowerUp(e.rng)
	e.refreshStatus()
	return spawned
}

// GetMoveHistory returns every drop attempt of the current game
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the most recent drop attempt, or nil
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

func (e *GameEngine) recordMove(player Player, col int, result DropResult, err error) {
	e.state.TotalMoves++
	entry := MoveHistoryEntry{
		MoveNumber: e.state.TotalMoves,
		Player:     player,
		Column:     col,
		Row:        result.Row,
		PowerUp:    result.PowerUp,
		Success:    err == nil,
		Timestamp:  time.Now().Unix(),
	}
	if err != nil {
		entry.Row = -1
		entry.Error = err.Error()
	}
	e.state.MoveHistory = append(e.state.MoveHistory, entry)
}

// refreshStatus derives status, winner and winning line from the board
func (e *GameEngine) refreshStatus() {
	gs := e.state

	if player, line, ok := gs.FindWinningLine(); ok {
		gs.Status = Won
		gs.Winner = player
		gs.WinningLine = line
		gs.SkipNextTurn = false
		if e.config.Messages.Victory != "" {
			gs.Message = fmt.Sprintf(e.config.Messages.Victory, player)
		}
		return
	}

	gs.Winner = ""
	gs.WinningLine = nil

	if gs.IsFull() && (gs.Expanded || !e.config.AllowExpansion) {
		gs.Status = Draw
		gs.SkipNextTurn = false
		gs.Message = e.config.Messages.Draw
		return
	}

	gs.Status = Playing
}
