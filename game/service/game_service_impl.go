package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/power-four/game/engine"
)

var Log = logrus.StandardLogger()

// Stop reason codes reported by BulkDrop
const (
	StopInvalidColumn     = "invalid_column"
	StopColumnFull        = "column_full"
	StopBlockedByObstacle = "blocked_by_obstacle"
	StopGameOver          = "game_over"
	StopWin               = "win"
	StopDraw              = "draw"
	StopCancelled         = "cancelled"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession starts a game with the named preset, or the default preset
// when configName is empty
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configID := configName
	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configLoadError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.GetDefaultID()
	}

	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	Log.WithFields(logrus.Fields{
		"session_id": session.ID,
		"config":     configID,
	}).Info("session created")

	return sessionInfo(session), nil
}

// configLoadError lists the available preset IDs alongside the load failure
func (s *gameServiceImpl) configLoadError(configName string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("failed to load config '%s': %w", configName, err)
	}

	ids := make([]string, 0, len(available))
	for _, info := range available {
		if info.ConfigID == configName {
			return fmt.Errorf("failed to load config '%s': %w", configName, err)
		}
		ids = append(ids, info.ConfigID)
	}
	return fmt.Errorf("config '%s': %w. Available configs: %s", configName, err, strings.Join(ids, ", "))
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	return nil
}

// Drop plays one full turn for the current player in the given column.
// A rejected drop is still recorded in the move history and returned as
// the engine error.
func (s *gameServiceImpl) Drop(ctx context.Context, sessionID string, column int, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.touch(sessionID)

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	player := sess.Engine.GetCurrentPlayer()
	turn, err := sess.Engine.PlayTurn(column)
	s.save(sessionID, "drop")
	if err != nil {
		Log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"column":     column,
			"player":     player,
		}).WithError(err).Debug("drop rejected")
		return nil, err
	}

	state := sess.Engine.GetState().Clone()
	events = append(events, turnEvents(player, turn, state)...)

	return &MoveResult{
		Success:   true,
		GameState: state,
		Message:   state.Message,
		Events:    events,
		Turn:      &turn,
		Board:     engine.RenderBoard(state),
	}, nil
}

// BulkDrop plays several turns in order, stopping at the first rejected
// drop, when the game ends or when ctx is done. Turns played before a stop
// are kept and saved.
func (s *gameServiceImpl) BulkDrop(ctx context.Context, sessionID string, columns []int, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.touch(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(columns),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	if len(columns) > engine.MaxBulkDrops {
		result.Truncated = true
		result.Limit = engine.MaxBulkDrops
		columns = columns[:engine.MaxBulkDrops]
	}

	for i, col := range columns {
		if err := ctx.Err(); err != nil {
			result.Success = false
			result.StopReasonCode = StopCancelled
			result.StoppedReason = fmt.Sprintf("drop %d not played: %v", i+1, err)
			result.StoppedOnMove = i + 1
			break
		}

		if sess.Engine.IsGameOver() {
			result.Success = false
			result.StopReasonCode = StopGameOver
			result.StoppedReason = fmt.Sprintf("drop %d not played: the game is over", i+1)
			result.StoppedOnMove = i + 1
			break
		}

		player := sess.Engine.GetCurrentPlayer()
		turn, err := sess.Engine.PlayTurn(col)
		if err != nil {
			result.Success = false
			result.StopReasonCode = stopReasonCode(err)
			result.StoppedReason = fmt.Sprintf("drop %d rejected: %v", i+1, err)
			result.StoppedOnMove = i + 1
			result.AttemptedTo = &AttemptInfo{
				Column: col,
				Key:    columnKey(col),
				Reason: err.Error(),
			}
			break
		}

		result.MovesExecuted++
		state := sess.Engine.GetState()
		result.Events = append(result.Events, turnEvents(player, turn, state)...)
		result.Steps = append(result.Steps, StepInfo{
			Idx:      i + 1,
			Column:   col,
			Key:      columnKey(col),
			Player:   player,
			Row:      turn.Drop.Row,
			Placed:   turn.Drop.Placed,
			PowerUp:  turn.Drop.PowerUp,
			Expanded: turn.Expanded,
			Skipped:  turn.Skipped,
			Winner:   turn.Winner,
			Draw:     turn.Draw,
		})

		if sess.Engine.IsGameOver() && i < len(columns)-1 {
			result.StopReasonCode = terminalCode(state.Status)
			result.StoppedReason = fmt.Sprintf("game ended on drop %d: %s", i+1, state.Message)
			result.StoppedOnMove = i + 1
			break
		}
	}

	endState := sess.Engine.GetState().Clone()
	result.GameState = endState
	result.GameOver = sess.Engine.IsGameOver()
	result.Status = endState.Status
	result.Winner = endState.Winner
	result.Message = endState.Message
	result.PlayableKeys = playableKeys(endState)
	result.Board = engine.RenderBoard(endState)

	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = terminalCode(endState.Status)
	}

	s.save(sessionID, "bulk drop")

	return result, nil
}

// Reset starts a fresh game in the session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	state := sess.Engine.Reset()
	s.save(sessionID, "reset")

	return state.Clone(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.touch(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	return paginateHistory(sess.Engine.GetMoveHistory(), opts), nil
}

func paginateHistory(history []engine.MoveHistoryEntry, opts HistoryOptions) *HistoryResponse {
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) touch(sessionID string) {
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		Log.WithField("session_id", sessionID).WithError(err).Debug("failed to update last access")
	}
}

func (s *gameServiceImpl) save(sessionID, op string) {
	if err := s.sessions.Save(sessionID); err != nil {
		Log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"op":         op,
		}).WithError(err).Warn("failed to persist session")
	}
}

func sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     session.ConfigID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
		GameConfig:     session.Config,
	}
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// turnEvents describes what one PlayTurn did, in the order it happened
func turnEvents(player engine.Player, turn engine.TurnResult, state *engine.GameState) []GameEvent {
	now := time.Now()
	drop := turn.Drop
	events := []GameEvent{}

	if drop.PowerUp != "" {
		events = append(events, GameEvent{
			Type:      "power_up",
			Message:   fmt.Sprintf("Player %s triggered a %s power-up in column %s", player, drop.PowerUp, columnKey(drop.Col)),
			Timestamp: now,
			Player:    player,
			Position:  &engine.Position{Row: drop.Row, Col: drop.Col},
		})
	}

	switch drop.PowerUp {
	case engine.Bomb:
		events = append(events, GameEvent{
			Type:      "bomb",
			Message:   fmt.Sprintf("Bomb cleared %d cells", len(drop.Cleared)),
			Timestamp: now,
			Player:    player,
			Position:  &engine.Position{Row: drop.Row, Col: drop.Col},
		})
	case engine.Skip:
		events = append(events, GameEvent{
			Type:      "skip",
			Message:   fmt.Sprintf("Player %s loses the next turn", engine.Opponent(player)),
			Timestamp: now,
			Player:    player,
		})
	case engine.ObstacleSpawner:
		for _, pos := range drop.Obstacles {
			events = append(events, GameEvent{
				Type:      "obstacle",
				Message:   fmt.Sprintf("Obstacle landed in column %s", columnKey(pos.Col)),
				Timestamp: now,
				Player:    player,
				Position:  &engine.Position{Row: pos.Row, Col: pos.Col},
			})
		}
	}

	if drop.Placed {
		events = append(events, GameEvent{
			Type:      "drop",
			Message:   fmt.Sprintf("Player %s dropped into column %s, row %d", player, columnKey(drop.Col), drop.Row+1),
			Timestamp: now,
			Player:    player,
			Position:  &engine.Position{Row: drop.Row, Col: drop.Col},
		})
	}

	switch {
	case turn.Winner != "":
		events = append(events, GameEvent{
			Type:      "win",
			Message:   state.Message,
			Timestamp: now,
			Player:    turn.Winner,
		})
		return events
	case turn.Draw:
		events = append(events, GameEvent{
			Type:      "draw",
			Message:   state.Message,
			Timestamp: now,
		})
		return events
	}

	if turn.Expanded {
		events = append(events, GameEvent{
			Type:      "expand",
			Message:   fmt.Sprintf("Board expanded to %dx%d", state.Rows, state.Cols),
			Timestamp: now,
		})
	}

	message := fmt.Sprintf("Player %s to move", turn.NextPlayer)
	if turn.Skipped {
		message = fmt.Sprintf("Player %s's turn was skipped. %s", engine.Opponent(turn.NextPlayer), message)
	}
	events = append(events, GameEvent{
		Type:      "turn",
		Message:   message,
		Timestamp: now,
		Player:    turn.NextPlayer,
	})

	return events
}

func stopReasonCode(err error) string {
	switch {
	case errors.Is(err, engine.ErrInvalidColumn):
		return StopInvalidColumn
	case errors.Is(err, engine.ErrColumnFull):
		return StopColumnFull
	case errors.Is(err, engine.ErrBlockedByObstacle):
		return StopBlockedByObstacle
	default:
		return StopGameOver
	}
}

func terminalCode(status engine.Status) string {
	switch status {
	case engine.Won:
		return StopWin
	case engine.Draw:
		return StopDraw
	}
	return StopGameOver
}

func columnKey(col int) string {
	if key, ok := engine.KeyForColumn(col); ok {
		return string(key)
	}
	return ""
}

// playableKeys lists the keys of every column that currently accepts a drop
func playableKeys(state *engine.GameState) []string {
	if state.Status != engine.Playing {
		return nil
	}
	keys := []string{}
	for col := 0; col < state.Cols; col++ {
		if _, err := state.LandingRow(col); err == nil {
			keys = append(keys, columnKey(col))
		}
	}
	return keys
}
