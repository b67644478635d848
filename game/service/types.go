package service

import (
	"time"

	"github.com/wricardo/power-four/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of one drop
type MoveResult struct {
	Success   bool               `json:"success"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
	Turn      *engine.TurnResult `json:"turn,omitempty"`
	Board     string             `json:"board"`
}

// BulkMoveResult contains the result of several drops played in order
type BulkMoveResult struct {
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_column|column_full|blocked_by_obstacle|game_over|win|draw
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the drop that caused the stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver     bool          `json:"game_over"`
	Status       engine.Status `json:"status"`
	Winner       engine.Player `json:"winner,omitempty"`
	Message      string        `json:"message,omitempty"`
	PlayableKeys []string      `json:"playable_keys,omitempty"`
	Board        string        `json:"board"`
}

// StepInfo is a compact record for each executed drop in a bulk call
type StepInfo struct {
	Idx      int                `json:"idx"`
	Column   int                `json:"column"`
	Key      string             `json:"key"`
	Player   engine.Player      `json:"player"`
	Row      int                `json:"row"`
	Placed   bool               `json:"placed"`
	PowerUp  engine.PowerUpKind `json:"power_up,omitempty"`
	Expanded bool               `json:"expanded,omitempty"`
	Skipped  bool               `json:"skipped,omitempty"`
	Winner   engine.Player      `json:"winner,omitempty"`
	Draw     bool               `json:"draw,omitempty"`
}

// AttemptInfo details the drop that could not be played
type AttemptInfo struct {
	Column int    `json:"column"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"` // "drop", "power_up", "bomb", "skip", "obstacle", "expand", "win", "draw", "turn", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Player    engine.Player    `json:"player,omitempty"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page" schema:"page"`
	Limit int    `json:"limit" schema:"limit"`
	Order string `json:"order" schema:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename        string `json:"filename"`
	ConfigID        string `json:"config_id"` // The identifier to use for session creation
	Name            string `json:"name"`      // Display name
	Description     string `json:"description"`
	Rows            int    `json:"rows"`
	Cols            int    `json:"cols"`
	ExpandedRows    int    `json:"expanded_rows"`
	ExpandedCols    int    `json:"expanded_cols"`
	AllowExpansion  bool   `json:"allow_expansion"`
	PowerUpsEnabled bool   `json:"power_ups_enabled"`
	PowerUpChurn    bool   `json:"power_up_churn"`
}
