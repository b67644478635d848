package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/power-four/game/engine"
	"github.com/wricardo/power-four/game/service"
)

var Log = logrus.StandardLogger()

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Power Four",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Power Four - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Two players, X and O, take turns dropping pieces into columns. The first to line up four wins.
Power-ups hidden on the board can clear columns, skip turns or drop obstacles.

AVAILABLE TOOLS:
- create_session: Create a new game session
- list_sessions / get_session: Inspect sessions
- game_state: Board, current player and status
- drop_piece: Drop one piece - requires intent explanation
- bulk_drop: Drop several pieces in order - requires intent explanation
- reset_game: Start a new round
- move_history: View past drops
- list_configs: List available presets
- game_instructions: Full rules

NOTE: The 'intent' parameter on drop_piece/bulk_drop serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally from a named preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, e.g. classic or powerups (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions, most recently played first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, player to move and status",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drop_piece",
		Description: "Drop the current player's piece into a column. Columns are chosen by the key printed under the board.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"key": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"},
					"description": "Column key as printed under the board (0 is the tenth column)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this drop (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before dropping",
				},
			},
			Required: []string{"session_id", "key"},
		},
	}, c.handleDropPiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_drop",
		Description: fmt.Sprintf("Play several turns in order, alternating players. Stops at the first rejected drop or when the game ends. At most %d drops.", engine.MaxBulkDrops),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"keys": map[string]interface{}{
					"type":        "string",
					"description": "Column keys in play order, e.g. \"4453\"",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of drops (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before dropping",
				},
			},
			Required: []string{"session_id", "keys"},
		},
	}, c.handleBulkDrop)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start a new round with the same preset",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get drop history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules of Power Four",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	Log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("mcp api call")

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			if msg, ok := errResp["error"]; ok {
				return fmt.Errorf("%s", msg)
			}
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configName, _ := arguments(request)["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = fmt.Sprintf(", %s, %d moves", s.GameState.Status, s.GameState.TotalMoves)
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Last played: %s)\n",
			s.ID, s.ConfigName, status, s.LastAccessedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleDropPiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	reset, _ := args["reset"].(bool)
	// intent is a rubber duck for the caller; nothing to do with it here

	body := map[string]interface{}{"reset": reset}
	switch key := args["key"].(type) {
	case string:
		body["key"] = key
	case float64:
		// some clients send the key as a number
		body["key"] = strconv.Itoa(int(key) % 10)
	default:
		return mcp.NewToolResultError("key is required"), nil
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/drop"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkDrop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	keys, _ := args["keys"].(string)
	reset, _ := args["reset"].(bool)

	if strings.TrimSpace(keys) == "" {
		return mcp.NewToolResultError("keys is required"), nil
	}

	body := map[string]interface{}{
		"keys":  keys,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-drop"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", strconv.Itoa(int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", strconv.Itoa(int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Board: %dx%d", config.ConfigID, config.Name, config.Description, config.Rows, config.Cols)
		if config.AllowExpansion {
			fmt.Fprintf(&b, ", grows to %dx%d", config.ExpandedRows, config.ExpandedCols)
		}
		if config.PowerUpsEnabled {
			b.WriteString(", power-ups")
			if config.PowerUpChurn {
				b.WriteString(" (churning)")
			}
		}
		b.WriteString("\n\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Power Four - Complete Instructions

GAME OBJECTIVE:
Line up four of your pieces horizontally, vertically or diagonally before your opponent does.

GAME MECHANICS:
• Players X and O alternate turns; X always opens a round
• A piece falls to the lowest free cell of the chosen column
• Obstacles stay where they fall; pieces stack on top of them like on any other piece
• When the board fills up with no winner it grows once, from 6x7 to 10x10,
  and the player who filled it moves first on the bigger board
• If the grown board fills up too, the game is a draw

BOARD LEGEND:
• X / O - Player pieces
• . - Empty cell
• # - Obstacle (never moves, never counts for anyone)
• B - Bomb power-up
• S - Skip power-up
• W - Obstacle spawner power-up
• Row of digits at the bottom - the key to send for each column (0 is the tenth column)

POWER-UPS (only in presets with power-ups enabled):
• A piece landing on a power-up cell takes its place and triggers it
• Bomb: the piece is lost, the landing cell and the cell below it are cleared, and the opponent's next turn is skipped
• Skip: the opponent loses their next turn
• Obstacle spawner: obstacles fall into the free cells left and right of the piece
• New power-ups are seeded when the board grows

MOVE COMMANDS:
• drop_piece - one piece, by column key
• bulk_drop - several pieces in order, alternating players; stops at the first rejected drop
• reset parameter available for fresh starts

REJECTED DROPS:
• Unknown column keys, full columns and drops after the game is over are rejected
• A rejected drop does not change the board or the player to move

SESSION MANAGEMENT:
• Multiple game sessions can run simultaneously
• Each session has a unique 4-character ID
• Sessions keep independent boards and presets

STRATEGY HINTS:
• Read the board top row first; the bottom row sits just above the key line
• Centre columns take part in more lines of four than edge columns
• Watch for power-ups under a column before dropping into it
• After a skip or bomb the same player moves twice, plan both drops

Good luck, and connect four!`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast played: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return result
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Board %dx%d", state.Rows, state.Cols)
	if state.Expanded {
		b.WriteString(" (expanded)")
	}
	fmt.Fprintf(&b, " • Round %d • Moves %d\n\n", state.Round, state.TotalMoves)

	if len(state.Board) == state.Rows && state.Rows > 0 {
		b.WriteString(engine.RenderBoard(state))
		b.WriteString("\n")
	}

	switch state.Status {
	case engine.Won:
		fmt.Fprintf(&b, "🎉 Player %s WINS!\n", state.Winner)
		if len(state.WinningLine) > 0 {
			cells := make([]string, 0, len(state.WinningLine))
			for _, p := range state.WinningLine {
				key, _ := engine.KeyForColumn(p.Col)
				cells = append(cells, fmt.Sprintf("%c/row %d", key, p.Row+1))
			}
			fmt.Fprintf(&b, "Winning line: %s\n", strings.Join(cells, ", "))
		}
	case engine.Draw:
		b.WriteString("🤝 DRAW - the board is full\n")
	default:
		fmt.Fprintf(&b, "To move: %s\n", state.CurrentPlayer)
		if state.SkipNextTurn {
			fmt.Fprintf(&b, "Next turn of %s will be skipped\n", engine.Opponent(state.CurrentPlayer))
		}
		if keys := playableKeys(state); len(keys) > 0 {
			fmt.Fprintf(&b, "Playable keys: %s\n", strings.Join(keys, ","))
		}
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}
	return b.String()
}

// playableKeys lists the keys of columns that still accept a piece
func playableKeys(state *engine.GameState) []string {
	var keys []string
	for col := 0; col < state.Cols; col++ {
		if _, err := state.LandingRow(col); err != nil {
			continue
		}
		if key, ok := engine.KeyForColumn(col); ok {
			keys = append(keys, string(key))
		}
	}
	return keys
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Drop successful\n")
	} else {
		b.WriteString("✗ Drop failed\n")
	}

	if result.Turn != nil {
		d := result.Turn.Drop
		key, _ := engine.KeyForColumn(d.Col)
		if d.Placed {
			fmt.Fprintf(&b, "Drop: %s into %c, landed on row %d", d.Player, key, d.Row+1)
		} else {
			fmt.Fprintf(&b, "Drop: %s into %c, piece destroyed", d.Player, key)
		}
		if d.PowerUp != "" {
			fmt.Fprintf(&b, ", triggered %s", d.PowerUp)
		}
		b.WriteString("\n")
	}

	writeEvents(&b, result.Events)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func writeEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("Events:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s\n", sessionID, configName)
	fmt.Fprintf(&b, "Executed %d/%d drops\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d drops\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on drop %d: %s (%s)\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	} else if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on drop %d (%s)\n", result.StoppedOnMove, result.StopReasonCode)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "\nRejected: column %s (%s)\n", a.Key, a.Reason)
	}

	b.WriteString("\n")
	writeEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	line := fmt.Sprintf("%d. %s→%s", s.Idx, s.Player, s.Key)
	if s.Placed {
		line += fmt.Sprintf(" row %d", s.Row+1)
	} else {
		line += " (destroyed)"
	}
	if s.PowerUp != "" {
		line += " " + string(s.PowerUp)
	}
	if s.Skipped {
		line += " skip"
	}
	if s.Expanded {
		line += " expand"
	}
	if s.Winner != "" {
		line += " WIN"
	}
	if s.Draw {
		line += " DRAW"
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (page %d/%d, %d total):\n\n", history.Page, history.TotalPages, history.TotalMoves)
	for _, move := range history.Moves {
		key, ok := engine.KeyForColumn(move.Column)
		if !ok {
			key = '?'
		}
		if move.Success {
			fmt.Fprintf(&b, "#%d %s→%c row %d", move.MoveNumber, move.Player, key, move.Row+1)
			if move.PowerUp != "" {
				fmt.Fprintf(&b, " (%s)", move.PowerUp)
			}
		} else {
			fmt.Fprintf(&b, "#%d %s→%c rejected: %s", move.MoveNumber, move.Player, key, move.Error)
		}
		b.WriteString("\n")
	}
	if history.HasNext {
		b.WriteString("\nMore moves on the next page\n")
	}
	return b.String()
}
