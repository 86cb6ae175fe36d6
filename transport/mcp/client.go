package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/blockfall/game/engine"
	"github.com/wricardo/blockfall/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
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
		"Blockfall",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Blockfall - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Falling pieces land on a board. Fill complete rows to clear them and score.
The game ends when a new piece has no room to enter.

AVAILABLE TOOLS:
- create_session: Create a new game session (optionally start it)
- list_sessions / get_session: Inspect sessions
- start_game: Start or restart the game in a session
- game_state: Board, active and next piece, score, level, speed
- command: One command (left/right/down/rotate)
- bulk_command: Up to 50 commands applied without gravity in between
- high_score: The stored best score
- list_configs: Available board configurations
- game_instructions: Rules, scoring and strategy

Gravity keeps running between your calls, so prefer bulk_command to place a piece.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
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
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, see list_configs (optional)",
				},
				"start": map[string]interface{}{
					"type":        "boolean",
					"description": "Start the game right away",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new game in the session, discarding any game in progress",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board and counters",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command",
		Description: "Move the active piece left, right or down, or rotate it clockwise",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"left", "right", "down", "rotate"},
					"description": "Command to apply",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this command",
				},
			},
			Required: []string{"session_id", "command"},
		},
	}, c.handleCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_command",
		Description: "Apply several commands in one step; no gravity tick happens between them",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"commands": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"left", "right", "down", "rotate"},
					},
					"description": "Commands in order, at most 50 are applied",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of where you are placing the piece",
				},
			},
			Required: []string{"session_id", "commands"},
		},
	}, c.handleBulkCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_score",
		Description: "Get the stored high score",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleHighScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules, scoring table and strategy notes",
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

// Serve runs the MCP server over stdio until the input closes
func (c *Client) Serve() error {
	return server.ServeStdio(c.mcpServer)
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

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	start, _ := args["start"].(bool)

	body := map[string]interface{}{"start": start}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil && session.GameState.Status == engine.StatusRunning {
		result += "\n" + formatGameState(session.GameState)
	} else {
		result += "Call start_game to begin.\n"
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
		status, score := engine.StatusReady, 0
		if s.GameState != nil {
			status, score = s.GameState.Status, s.GameState.Score
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Status: %s, Score: %d, Created: %s)\n",
			s.ID, s.ConfigName, status, score, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/start"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request.GetArguments(), "session_id")

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")

	// intent is for the caller's own reasoning and is not sent
	body := map[string]string{"command": stringArg(args, "command")}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/command"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleBulkCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := stringArg(args, "session_id")
	raw, _ := args["commands"].([]interface{})

	commands := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			commands = append(commands, s)
		}
	}

	var result service.BulkCommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk"), map[string]interface{}{"commands": commands}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkResult(sessionID, &result)), nil
}

func (c *Client) handleHighScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.HighScoreInfo
	if err := c.apiCall(ctx, "GET", "/api/highscore", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !info.Stored {
		return mcp.NewToolResultText("No high score recorded yet"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("High score: %d", info.HighScore)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %d rows x %d columns, drop %dms down to %dms\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Rows, cfg.Columns, cfg.InitialSpeed, cfg.MinSpeed)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Blockfall - Complete Instructions

GAME OBJECTIVE:
Pieces of four cells fall one at a time. Steer and rotate them so they land
in complete rows. Complete rows are removed and everything above moves down.
The game is over when a new piece cannot enter the board.

BOARD LEGEND:
  .  empty cell
  #  landed cell
  I O T S Z J L  the falling piece

Row 0 is the top. Pieces enter on row 0, centred.

COMMANDS:
  left, right   shift one column (ignored if blocked)
  down          drop one row; if blocked the piece lands
  rotate        turn clockwise around the piece centre (ignored if blocked)

GRAVITY:
The server drops the active piece one row every tick. The tick starts at the
configured initial speed and shortens by the configured step every level,
never below the minimum.

SCORING (level = current level before any level-up):
  1 row   100 + 100 x level
  2 rows  300 + 100 x level
  3 rows  500 + 100 x level
  4 rows  800 + 100 x level

LEVELS:
Every 10 cleared rows raise the level by one.

STRATEGY NOTES:
  • Read the NEXT preview before placing the current piece.
  • Use bulk_command to rotate, shift and drop in one call; gravity does not
    run between commands of one call.
  • A blocked move in a bulk call does not stop the rest; game over does.
  • Keep the surface flat and leave one column open for I pieces.

Good luck!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast access: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state\n"
	}

	var b strings.Builder
	switch state.Status {
	case engine.StatusGameOver:
		fmt.Fprintf(&b, "💀 GAME OVER - final score %d\n", state.Score)
	case engine.StatusReady:
		b.WriteString("Waiting for start_game\n")
	}

	fmt.Fprintf(&b, "Score: %d | Level: %d | Lines: %d | Speed: %dms | High: %d\n",
		state.Score, state.Level, state.TotalLines, state.GameSpeed, state.HighScore)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	board := state.Board
	if len(board) == 0 && state.Grid != nil {
		board = engine.RenderBoard(state)
	}
	if len(board) > 0 {
		b.WriteString("\nBoard:\n")
		for i, row := range board {
			fmt.Fprintf(&b, "%2d %s\n", i, row)
		}
	}

	if state.Active != nil && state.Status == engine.StatusRunning {
		fmt.Fprintf(&b, "\nActive: %s at row %d, col %d\n", state.Active.Name, state.Active.Origin.Row, state.Active.Origin.Col)
	}
	if state.Next != nil {
		fmt.Fprintf(&b, "Next: %s\n", state.Next.Name)
		for _, row := range engine.PreviewPiece(state.Next) {
			fmt.Fprintf(&b, "   %s\n", row)
		}
	}

	return b.String()
}

func formatEvents(b *strings.Builder, events []service.GameEvent) {
	for _, ev := range events {
		switch ev.Type {
		case service.EventMove, service.EventRotate, service.EventBlocked:
			continue
		}
		fmt.Fprintf(b, "  [%s] %s\n", ev.Type, ev.Message)
	}
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s applied\n", result.Command)
	} else {
		fmt.Fprintf(&b, "✗ %s blocked\n", result.Command)
	}
	formatEvents(&b, result.Events)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkResult(sessionID string, result *service.BulkCommandResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session %s: executed %d/%d commands", sessionID, result.CommandsExecuted, result.RequestedCommands)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s before command %d\n", result.StoppedReason, result.StoppedOnCommand)
	}
	fmt.Fprintf(&b, "Score Δ: %+d | Lines Δ: %+d\n", result.ScoreDelta, result.LinesDelta)

	if len(result.Steps) > 0 {
		b.WriteString("Steps:\n")
		for _, s := range result.Steps {
			mark := "✓"
			if !s.Success {
				mark = "✗"
			}
			line := fmt.Sprintf("  %2d %s %s", s.Idx, mark, s.Command)
			if s.Landed {
				line += " landed"
			}
			if s.Cleared > 0 {
				line += fmt.Sprintf(" cleared=%d", s.Cleared)
			}
			b.WriteString(line + "\n")
		}
	}
	formatEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}
