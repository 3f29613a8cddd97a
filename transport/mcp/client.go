package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nmarchi/slidepuzzle/game/engine"
	"github.com/nmarchi/slidepuzzle/game/service"
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
		baseURL: baseURL,
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
		"Sliding Tile Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sliding Tile Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide numbered tiles into the single empty slot until every tile sits in
order (1,2,3,... with the empty slot last) before the countdown runs out.

AVAILABLE TOOLS:
- create_session: Create a new puzzle session
- start_game: Shuffle a board and start the countdown
- board_state: Get the current board and timer
- click_tile: Slide the tile at a slot index into the empty slot
- restart_game: Reshuffle the same board size
- solve_puzzle: Force the solved layout (debug shortcut)
- new_game: Return to image/size selection
- move_history: View past click attempts
- list_presets: List board size presets
- list_sessions / get_session: Session management
- game_instructions: Full rules and strategy notes

NOTE: Only tiles orthogonally adjacent to the empty slot can move. A click
on any other slot is recorded but changes nothing.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session with an optional preset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"preset_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use, e.g. classic4 (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
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
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Shuffle a board of the given size and start the countdown",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"image_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of a previously uploaded image",
				},
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Board size per side, 3-5 (0 uses the preset default)",
				},
			},
			Required: []string{"session_id", "image_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the current board, move count, and remaining time",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "click_tile",
		Description: "Slide the tile at a slot index into the empty slot. Slots are numbered row by row starting at 0; only tiles orthogonally adjacent to the empty slot move.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"tile_index": map[string]interface{}{
					"type":        "integer",
					"description": "Slot index of the tile to slide (0-based, row-major)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "tile_index"},
		},
	}, c.handleClickTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Reshuffle the current board size and reset the countdown",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_puzzle",
		Description: "Force the board into the solved layout (debug shortcut)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSolvePuzzle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Return the session to image and size selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the click history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Attempts per page",
				},
				"offset": map[string]interface{}{
					"type":        "integer",
					"description": "Attempts to skip",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
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

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
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

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	presetID, _ := args["preset_id"].(string)

	body := map[string]string{}
	if presetID != "" {
		body["preset_id"] = presetID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPreset: %s\nUpload an image and call start_game to begin.\n",
		session.SessionID, session.PresetName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Preset: %s, Status: %s, Created: %s)\n",
			s.SessionID, s.PresetName, s.Status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	imageID, _ := args["image_id"].(string)
	size := 0
	if v, ok := args["size"].(float64); ok {
		size = int(v)
	}

	body := map[string]interface{}{
		"image_id": imageID,
		"size":     size,
	}

	var state engine.SessionState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/start", sessionID), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Game started!\n\n%s", formatBoardState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.SessionState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(&state)), nil
}

func (c *Client) handleClickTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	intent, _ := args["intent"].(string)

	tileIndexRaw, ok := args["tile_index"].(float64)
	if !ok {
		return mcp.NewToolResultError("tile_index is required"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"tile_index": int(tileIndexRaw),
	}

	var result service.ClickResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/click", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatClickResult(int(tileIndexRaw), &result)), nil
}

func (c *Client) handleRestartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string               `json:"message"`
		State   *engine.SessionState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/restart", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatBoardState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolvePuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string               `json:"message"`
		State   *engine.SessionState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/solve", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatBoardState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string               `json:"message"`
		State   *engine.SessionState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/new-game", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message + "\nUpload or pick an image, then call start_game."), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}
	if offset, ok := args["offset"].(float64); ok {
		params += fmt.Sprintf("offset=%d&", int(offset))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []service.PresetInfo
	err := c.apiCall("GET", "/api/presets", nil, &presets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Presets:\n\n"
	for _, p := range presets {
		kind := "custom"
		if p.BuiltIn {
			kind = "built-in"
		}
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Board: %dx%d, Time limit: %ds\n\n",
			p.PresetID, kind, p.Description, p.BoardSize, p.BoardSize, p.TimeLimitSecs)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Sliding Tile Puzzle - Complete Instructions

GAME OBJECTIVE:
Restore the scrambled board so every tile sits in order (1,2,3,... reading
row by row) with the empty slot in the bottom-right corner, before the
countdown reaches zero.

GAME MECHANICS:
• The board is a square grid of numbered tiles with one empty slot
• Clicking a tile orthogonally adjacent to the empty slot slides it there
• Clicking any other slot does nothing (the attempt is still recorded)
• The time limit is 10 seconds per slot: 90s for 3x3, 160s for 4x4, 250s for 5x5
• Boards are shuffled by a random walk of legal moves, so every shuffle is solvable

BOARD DISPLAY:
Boards are shown as grids of tile numbers with the empty slot as a dot:

   1  2  3
   4  ·  5
   7  8  6

Slot indices are row-major starting at 0: the top-left slot is 0, the one
right of it is 1, and so on. In the grid above the empty slot is index 4,
so tiles at indices 1, 3, 5, and 7 can slide.

STRATEGY NOTES:
• Solve the top row first, then the left column, then recurse on the rest
• The last two tiles of a row or column must be rotated in together
• Track the empty slot's index after every move - only its four orthogonal
  neighbors are clickable
• 3-cycles: to cycle three tiles, walk the empty slot around them

SESSION LIFECYCLE:
• selecting: pick an image and board size, then start_game
• playing: countdown running, click tiles
• solved: you won - restart_game reshuffles, new_game picks a new image
• time_up: countdown expired - same options as solved

SESSION MANAGEMENT:
- Multiple puzzle sessions can run simultaneously
- Each session has a unique 4-character ID
- Sessions maintain independent board, timer, and history
- Browser spectators watching the same session see your moves live

Good luck sliding!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatters

func formatSessionInfo(s *service.SessionInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Session: %s\n", s.SessionID))
	sb.WriteString(fmt.Sprintf("Preset: %s\n", s.PresetName))
	sb.WriteString(fmt.Sprintf("Status: %s\n", s.Status))
	if s.BoardSize > 0 {
		sb.WriteString(fmt.Sprintf("Board: %dx%d\n", s.BoardSize, s.BoardSize))
		sb.WriteString(fmt.Sprintf("Moves: %d\n", s.MoveCount))
	}
	sb.WriteString(fmt.Sprintf("Created: %s\n", s.CreatedAt.Format("15:04:05")))
	sb.WriteString(fmt.Sprintf("Last accessed: %s\n", s.LastAccessedAt.Format("15:04:05")))
	return sb.String()
}

// formatBoard renders the board as a text grid, one row per line, with the
// empty slot shown as a dot.
func formatBoard(b engine.Board, size int) string {
	var sb strings.Builder
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			tile := b[row*size+col]
			if tile == engine.EmptySlot {
				sb.WriteString("  ·")
			} else {
				sb.WriteString(fmt.Sprintf("%3d", tile))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatBoardState(state *engine.SessionState) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status: %s\n", state.Status))

	if state.BoardSize > 0 {
		sb.WriteString(fmt.Sprintf("Board (%dx%d, empty slot at index %d):\n",
			state.BoardSize, state.BoardSize, state.Board.EmptyIndex()))
		sb.WriteString(formatBoard(state.Board, state.BoardSize))
		sb.WriteString(fmt.Sprintf("Moves: %d\n", state.MoveCount))
		sb.WriteString(fmt.Sprintf("Time: %ds elapsed, %ds remaining\n",
			state.ElapsedSeconds, state.RemainingSeconds()))
	} else {
		sb.WriteString("No board yet - call start_game with an image and size.\n")
	}

	if state.Message != "" {
		sb.WriteString(fmt.Sprintf("Message: %s\n", state.Message))
	}
	return sb.String()
}

func formatClickResult(tileIndex int, result *service.ClickResult) string {
	var sb strings.Builder
	if result.Moved {
		sb.WriteString(fmt.Sprintf("Moved tile at index %d into the empty slot.\n\n", tileIndex))
	} else {
		sb.WriteString(fmt.Sprintf("Blocked: the tile at index %d cannot slide right now.\n\n", tileIndex))
	}
	sb.WriteString(formatBoardState(result.State))
	for _, ev := range result.Events {
		sb.WriteString(fmt.Sprintf("\n%s: %s\n", ev.Type, ev.Message))
	}
	return sb.String()
}

func formatHistory(h *service.HistoryResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Click History (%d total attempts, showing %d from offset %d):\n\n",
		h.TotalMoves, len(h.Moves), h.Offset))

	for _, m := range h.Moves {
		status := "blocked"
		if m.Success {
			status = "ok"
		}
		sb.WriteString(fmt.Sprintf("#%d %s idx=%d tile=%d (%d,%d)->(%d,%d) [%s]\n",
			m.MoveNumber, time.Unix(m.Timestamp, 0).Format("15:04:05"), m.TileIndex, m.Tile,
			m.From.X, m.From.Y, m.To.X, m.To.Y, status))
	}

	return sb.String()
}
