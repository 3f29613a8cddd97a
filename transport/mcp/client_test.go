package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nmarchi/slidepuzzle/game/engine"
	"github.com/nmarchi/slidepuzzle/game/service"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"session_id": "ab12",
		"status":     "selecting",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["session_id"] != expectedResponse["session_id"] {
		t.Errorf("Expected session_id %v, got %v", expectedResponse["session_id"], response["session_id"])
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}
	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/sessions/zzzz", nil, nil)
	if err == nil || err.Error() != "session not found" {
		t.Errorf("Expected API error message passed through, got: %v", err)
	}
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result with content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		resp := service.SessionInfo{
			SessionID:  "ab12",
			PresetName: "classic4",
			Status:     engine.StatusSelecting,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(),
		toolRequest("create_session", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := textContent(t, result)
	if !strings.Contains(text, "ab12") || !strings.Contains(text, "classic4") {
		t.Errorf("Expected session ID and preset in result, got: %s", text)
	}
}

func TestClient_clickTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/ab12/click" {
			t.Errorf("Expected POST /api/sessions/ab12/click, got %s %s", r.Method, r.URL.Path)
		}
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["tile_index"] != float64(7) {
			t.Errorf("Expected tile_index 7, got %v", req["tile_index"])
		}

		resp := service.ClickResult{
			Moved: true,
			State: &engine.SessionState{
				Status:    engine.StatusPlaying,
				Board:     engine.Board{1, 2, 3, 4, 5, 6, 7, 0, 8},
				BoardSize: 3,
				MoveCount: 4,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleClickTile(context.Background(),
		toolRequest("click_tile", map[string]interface{}{
			"session_id": "ab12",
			"tile_index": float64(7),
		}))
	if err != nil {
		t.Fatalf("clickTile failed: %v", err)
	}

	text := textContent(t, result)
	if !strings.Contains(text, "Moved tile at index 7") {
		t.Errorf("Expected move confirmation, got: %s", text)
	}
	if !strings.Contains(text, "Moves: 4") {
		t.Errorf("Expected move count, got: %s", text)
	}
}

func TestClient_clickTile_MissingIndex(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleClickTile(context.Background(),
		toolRequest("click_tile", map[string]interface{}{"session_id": "ab12"}))
	if err != nil {
		t.Fatalf("clickTile failed: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("Expected tool error for missing tile_index")
	}
}

func TestFormatBoard(t *testing.T) {
	board := engine.Board{1, 2, 3, 4, 0, 5, 7, 8, 6}
	result := formatBoard(board, 3)

	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 rows, got %d: %q", len(lines), result)
	}
	if !strings.Contains(lines[1], "·") {
		t.Errorf("Expected empty slot dot in middle row, got: %q", lines[1])
	}
	if !strings.Contains(lines[0], "1") || !strings.Contains(lines[2], "6") {
		t.Errorf("Expected tile numbers in grid, got: %q", result)
	}
}

func TestFormatBoardState(t *testing.T) {
	state := &engine.SessionState{
		Status:           engine.StatusPlaying,
		Board:            engine.Board{1, 2, 3, 4, 5, 6, 7, 0, 8},
		BoardSize:        3,
		MoveCount:        12,
		ElapsedSeconds:   30,
		TimeLimitSeconds: 90,
	}

	result := formatBoardState(state)

	expectedFields := []string{
		"Status: playing",
		"empty slot at index 7",
		"Moves: 12",
		"30s elapsed, 60s remaining",
	}
	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestFormatBoardState_NoBoard(t *testing.T) {
	state := &engine.SessionState{Status: engine.StatusSelecting}

	result := formatBoardState(state)
	if !strings.Contains(result, "No board yet") {
		t.Errorf("Expected selection hint, got: %s", result)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(),
		toolRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := textContent(t, result)
	expectedContent := []string{
		"Sliding Tile Puzzle - Complete Instructions",
		"GAME OBJECTIVE:",
		"GAME MECHANICS:",
		"BOARD DISPLAY:",
		"STRATEGY NOTES:",
		"SESSION LIFECYCLE:",
		"SESSION MANAGEMENT:",
	}
	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
