package service

import (
	"time"

	"github.com/nmarchi/slidepuzzle/game/engine"
)

// SessionInfo provides summary information about a puzzle session
type SessionInfo struct {
	SessionID      string        `json:"session_id"`
	PresetName     string        `json:"preset_name"`
	Status         engine.Status `json:"status"`
	BoardSize      int           `json:"board_size"`
	MoveCount      int           `json:"move_count"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
}

// PresetInfo provides summary information about an available preset
type PresetInfo struct {
	PresetID       string `json:"preset_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	BoardSize      int    `json:"board_size"`
	TimeLimitSecs  int    `json:"time_limit_seconds"`
	MaxBoardPixels int    `json:"max_board_pixels"`
	BuiltIn        bool   `json:"built_in"`
}

// GameEvent describes something noteworthy that happened during a mutation,
// such as the puzzle being solved or time running out.
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ClickResult is the outcome of a tile click. Moved is false when the click
// was legal to attempt but targeted a non-movable slot; the state is
// returned either way.
type ClickResult struct {
	Moved  bool                 `json:"moved"`
	State  *engine.SessionState `json:"state"`
	Events []GameEvent          `json:"events,omitempty"`
}

// GeometryResult carries the pixel layout for rendering the current board.
type GeometryResult struct {
	BoardPixels int                   `json:"board_pixels"`
	TilePixels  int                   `json:"tile_pixels"`
	Tiles       []engine.TileGeometry `json:"tiles"`
}

// HistoryOptions controls move history pagination
type HistoryOptions struct {
	Limit  int
	Offset int
}

// HistoryResponse is a page of move history
type HistoryResponse struct {
	Moves      []engine.MoveRecord `json:"moves"`
	TotalMoves int                 `json:"total_moves"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}
