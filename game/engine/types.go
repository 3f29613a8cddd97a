package engine

// Status identifies where a puzzle session is in its lifecycle.
type Status string

const (
	// StatusSelecting means no game is running; the player is choosing an
	// image and a board size.
	StatusSelecting Status = "selecting"
	// StatusPlaying means the board is shuffled and the countdown is running.
	StatusPlaying Status = "playing"
	// StatusSolved means the board reached the solved layout in time.
	StatusSolved Status = "solved"
	// StatusTimeUp means the countdown expired before the board was solved.
	StatusTimeUp Status = "time_up"
)

const (
	// EmptySlot is the sentinel value occupying the single movable gap.
	EmptySlot = 0

	// Validation constants
	MinBoardSize = 3
	MaxBoardSize = 5

	// DefaultSecondsPerTile scales the countdown: limit = size² × this.
	DefaultSecondsPerTile = 10

	// ShuffleStepsPerSlot scales the shuffle walk: steps = size² × this.
	ShuffleStepsPerSlot = 10

	// DefaultMaxBoardPixels caps the rendered board edge length.
	DefaultMaxBoardPixels = 600
)

// Position represents x,y slot coordinates (column, row).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PositionOf converts a row-major slot index to coordinates.
func PositionOf(index, size int) Position {
	return Position{X: index % size, Y: index / size}
}

// MoveRecord represents a single click attempt in the session history.
type MoveRecord struct {
	TileIndex  int      `json:"tile_index"`
	Tile       int      `json:"tile"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Timestamp  int64    `json:"timestamp"`
	Success    bool     `json:"success"`
	MoveNumber int      `json:"move_number"`
}

// SessionState represents the complete state of one puzzle session.
type SessionState struct {
	Status           Status `json:"status"`
	Board            Board  `json:"board"`
	BoardSize        int    `json:"board_size"`
	MoveCount        int    `json:"move_count"`
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	ImageRef         string `json:"image_ref,omitempty"`
	Message          string `json:"message,omitempty"`

	// MoveHistory is cumulative across restarts; MoveCount tracks only
	// successful slides of the current game.
	MoveHistory []MoveRecord `json:"move_history"`
	TotalMoves  int          `json:"total_moves"`
}

// RemainingSeconds returns how much countdown is left, never negative.
func (s *SessionState) RemainingSeconds() int {
	remaining := s.TimeLimitSeconds - s.ElapsedSeconds
	if remaining < 0 {
		return 0
	}
	return remaining
}
