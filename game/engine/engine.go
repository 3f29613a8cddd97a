package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for puzzle operations
type Engine interface {
	// Session state management
	GetState() *SessionState
	SetState(state *SessionState) error
	Status() Status
	Board() Board
	BoardSize() int
	MoveCount() int
	ElapsedSeconds() int
	TimeLimitSeconds() int
	IsSolved() bool

	// Session transitions
	Start(imageRef string, size int) error
	ClickTile(tileIndex int) bool
	Tick() Status
	Restart() error
	NewGame()
	Solve()

	// Configuration
	GetPreset() *Preset

	// History
	GetMoveHistory() []MoveRecord
	GetLastMove() *MoveRecord
}

// GameEngine implements the Engine interface. It is a mutable wrapper that
// routes every change through the pure transition functions.
type GameEngine struct {
	state  SessionState
	preset *Preset
	rng    *rand.Rand
}

// NewEngine creates a new puzzle engine with the provided preset.
func NewEngine(preset *Preset) (*GameEngine, error) {
	if err := ValidatePreset(preset); err != nil {
		return nil, err
	}
	return &GameEngine{
		state:  NewSessionState(),
		preset: preset,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// NewEngineWithDefaults creates a new puzzle engine with the classic preset.
func NewEngineWithDefaults() *GameEngine {
	eng, _ := NewEngine(DefaultPreset())
	return eng
}

// SetRand replaces the engine's random source, used for deterministic tests.
func (e *GameEngine) SetRand(rng *rand.Rand) {
	e.rng = rng
}

// GetState returns a copy of the current session state.
func (e *GameEngine) GetState() *SessionState {
	state := e.state
	state.Board = e.state.Board.Clone()
	return &state
}

// SetState replaces the session state.
func (e *GameEngine) SetState(state *SessionState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = *state
	return nil
}

// Status returns the current lifecycle status.
func (e *GameEngine) Status() Status {
	return e.state.Status
}

// Board returns the current board.
func (e *GameEngine) Board() Board {
	return e.state.Board
}

// BoardSize returns the current board size, 0 before a game has started.
func (e *GameEngine) BoardSize() int {
	return e.state.BoardSize
}

// MoveCount returns the number of successful slides in the current game.
func (e *GameEngine) MoveCount() int {
	return e.state.MoveCount
}

// ElapsedSeconds returns the seconds consumed by the countdown.
func (e *GameEngine) ElapsedSeconds() int {
	return e.state.ElapsedSeconds
}

// TimeLimitSeconds returns the countdown limit of the current game.
func (e *GameEngine) TimeLimitSeconds() int {
	return e.state.TimeLimitSeconds
}

// IsSolved reports whether the current board is in the solved layout.
func (e *GameEngine) IsSolved() bool {
	return IsSolved(e.state.Board)
}

// Start begins a game from the selecting state with the given image and
// board size. A size of 0 uses the preset's board size.
func (e *GameEngine) Start(imageRef string, size int) error {
	if e.state.Status != StatusSelecting {
		return fmt.Errorf("cannot start: session is %s, use restart or new game", e.state.Status)
	}
	if size == 0 {
		size = e.preset.BoardSize
	}
	if size < MinBoardSize || size > MaxBoardSize {
		return fmt.Errorf("board size must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, size)
	}
	e.state = StartGame(e.state, imageRef, size, e.preset.SecondsPerTile, e.rng)
	return nil
}

// ClickTile attempts to slide the tile at the given slot index into the
// empty slot. It reports whether the board changed.
func (e *GameEngine) ClickTile(tileIndex int) bool {
	before := e.state.MoveCount
	e.state = ClickTile(e.state, tileIndex)
	return e.state.MoveCount > before
}

// Tick advances the countdown by one second and returns the resulting
// status, so callers can cancel the timer when play ends.
func (e *GameEngine) Tick() Status {
	e.state = Tick(e.state)
	return e.state.Status
}

// Restart reshuffles the current size and resets the counters.
func (e *GameEngine) Restart() error {
	if e.state.BoardSize < MinBoardSize {
		return fmt.Errorf("cannot restart: no game has been started")
	}
	e.state = Restart(e.state, e.preset.SecondsPerTile, e.rng)
	return nil
}

// NewGame returns the session to image/size selection.
func (e *GameEngine) NewGame() {
	e.state = NewGame(e.state)
}

// Solve forces the board into the solved layout, leaving the move count
// untouched.
func (e *GameEngine) Solve() {
	e.state = ForceSolve(e.state)
}

// GetPreset returns the engine's preset.
func (e *GameEngine) GetPreset() *Preset {
	return e.preset
}

// GetMoveHistory returns the cumulative click history.
func (e *GameEngine) GetMoveHistory() []MoveRecord {
	return e.state.MoveHistory
}

// GetLastMove returns the last click attempt, or nil if none.
func (e *GameEngine) GetLastMove() *MoveRecord {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
