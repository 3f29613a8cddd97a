package service

import (
	"context"
	"time"

	"github.com/nmarchi/slidepuzzle/game/engine"
)

// GameService defines all puzzle-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, presetName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Transitions
	Start(ctx context.Context, sessionID, imageRef string, size int) (*engine.SessionState, error)
	ClickTile(ctx context.Context, sessionID string, tileIndex int) (*ClickResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.SessionState, error)
	NewGame(ctx context.Context, sessionID string) (*engine.SessionState, error)
	Solve(ctx context.Context, sessionID string) (*engine.SessionState, error)

	// Game State
	GetState(ctx context.Context, sessionID string) (*engine.SessionState, error)
	Geometry(ctx context.Context, sessionID string, viewportWidth int) (*GeometryResult, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Presets
	ListPresets(ctx context.Context) ([]*PresetInfo, error)
	SavePreset(ctx context.Context, presetName string, preset *engine.Preset) error

	// Lifecycle
	SetNotifier(notifier StateNotifier)
	CleanupExpiredSessions(maxAge time.Duration) int
	Shutdown()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, preset *engine.Preset) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpired(maxAge time.Duration) []string
	Count() int
}

// PresetManager handles puzzle preset loading
type PresetManager interface {
	LoadPreset(name string) (*engine.Preset, error)
	ListPresets() ([]*PresetInfo, error)
	GetDefault() *engine.Preset
	SavePreset(name string, preset *engine.Preset) error
}

// StateNotifier observes every session state mutation, including timer
// ticks. Implementations must not call back into the GameService.
type StateNotifier interface {
	NotifyState(sessionID string, state *engine.SessionState, event string)
}

// Session represents an active puzzle session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Preset         *engine.Preset
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
