package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nmarchi/slidepuzzle/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	presets  PresetManager
	notifier StateNotifier

	// timers holds the running countdown for each playing session.
	timers map[string]*countdown
	// tickInterval is one second in production; tests shorten it.
	tickInterval time.Duration

	mu sync.Mutex
}

// NewGameService creates a new game service
func NewGameService(sessions SessionManager, presets PresetManager) GameService {
	return &gameServiceImpl{
		sessions:     sessions,
		presets:      presets,
		timers:       make(map[string]*countdown),
		tickInterval: time.Second,
	}
}

// SetNotifier registers the observer for session state mutations.
func (s *gameServiceImpl) SetNotifier(notifier StateNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = notifier
}

// notifyLocked pushes a state copy to the registered notifier. Callers hold s.mu.
func (s *gameServiceImpl) notifyLocked(sessionID string, state *engine.SessionState, event string) {
	if s.notifier != nil {
		s.notifier.NotifyState(sessionID, state, event)
	}
}

// CreateSession creates a new puzzle session using the named preset, or the
// default preset when presetName is empty.
func (s *gameServiceImpl) CreateSession(ctx context.Context, presetName string) (*SessionInfo, error) {
	preset := s.presets.GetDefault()
	if presetName != "" {
		loaded, err := s.presets.LoadPreset(presetName)
		if err != nil {
			return nil, fmt.Errorf("failed to load preset %q: %w", presetName, err)
		}
		preset = loaded
	}

	sess, err := s.sessions.Create("", preset)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

// GetSession returns summary information about a session.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns summary information about all sessions.
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sessionInfo(sess))
	}
	return infos, nil
}

// DeleteSession removes a session and cancels its countdown.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	s.stopCountdownLocked(sessionID)
	s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Start begins play for a session: shuffles a board of the requested size,
// sets the time limit, and starts the countdown.
func (s *gameServiceImpl) Start(ctx context.Context, sessionID, imageRef string, size int) (*engine.SessionState, error) {
	if imageRef == "" {
		return nil, fmt.Errorf("an image must be selected before starting")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Start(imageRef, size); err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	s.startCountdownLocked(sessionID)

	state := sess.Engine.GetState()
	s.notifyLocked(sessionID, state, "start")
	return state, nil
}

// ClickTile attempts to slide the tile at tileIndex into the empty slot.
// Clicks on non-movable slots are recorded but do not change the board.
func (s *gameServiceImpl) ClickTile(ctx context.Context, sessionID string, tileIndex int) (*ClickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	moved := sess.Engine.ClickTile(tileIndex)
	_ = s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.GetState()
	result := &ClickResult{Moved: moved, State: state}

	event := "click"
	if state.Status == engine.StatusSolved {
		s.stopCountdownLocked(sessionID)
		event = "solved"
		result.Events = append(result.Events, GameEvent{
			Type:      "solved",
			Message:   fmt.Sprintf("Puzzle solved in %d moves with %d seconds to spare!", state.MoveCount, state.RemainingSeconds()),
			Timestamp: time.Now(),
		})
	}

	s.notifyLocked(sessionID, state, event)
	return result, nil
}

// Restart reshuffles the current board and restarts the countdown.
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Restart(); err != nil {
		return nil, err
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	s.startCountdownLocked(sessionID)

	state := sess.Engine.GetState()
	s.notifyLocked(sessionID, state, "restart")
	return state, nil
}

// NewGame returns a session to image and size selection.
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*engine.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	s.stopCountdownLocked(sessionID)
	sess.Engine.NewGame()
	_ = s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.GetState()
	s.notifyLocked(sessionID, state, "new_game")
	return state, nil
}

// Solve forces the board into the solved layout and stops the countdown.
func (s *gameServiceImpl) Solve(ctx context.Context, sessionID string) (*engine.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.BoardSize() < engine.MinBoardSize {
		return nil, fmt.Errorf("cannot solve: no game has been started")
	}

	s.stopCountdownLocked(sessionID)
	sess.Engine.Solve()
	_ = s.sessions.UpdateLastAccessed(sessionID)

	state := sess.Engine.GetState()
	s.notifyLocked(sessionID, state, "solved")
	return state, nil
}

// GetState returns a copy of the session's current state.
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// Geometry derives the pixel layout of the current board for the reported
// viewport width.
func (s *gameServiceImpl) Geometry(ctx context.Context, sessionID string, viewportWidth int) (*GeometryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	if state.BoardSize < engine.MinBoardSize {
		return nil, fmt.Errorf("no active board: start a game first")
	}

	boardPx := engine.BoardPixelSize(viewportWidth, sess.Preset.MaxBoardPixels)
	return &GeometryResult{
		BoardPixels: boardPx,
		TilePixels:  boardPx / state.BoardSize,
		Tiles:       engine.BoardGeometry(state.Board, state.BoardSize, boardPx),
	}, nil
}

// GetMoveHistory returns a page of the session's cumulative click history.
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	moves := []engine.MoveRecord{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		moves = append(moves, history[offset:end]...)
	}

	return &HistoryResponse{
		Moves:      moves,
		TotalMoves: total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// ListPresets returns information about all available presets.
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*PresetInfo, error) {
	return s.presets.ListPresets()
}

// SavePreset validates and persists a custom preset.
func (s *gameServiceImpl) SavePreset(ctx context.Context, presetName string, preset *engine.Preset) error {
	return s.presets.SavePreset(presetName, preset)
}

// CleanupExpiredSessions removes sessions idle longer than maxAge and cancels
// their countdowns. It returns the number of sessions removed.
func (s *gameServiceImpl) CleanupExpiredSessions(maxAge time.Duration) int {
	removed := s.sessions.CleanupExpired(maxAge)

	s.mu.Lock()
	for _, id := range removed {
		s.stopCountdownLocked(id)
	}
	s.mu.Unlock()

	return len(removed)
}

// Shutdown cancels every running countdown.
func (s *gameServiceImpl) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// startCountdownLocked replaces any running countdown for the session with a
// fresh one. Callers hold s.mu.
func (s *gameServiceImpl) startCountdownLocked(sessionID string) {
	s.stopCountdownLocked(sessionID)
	s.timers[sessionID] = newCountdown(s.tickInterval, func() { s.tick(sessionID) })
}

// stopCountdownLocked cancels the session's countdown if one is running.
// Callers hold s.mu.
func (s *gameServiceImpl) stopCountdownLocked(sessionID string) {
	if timer, ok := s.timers[sessionID]; ok {
		timer.Stop()
		delete(s.timers, sessionID)
	}
}

// tick advances one session's countdown by a second. Runs on the countdown
// goroutine; ticks arriving after play ended are harmless no-ops.
func (s *gameServiceImpl) tick(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		// Session vanished out from under its timer.
		s.stopCountdownLocked(sessionID)
		return
	}

	status := sess.Engine.Tick()
	if status != engine.StatusPlaying {
		s.stopCountdownLocked(sessionID)
	}

	event := "tick"
	if status == engine.StatusTimeUp {
		event = "time_up"
	}
	s.notifyLocked(sessionID, sess.Engine.GetState(), event)
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		SessionID:      sess.ID,
		PresetName:     sess.Preset.Name,
		Status:         sess.Engine.Status(),
		BoardSize:      sess.Engine.BoardSize(),
		MoveCount:      sess.Engine.MoveCount(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
	}
}
