package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nmarchi/slidepuzzle/game/engine"
)

// testSessionManager is a minimal in-memory SessionManager for service tests.
type testSessionManager struct {
	sessions map[string]*Session
	next     int
	mu       sync.Mutex
}

func newTestSessionManager() *testSessionManager {
	return &testSessionManager{sessions: make(map[string]*Session)}
}

func (m *testSessionManager) Create(id string, preset *engine.Preset) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	eng, err := engine.NewEngine(preset)
	if err != nil {
		return nil, err
	}
	if id == "" {
		m.next++
		id = fmt.Sprintf("s%d", m.next)
	}
	now := time.Now()
	sess := &Session{ID: id, Engine: eng, Preset: preset, CreatedAt: now, LastAccessedAt: now}
	m.sessions[id] = sess
	return sess, nil
}

func (m *testSessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found")
	}
	return sess, nil
}

func (m *testSessionManager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

func (m *testSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *testSessionManager) UpdateLastAccessed(id string) error { return nil }

func (m *testSessionManager) CleanupExpired(maxAge time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	for id := range m.sessions {
		delete(m.sessions, id)
		removed = append(removed, id)
	}
	return removed
}

func (m *testSessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// testPresetManager serves only the default preset.
type testPresetManager struct{}

func (testPresetManager) LoadPreset(name string) (*engine.Preset, error) {
	if name == "classic4" {
		return engine.DefaultPreset(), nil
	}
	return nil, fmt.Errorf("preset not found")
}

func (testPresetManager) ListPresets() ([]*PresetInfo, error) {
	return []*PresetInfo{{PresetID: "classic4", Name: "classic4", BoardSize: 4, BuiltIn: true}}, nil
}

func (testPresetManager) GetDefault() *engine.Preset { return engine.DefaultPreset() }

func (testPresetManager) SavePreset(name string, preset *engine.Preset) error { return nil }

// recordingNotifier captures every notification for assertions.
type recordingNotifier struct {
	events []string
	mu     sync.Mutex
}

func (n *recordingNotifier) NotifyState(sessionID string, state *engine.SessionState, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func newTestService() (*gameServiceImpl, *testSessionManager) {
	mgr := newTestSessionManager()
	svc := NewGameService(mgr, testPresetManager{}).(*gameServiceImpl)
	return svc, mgr
}

// movableIndex returns a slot index adjacent to the empty slot.
func movableIndex(t *testing.T, state *engine.SessionState) int {
	t.Helper()
	empty := state.Board.EmptyIndex()
	for i := range state.Board {
		if engine.IsAdjacent(i, empty, state.BoardSize) {
			return i
		}
	}
	t.Fatal("No movable tile found")
	return -1
}

func TestCreateSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if info.PresetName != "classic4" {
		t.Errorf("Expected default preset classic4, got %s", info.PresetName)
	}
	if info.Status != engine.StatusSelecting {
		t.Errorf("Expected status selecting, got %s", info.Status)
	}

	if _, err := svc.CreateSession(ctx, "nope"); err == nil {
		t.Error("Expected error for unknown preset")
	}
}

func TestStartRequiresImage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "", 3); err == nil {
		t.Error("Expected error starting without an image")
	}
}

func TestStartAndClick(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = time.Hour // keep the countdown out of the way
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	info, _ := svc.CreateSession(ctx, "")
	state, err := svc.Start(ctx, info.SessionID, "img-1", 3)
	if err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	if state.Status != engine.StatusPlaying {
		t.Fatalf("Expected playing, got %s", state.Status)
	}
	if state.TimeLimitSeconds != 90 {
		t.Errorf("Expected 90 second limit for 3×3, got %d", state.TimeLimitSeconds)
	}
	if !notifier.has("start") {
		t.Error("Expected start notification")
	}

	result, err := svc.ClickTile(ctx, info.SessionID, movableIndex(t, state))
	if err != nil {
		t.Fatalf("Failed to click tile: %v", err)
	}
	if !result.Moved {
		t.Error("Expected adjacent click to move")
	}
	if result.State.MoveCount != 1 {
		t.Errorf("Expected move count 1, got %d", result.State.MoveCount)
	}

	// Clicking the empty slot itself never moves.
	result, err = svc.ClickTile(ctx, info.SessionID, result.State.Board.EmptyIndex())
	if err != nil {
		t.Fatalf("Failed to click empty slot: %v", err)
	}
	if result.Moved {
		t.Error("Expected click on empty slot to be rejected")
	}
}

func TestClickSolvesAndStopsCountdown(t *testing.T) {
	svc, mgr := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	// Put the board one slide away from solved.
	sess, _ := mgr.Get(info.SessionID)
	state := sess.Engine.GetState()
	state.Board = engine.Board{1, 2, 3, 4, 5, 6, 7, 0, 8}
	if err := sess.Engine.SetState(state); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}

	result, err := svc.ClickTile(ctx, info.SessionID, 8)
	if err != nil {
		t.Fatalf("Failed to click tile: %v", err)
	}
	if result.State.Status != engine.StatusSolved {
		t.Fatalf("Expected solved, got %s", result.State.Status)
	}
	if len(result.Events) != 1 || result.Events[0].Type != "solved" {
		t.Fatalf("Expected solved event, got %+v", result.Events)
	}
	if !notifier.has("solved") {
		t.Error("Expected solved notification")
	}

	svc.mu.Lock()
	_, running := svc.timers[info.SessionID]
	svc.mu.Unlock()
	if running {
		t.Error("Expected countdown stopped after solve")
	}
}

func TestTickTimeUp(t *testing.T) {
	svc, mgr := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	sess, _ := mgr.Get(info.SessionID)
	state := sess.Engine.GetState()
	state.ElapsedSeconds = state.TimeLimitSeconds - 1
	if err := sess.Engine.SetState(state); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}

	svc.tick(info.SessionID)

	got, _ := svc.GetState(ctx, info.SessionID)
	if got.Status != engine.StatusTimeUp {
		t.Fatalf("Expected time up, got %s", got.Status)
	}
	if got.ElapsedSeconds != got.TimeLimitSeconds {
		t.Errorf("Expected elapsed clamped to limit, got %d/%d", got.ElapsedSeconds, got.TimeLimitSeconds)
	}
	if !notifier.has("time_up") {
		t.Error("Expected time_up notification")
	}

	svc.mu.Lock()
	_, running := svc.timers[info.SessionID]
	svc.mu.Unlock()
	if running {
		t.Error("Expected countdown stopped after time up")
	}

	// A stale tick after the terminal state must not change anything.
	svc.tick(info.SessionID)
	again, _ := svc.GetState(ctx, info.SessionID)
	if again.ElapsedSeconds != got.ElapsedSeconds || again.Status != engine.StatusTimeUp {
		t.Error("Expected tick after time up to be a no-op")
	}
}

func TestCountdownTicksForReal(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = 2 * time.Millisecond
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state, err := svc.GetState(ctx, info.SessionID)
		if err != nil {
			t.Fatalf("Failed to get state: %v", err)
		}
		if state.ElapsedSeconds > 0 {
			svc.Shutdown()
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Countdown never ticked")
}

func TestRestartRestartsCountdown(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	if _, err := svc.Solve(ctx, info.SessionID); err != nil {
		t.Fatalf("Failed to solve: %v", err)
	}

	state, err := svc.Restart(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("Failed to restart: %v", err)
	}
	if state.Status != engine.StatusPlaying || state.MoveCount != 0 || state.ElapsedSeconds != 0 {
		t.Errorf("Expected fresh playing state, got %+v", state)
	}

	svc.mu.Lock()
	_, running := svc.timers[info.SessionID]
	svc.mu.Unlock()
	if !running {
		t.Error("Expected countdown running after restart")
	}
	svc.Shutdown()
}

func TestNewGameStopsCountdown(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	state, err := svc.NewGame(ctx, info.SessionID)
	if err != nil {
		t.Fatalf("Failed to start new game: %v", err)
	}
	if state.Status != engine.StatusSelecting || state.ImageRef != "" {
		t.Errorf("Expected selecting with no image, got %+v", state)
	}

	svc.mu.Lock()
	_, running := svc.timers[info.SessionID]
	svc.mu.Unlock()
	if running {
		t.Error("Expected countdown stopped after new game")
	}
}

func TestSolveBeforeStart(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Solve(ctx, info.SessionID); err == nil {
		t.Error("Expected error solving before a game has started")
	}
}

func TestDeleteSessionStopsCountdown(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	if err := svc.DeleteSession(ctx, info.SessionID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	svc.mu.Lock()
	count := len(svc.timers)
	svc.mu.Unlock()
	if count != 0 {
		t.Errorf("Expected no timers after delete, got %d", count)
	}
}

func TestCleanupExpiredStopsCountdowns(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	if removed := svc.CleanupExpiredSessions(time.Nanosecond); removed != 1 {
		t.Fatalf("Expected 1 session removed, got %d", removed)
	}

	svc.mu.Lock()
	count := len(svc.timers)
	svc.mu.Unlock()
	if count != 0 {
		t.Errorf("Expected no timers after cleanup, got %d", count)
	}
}

func TestGeometry(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	if _, err := svc.Geometry(ctx, info.SessionID, 800); err == nil {
		t.Error("Expected error before a board exists")
	}

	if _, err := svc.Start(ctx, info.SessionID, "img-1", 3); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	geo, err := svc.Geometry(ctx, info.SessionID, 800)
	if err != nil {
		t.Fatalf("Failed to get geometry: %v", err)
	}
	if geo.BoardPixels != 600 { // 90% of 800 capped at 600
		t.Errorf("Expected board 600px, got %d", geo.BoardPixels)
	}
	if geo.TilePixels != 200 {
		t.Errorf("Expected tiles 200px, got %d", geo.TilePixels)
	}
	if len(geo.Tiles) != 9 {
		t.Errorf("Expected 9 tile placements, got %d", len(geo.Tiles))
	}
	svc.Shutdown()
}

func TestMoveHistoryPagination(t *testing.T) {
	svc, _ := newTestService()
	svc.tickInterval = time.Hour
	ctx := context.Background()

	info, _ := svc.CreateSession(ctx, "")
	state, err := svc.Start(ctx, info.SessionID, "img-1", 3)
	if err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}

	// Generate five click attempts, legal or not.
	for i := 0; i < 5; i++ {
		result, err := svc.ClickTile(ctx, info.SessionID, movableIndex(t, state))
		if err != nil {
			t.Fatalf("Failed to click tile: %v", err)
		}
		state = result.State
	}

	page, err := svc.GetMoveHistory(ctx, info.SessionID, HistoryOptions{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}
	if page.TotalMoves != 5 {
		t.Errorf("Expected 5 total attempts, got %d", page.TotalMoves)
	}
	if len(page.Moves) != 2 {
		t.Fatalf("Expected page of 2, got %d", len(page.Moves))
	}
	if page.Moves[0].MoveNumber != 2 {
		t.Errorf("Expected page to start at attempt 2, got %d", page.Moves[0].MoveNumber)
	}

	// Offset past the end yields an empty page.
	page, _ = svc.GetMoveHistory(ctx, info.SessionID, HistoryOptions{Limit: 10, Offset: 99})
	if len(page.Moves) != 0 {
		t.Errorf("Expected empty page past the end, got %d", len(page.Moves))
	}
	svc.Shutdown()
}
