package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nmarchi/slidepuzzle/game/engine"
	"github.com/nmarchi/slidepuzzle/game/service"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)

// Manager handles preset loading and caching. The built-in classic presets
// are always available; a preset directory layers file-based presets on top.
type Manager struct {
	presetDir string
	presets   map[string]*engine.Preset
	mu        sync.RWMutex
}

// NewManager creates a new preset manager. An empty presetDir serves only
// the built-in presets; otherwise the directory is created if missing.
func NewManager(presetDir string) (*Manager, error) {
	if presetDir != "" {
		if err := os.MkdirAll(presetDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create preset directory: %w", err)
		}
	}

	return &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*engine.Preset),
	}, nil
}

// builtinPresets returns the presets that ship with the server, one per
// supported board size.
func builtinPresets() map[string]*engine.Preset {
	return map[string]*engine.Preset{
		"classic3": {
			Name:           "classic3",
			Description:    "Easy 3×3 board, 90 second limit",
			BoardSize:      3,
			SecondsPerTile: engine.DefaultSecondsPerTile,
			MaxBoardPixels: engine.DefaultMaxBoardPixels,
		},
		"classic4": {
			Name:           "classic4",
			Description:    "Classic 4×4 fifteen puzzle, 160 second limit",
			BoardSize:      4,
			SecondsPerTile: engine.DefaultSecondsPerTile,
			MaxBoardPixels: engine.DefaultMaxBoardPixels,
		},
		"classic5": {
			Name:           "classic5",
			Description:    "Hard 5×5 board, 250 second limit",
			BoardSize:      5,
			SecondsPerTile: engine.DefaultSecondsPerTile,
			MaxBoardPixels: engine.DefaultMaxBoardPixels,
		},
	}
}

// LoadPreset loads a preset by name, checking built-ins first, then the
// cache, then the preset directory.
func (m *Manager) LoadPreset(name string) (*engine.Preset, error) {
	if preset, ok := builtinPresets()[name]; ok {
		return preset, nil
	}

	m.mu.RLock()
	if preset, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	if m.presetDir == "" {
		return nil, ErrPresetNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring the write lock.
	if preset, exists := m.presets[name]; exists {
		return preset, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.presetDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset engine.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse preset: %w", err)
	}
	if err := engine.ValidatePreset(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	m.presets[name] = &preset
	return &preset, nil
}

// ListPresets returns information about all available presets, built-ins
// first, then file-based presets sorted by ID.
func (m *Manager) ListPresets() ([]*service.PresetInfo, error) {
	var infos []*service.PresetInfo

	builtins := builtinPresets()
	builtinIDs := make([]string, 0, len(builtins))
	for id := range builtins {
		builtinIDs = append(builtinIDs, id)
	}
	sort.Strings(builtinIDs)
	for _, id := range builtinIDs {
		infos = append(infos, presetInfo(id, builtins[id], true))
	}

	if m.presetDir == "" {
		return infos, nil
	}

	entries, err := os.ReadDir(m.presetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	var fileIDs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fileIDs = append(fileIDs, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(fileIDs)

	for _, id := range fileIDs {
		if _, ok := builtins[id]; ok {
			continue
		}
		preset, err := m.LoadPreset(id)
		if err != nil {
			// Skip unreadable or invalid presets.
			continue
		}
		infos = append(infos, presetInfo(id, preset, false))
	}

	return infos, nil
}

// GetDefault returns the default preset.
func (m *Manager) GetDefault() *engine.Preset {
	return builtinPresets()["classic4"]
}

// SavePreset validates a preset and writes it to the preset directory.
func (m *Manager) SavePreset(name string, preset *engine.Preset) error {
	if err := engine.ValidatePreset(preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}
	if m.presetDir == "" {
		return fmt.Errorf("no preset directory configured")
	}
	if _, ok := builtinPresets()[name]; ok {
		return fmt.Errorf("cannot overwrite built-in preset %q", name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.presetDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	m.mu.Lock()
	m.presets[name] = preset
	m.mu.Unlock()

	return nil
}

// RefreshCache drops all cached file-based presets so they are re-read from
// disk on next load.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presets = make(map[string]*engine.Preset)
}

func presetInfo(id string, p *engine.Preset, builtIn bool) *service.PresetInfo {
	return &service.PresetInfo{
		PresetID:       id,
		Name:           p.Name,
		Description:    p.Description,
		BoardSize:      p.BoardSize,
		TimeLimitSecs:  p.BoardSize * p.BoardSize * p.SecondsPerTile,
		MaxBoardPixels: p.MaxBoardPixels,
		BuiltIn:        builtIn,
	}
}
