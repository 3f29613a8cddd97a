package engine

import "fmt"

// Preset represents the tunable puzzle parameters loaded from JSON.
type Preset struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	BoardSize      int    `json:"board_size"`
	SecondsPerTile int    `json:"seconds_per_tile"`
	MaxBoardPixels int    `json:"max_board_pixels"`
}

// DefaultPreset returns the classic 4×4 preset.
func DefaultPreset() *Preset {
	return &Preset{
		Name:           "classic4",
		Description:    "Classic 4×4 fifteen puzzle",
		BoardSize:      4,
		SecondsPerTile: DefaultSecondsPerTile,
		MaxBoardPixels: DefaultMaxBoardPixels,
	}
}

// ValidatePreset validates a preset for correctness and playability.
func ValidatePreset(p *Preset) error {
	if p == nil {
		return fmt.Errorf("preset validation: preset is required")
	}
	if p.Name == "" {
		return fmt.Errorf("preset validation: name is required")
	}
	if p.BoardSize < MinBoardSize || p.BoardSize > MaxBoardSize {
		return fmt.Errorf("preset validation: board_size must be between %d and %d, got %d",
			MinBoardSize, MaxBoardSize, p.BoardSize)
	}
	if p.SecondsPerTile < 1 {
		return fmt.Errorf("preset validation: seconds_per_tile must be positive, got %d", p.SecondsPerTile)
	}
	if p.MaxBoardPixels < 100 {
		return fmt.Errorf("preset validation: max_board_pixels must be at least 100, got %d", p.MaxBoardPixels)
	}
	return nil
}
