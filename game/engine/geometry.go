package engine

// TileGeometry is the derived pixel placement of one slot for a rendering
// client: where the tile sits on the board and which crop of the source
// image it shows.
type TileGeometry struct {
	SlotIndex int `json:"slot_index"`
	Tile      int `json:"tile"` // EmptySlot for the gap
	X         int `json:"x"`
	Y         int `json:"y"`
	// Background crop offset, derived from the tile's correct slot.
	BackgroundX int `json:"background_x"`
	BackgroundY int `json:"background_y"`
	SizePx      int `json:"size_px"`
}

// BoardPixelSize derives the square board edge length from the reported
// viewport width: 90% of the viewport, capped at maxPixels.
func BoardPixelSize(viewportWidth, maxPixels int) int {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxBoardPixels
	}
	px := viewportWidth * 9 / 10
	if px > maxPixels {
		px = maxPixels
	}
	if px < 0 {
		px = 0
	}
	return px
}

// BoardGeometry computes per-slot tile placement for a board rendered at
// boardPx square pixels. The slot offset is slotIndex × tilePx along each
// axis; the background offset comes from the tile's correct slot so the
// image crop follows the tile as it moves.
func BoardGeometry(b Board, size, boardPx int) []TileGeometry {
	if size <= 0 {
		return nil
	}
	tilePx := boardPx / size
	out := make([]TileGeometry, len(b))
	for i, tile := range b {
		g := TileGeometry{
			SlotIndex: i,
			Tile:      tile,
			X:         (i % size) * tilePx,
			Y:         (i / size) * tilePx,
			SizePx:    tilePx,
		}
		if tile != EmptySlot {
			correct := tile - 1
			g.BackgroundX = (correct % size) * tilePx
			g.BackgroundY = (correct / size) * tilePx
		}
		out[i] = g
	}
	return out
}
