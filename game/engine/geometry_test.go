package engine

import "testing"

func TestBoardPixelSize(t *testing.T) {
	tests := []struct {
		name     string
		viewport int
		max      int
		want     int
	}{
		{"wide viewport capped", 1200, 600, 600},
		{"narrow viewport scales", 400, 600, 360},
		{"exactly at cap", 667, 600, 600},
		{"zero viewport", 0, 600, 0},
		{"zero cap uses default", 1200, 0, 600},
		{"custom cap", 1200, 800, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoardPixelSize(tt.viewport, tt.max); got != tt.want {
				t.Errorf("BoardPixelSize(%d, %d) = %d, want %d", tt.viewport, tt.max, got, tt.want)
			}
		})
	}
}

func TestBoardGeometry(t *testing.T) {
	b := Board{1, 2, 3, 4, 5, 6, 7, 0, 9}
	geo := BoardGeometry(b, 3, 300)

	if len(geo) != 9 {
		t.Fatalf("Expected 9 tile geometries, got %d", len(geo))
	}

	// Slot 8 holds tile 9, whose correct slot is also 8.
	g := geo[8]
	if g.X != 200 || g.Y != 200 {
		t.Errorf("Expected slot offset (200,200), got (%d,%d)", g.X, g.Y)
	}
	if g.BackgroundX != 200 || g.BackgroundY != 200 {
		t.Errorf("Expected background crop (200,200), got (%d,%d)", g.BackgroundX, g.BackgroundY)
	}
	if g.SizePx != 100 {
		t.Errorf("Expected tile size 100px, got %d", g.SizePx)
	}

	// Slot 7 holds the empty marker: placed, but no background crop.
	empty := geo[7]
	if empty.Tile != EmptySlot {
		t.Errorf("Expected empty marker at slot 7, got tile %d", empty.Tile)
	}
	if empty.X != 100 || empty.Y != 200 {
		t.Errorf("Expected empty slot offset (100,200), got (%d,%d)", empty.X, empty.Y)
	}
	if empty.BackgroundX != 0 || empty.BackgroundY != 0 {
		t.Errorf("Expected zero background for the gap, got (%d,%d)", empty.BackgroundX, empty.BackgroundY)
	}

	// Slot 0 holds tile 1 in its correct place.
	first := geo[0]
	if first.X != 0 || first.Y != 0 || first.BackgroundX != 0 || first.BackgroundY != 0 {
		t.Errorf("Expected tile 1 anchored at origin, got %+v", first)
	}
}

func TestBoardGeometry_MisplacedTileCrop(t *testing.T) {
	// Tile 2 (correct slot 1) sitting in slot 0: crop must follow the tile.
	b := Board{2, 1, 3, 4, 5, 6, 7, 8, 0}
	geo := BoardGeometry(b, 3, 300)

	g := geo[0]
	if g.X != 0 || g.Y != 0 {
		t.Errorf("Expected slot offset (0,0), got (%d,%d)", g.X, g.Y)
	}
	if g.BackgroundX != 100 || g.BackgroundY != 0 {
		t.Errorf("Expected background crop (100,0) for tile 2, got (%d,%d)", g.BackgroundX, g.BackgroundY)
	}
}

func TestBoardGeometry_InvalidSize(t *testing.T) {
	if geo := BoardGeometry(Board{1, 0}, 0, 300); geo != nil {
		t.Errorf("Expected nil for non-positive size, got %v", geo)
	}
}
