package engine

import "math/rand"

// Board is an ordered sequence of length size² holding tile identifiers
// 1..size²-1 plus exactly one EmptySlot marker. Slot index i maps to
// coordinates (i % size, i / size).
type Board []int

// SolvedBoard returns the solved layout for the given size: tiles 1..size²-1
// in order with the empty marker in the last slot.
func SolvedBoard(size int) Board {
	b := make(Board, size*size)
	for i := 0; i < len(b)-1; i++ {
		b[i] = i + 1
	}
	b[len(b)-1] = EmptySlot
	return b
}

// Clone returns an independent copy of the board.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	copy(out, b)
	return out
}

// EmptyIndex returns the slot holding the empty marker, or -1 if the board
// is malformed.
func (b Board) EmptyIndex() int {
	for i, v := range b {
		if v == EmptySlot {
			return i
		}
	}
	return -1
}

// IsSolved reports whether every slot i holds tile i+1 and the last slot
// holds the empty marker.
func IsSolved(b Board) bool {
	if len(b) == 0 {
		return false
	}
	for i := 0; i < len(b)-1; i++ {
		if b[i] != i+1 {
			return false
		}
	}
	return b[len(b)-1] == EmptySlot
}

// IsAdjacent reports whether slots a and b are horizontal or vertical
// neighbors on a size×size board, i.e. their Manhattan distance is exactly 1.
func IsAdjacent(a, b, size int) bool {
	if a < 0 || b < 0 || a >= size*size || b >= size*size {
		return false
	}
	dx := a%size - b%size
	if dx < 0 {
		dx = -dx
	}
	dy := a/size - b/size
	if dy < 0 {
		dy = -dy
	}
	return dx+dy == 1
}

// ApplyMove slides the tile at tileIndex into the empty slot when the two
// are adjacent. It returns the resulting board and whether anything moved.
// Clicking the empty slot itself or a non-adjacent tile returns the input
// board unchanged.
func ApplyMove(b Board, tileIndex, size int) (Board, bool) {
	if tileIndex < 0 || tileIndex >= len(b) || b[tileIndex] == EmptySlot {
		return b, false
	}
	empty := b.EmptyIndex()
	if empty < 0 || !IsAdjacent(tileIndex, empty, size) {
		return b, false
	}
	next := b.Clone()
	next[tileIndex], next[empty] = next[empty], next[tileIndex]
	return next, true
}

// neighborSlots lists the slots orthogonally adjacent to index on a
// size×size board.
func neighborSlots(index, size int) []int {
	x, y := index%size, index/size
	out := make([]int, 0, 4)
	if y > 0 {
		out = append(out, index-size)
	}
	if y < size-1 {
		out = append(out, index+size)
	}
	if x > 0 {
		out = append(out, index-1)
	}
	if x < size-1 {
		out = append(out, index+1)
	}
	return out
}

// Shuffle generates a solvable board via a randomized walk of size²×10 legal
// swaps starting from the solved layout. Every swap is a valid slide move, so
// the result is always reachable from solved. A walk that happens to land
// back on the solved board is discarded and re-run, so the returned board is
// never already solved. Size must be at least 2.
func Shuffle(size int, rng *rand.Rand) Board {
	steps := size * size * ShuffleStepsPerSlot
	for {
		b := SolvedBoard(size)
		empty := len(b) - 1
		for i := 0; i < steps; i++ {
			candidates := neighborSlots(empty, size)
			target := candidates[rng.Intn(len(candidates))]
			b[empty], b[target] = b[target], b[empty]
			empty = target
		}
		if !IsSolved(b) {
			return b
		}
	}
}
