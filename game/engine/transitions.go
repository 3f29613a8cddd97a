package engine

import (
	"math/rand"
	"time"
)

// Every state change in a session goes through one of the pure transitions
// below: (SessionState, event) → SessionState. The input state is never
// mutated; callers replace their copy with the returned value.

// NewSessionState returns the initial selecting state.
func NewSessionState() SessionState {
	return SessionState{Status: StatusSelecting}
}

// StartGame moves a selecting session into play with a fresh shuffled board.
// Counters are reset and the time limit is derived from the board size.
func StartGame(s SessionState, imageRef string, size, secondsPerTile int, rng *rand.Rand) SessionState {
	if secondsPerTile <= 0 {
		secondsPerTile = DefaultSecondsPerTile
	}
	s.Status = StatusPlaying
	s.Board = Shuffle(size, rng)
	s.BoardSize = size
	s.MoveCount = 0
	s.ElapsedSeconds = 0
	s.TimeLimitSeconds = size * size * secondsPerTile
	s.ImageRef = imageRef
	s.Message = ""
	return s
}

// ClickTile applies a tile click. Clicks are only processed while playing.
// A click on a slot not adjacent to the empty marker (or on the empty marker
// itself) leaves the board and move count unchanged; the attempt is still
// recorded in the cumulative history.
func ClickTile(s SessionState, tileIndex int) SessionState {
	if s.Status != StatusPlaying {
		return s
	}

	empty := s.Board.EmptyIndex()
	next, moved := ApplyMove(s.Board, tileIndex, s.BoardSize)

	record := MoveRecord{
		TileIndex:  tileIndex,
		Timestamp:  time.Now().Unix(),
		Success:    moved,
		MoveNumber: s.TotalMoves + 1,
	}
	if tileIndex >= 0 && tileIndex < len(s.Board) {
		record.Tile = s.Board[tileIndex]
		record.From = PositionOf(tileIndex, s.BoardSize)
	}
	if moved {
		record.To = PositionOf(empty, s.BoardSize)
	} else {
		record.To = record.From
	}

	s.Board = next
	s.MoveHistory = append(s.MoveHistory, record)
	s.TotalMoves++
	if moved {
		s.MoveCount++
		if IsSolved(s.Board) {
			s.Status = StatusSolved
			s.Message = "Puzzle solved!"
		}
	}
	return s
}

// Tick advances the countdown by one second. Ticks are only active while
// playing; when the limit is reached the elapsed time is clamped to the
// limit and the session transitions to time up.
func Tick(s SessionState) SessionState {
	if s.Status != StatusPlaying {
		return s
	}
	s.ElapsedSeconds++
	if s.ElapsedSeconds >= s.TimeLimitSeconds {
		s.ElapsedSeconds = s.TimeLimitSeconds
		s.Status = StatusTimeUp
		s.Message = "Time is up!"
	}
	return s
}

// Restart reshuffles the current board size and resets the counters, keeping
// the chosen image. Restarting a session that never started is a no-op.
func Restart(s SessionState, secondsPerTile int, rng *rand.Rand) SessionState {
	if s.BoardSize < MinBoardSize {
		return s
	}
	return StartGame(s, s.ImageRef, s.BoardSize, secondsPerTile, rng)
}

// NewGame returns the session to image/size selection, clearing the chosen
// image. The cumulative move history is preserved.
func NewGame(s SessionState) SessionState {
	s.Status = StatusSelecting
	s.Board = nil
	s.BoardSize = 0
	s.MoveCount = 0
	s.ElapsedSeconds = 0
	s.TimeLimitSeconds = 0
	s.ImageRef = ""
	s.Message = ""
	return s
}

// ForceSolve jumps straight to the solved layout and marks the session
// solved. The move count is left untouched: this is a forced win, not a
// computed solution path. Before a game has started there is nothing to
// solve and the state is returned unchanged.
func ForceSolve(s SessionState) SessionState {
	if s.BoardSize < MinBoardSize {
		return s
	}
	s.Board = SolvedBoard(s.BoardSize)
	s.Status = StatusSolved
	s.Message = "Puzzle solved!"
	return s
}
