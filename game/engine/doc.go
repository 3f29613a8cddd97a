// Package engine provides the core puzzle logic for the sliding-tile image
// puzzle game.
//
// The engine package implements:
//   - Board representation and solved-state detection
//   - Guaranteed-solvable shuffle generation (randomized walk from solved)
//   - Move legality checking (slot adjacency) and move application
//   - The timed session state machine (selecting, playing, solved, time up)
//   - Derived tile geometry for rendering clients
//
// Core Types:
//
// Board is the ordered slot sequence holding tile identifiers plus a single
// empty marker. SessionState is the complete state of one puzzle session and
// every state change is expressed as a pure transition (State, event) → State,
// so the rules are testable without any rendering environment. The Engine
// interface defines the main contract for puzzle operations, implemented by
// GameEngine, a thin mutable wrapper over the pure transitions. Preset defines
// the tunable parameters (board size, countdown scaling) loaded from JSON.
//
// Usage:
//
//	eng, err := engine.NewEngine(engine.DefaultPreset())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := eng.Start("data:image/png;base64,...", 4); err != nil {
//		log.Fatal(err)
//	}
//	moved := eng.ClickTile(14)
//	state := eng.GetState()
//
// Game Rules:
//
// The board starts shuffled. Clicking a tile orthogonally adjacent to the
// empty slot slides it into the gap; any other click is silently ignored.
// The session is won when tiles 1..size²-1 sit in order with the empty slot
// last, and lost when the per-second countdown reaches the time limit
// (size² × seconds-per-tile) first.
package engine
