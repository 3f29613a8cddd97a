// Package service provides the session controller for the sliding-tile
// puzzle: it wires user actions and the per-second countdown into puzzle
// engine transitions and exposes the result to transports.
//
// The service package implements:
//   - The GameService interface consumed by the REST API and MCP transport
//   - Session lifecycle operations (create, start, restart, new game, delete)
//   - Tile-click handling with solved-state detection
//   - The per-session countdown: a cancellable repeating task started when a
//     session enters play and stopped on every exit transition
//   - Derived tile geometry for rendering clients
//   - Paginated move history retrieval
//
// Concurrency:
//
// All session mutations — click handling and timer ticks alike — are
// serialized through a single service mutex, so no two state transitions
// ever run concurrently. The countdown goroutine only ever calls back into
// the service's tick path; it is cancelled when play ends, when the session
// is deleted or expires, and on shutdown, so a stale timer can never mutate
// a finished session.
//
// Notifications:
//
// A StateNotifier registered via SetNotifier observes every state mutation,
// including timer ticks. Transports use this to push board updates to
// rendering clients. The notifier is invoked with a state copy and must not
// call back into the service.
package service
