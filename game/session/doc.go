// Package session provides in-memory storage for puzzle sessions.
//
// The session package implements:
//   - Thread-safe session creation, lookup, listing, and deletion
//   - Short human-friendly session IDs (4 hex characters) so players can
//     type them into another client, with case-insensitive lookup
//   - Last-access tracking and expiry of idle sessions
//
// Sessions live only in memory: restarting the server forgets them, which is
// the intended lifecycle for a casual browser game.
package session
