// Package mcp exposes the puzzle server to AI agents over the Model Context
// Protocol.
//
// The client is deliberately thin: every tool call is proxied to the REST
// API, so MCP agents and browser players share one source of truth and can
// play the same session side by side. Board states are rendered as text
// grids with the empty slot shown as a dot, which language models read more
// reliably than raw JSON arrays.
//
// Tools:
//   - create_session, get_session, list_sessions
//   - start_game, click_tile, restart_game, solve_puzzle, new_game
//   - board_state, move_history
//   - list_presets, game_instructions
package mcp
