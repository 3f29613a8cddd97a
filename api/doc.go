// Package api provides the REST interface for the sliding-tile puzzle server.
//
// Routes:
//
//	POST   /api/sessions                  - create a session (optional preset_id)
//	GET    /api/sessions                  - list sessions
//	GET    /api/sessions/{id}             - session summary
//	DELETE /api/sessions/{id}             - delete a session
//	POST   /api/sessions/{id}/start       - start play with an image and size
//	POST   /api/sessions/{id}/click       - attempt to slide a tile
//	POST   /api/sessions/{id}/restart     - reshuffle the current board
//	POST   /api/sessions/{id}/solve       - force the solved layout
//	POST   /api/sessions/{id}/new-game    - return to image/size selection
//	GET    /api/sessions/{id}/state       - full session state
//	GET    /api/sessions/{id}/geometry    - pixel layout for a viewport width
//	GET    /api/sessions/{id}/history     - paginated click history
//	POST   /api/images                    - upload a puzzle image
//	GET    /api/images/{id}               - fetch an uploaded image
//	GET    /api/presets                   - list presets
//	POST   /api/presets                   - save a custom preset
//	GET    /ws?session={id}               - WebSocket update stream
//
// Clicking a non-movable tile is not an error: the response reports
// moved=false and the unchanged state. Unknown sessions are 404s.
//
// The server also implements service.StateNotifier, forwarding every state
// mutation - countdown ticks included - to the WebSocket hub.
package api
