// Package websocket pushes puzzle state to rendering clients in real time.
//
// Browsers connect once per session and receive a message for every state
// mutation: tile slides, countdown ticks, solved and time-up transitions.
// Clients never send game commands over the socket; moves go through the
// REST API and the socket is a one-way update stream.
//
// A single Hub goroutine owns the client registry, so registration,
// unregistration, and broadcasting never race. Slow clients whose send
// buffer fills are dropped rather than allowed to stall the hub.
package websocket
