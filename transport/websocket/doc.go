// Package websocket pushes live Power Four updates to browsers and bots.
//
// A Hub groups connections by session ID. Clients connect to /ws?session=<id>
// and from then on receive a JSON Message after every drop or reset in that
// session:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}, "board": "..."}
//
// The connection is receive-only; anything a client sends is read and
// discarded so pings and close frames keep flowing. A client whose send
// buffer is full is dropped rather than slowing the others down.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
