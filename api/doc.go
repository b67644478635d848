// Package api provides the HTTP REST API for Power Four.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions             - Create a session ({"config_id": "powerups"}, empty for the default preset)
//   - GET    /api/sessions             - List sessions (?sort=accessed|created&order=asc|desc&limit=N&config=name)
//   - GET    /api/sessions/{id}        - Get one session
//   - DELETE /api/sessions/{id}        - Delete a session
//
// Game:
//   - GET  /api/sessions/{id}/state     - Full game state as JSON
//   - GET  /api/sessions/{id}/board     - Text rendering of the board, top row first
//   - POST /api/sessions/{id}/drop      - Play one turn: {"column": 3} or {"key": "4"}, optional "reset"
//   - POST /api/sessions/{id}/bulk-drop - Play several turns: {"columns": [3, 3, 4]} or {"keys": "445"}
//   - POST /api/sessions/{id}/reset     - Start a new round with the same preset
//   - GET  /api/sessions/{id}/history   - Paginated drop history (?page=1&limit=20&order=desc)
//
// Presets:
//   - GET  /api/configs        - List presets
//   - GET  /api/configs/{name} - Get one preset
//   - POST /api/configs        - Save a preset; the ID defaults to a slug of its name
//
// Misc:
//   - GET /api/health
//   - GET /ws?session={id} - Websocket updates for a session
//
// Columns are 0-based in JSON; keys are the characters printed under the
// board ("1".."9", then "0" for the tenth column of an expanded board).
//
// Errors are returned as {"error": "..."} with a status derived from the
// cause: 404 for unknown sessions and presets, 400 for bad columns, keys
// and presets, 409 for full columns and finished games.
//
// Usage:
//
//	server := api.NewServer(gameService, hub)
//	http.ListenAndServe(":8080", server)
package api
