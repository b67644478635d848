// Package mcp exposes Power Four to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API (see package api) and the JSON reply is rendered as
// plain text that a language model can read, board included.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, player to move, playable column keys
//   - drop_piece: one drop by column key
//   - bulk_drop: several drops in order, with a per-step trace
//   - reset_game, move_history, list_configs, game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: the /mcp endpoint of the game server forwards JSON-RPC messages
//     to client.GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
