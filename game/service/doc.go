// Package service is the business layer between the transports (HTTP,
// websocket, MCP) and the Power Four engine.
//
// GameService is the facade every transport talks to. It owns no state of
// its own: sessions come from a SessionManager and presets from a
// ConfigManager, both implemented in sibling packages and injected at
// construction.
//
// Drop plays one full turn through engine.PlayTurn and reports it as a
// MoveResult with ordered events (power_up, bomb, skip, obstacle, drop,
// expand, win, draw, turn). BulkDrop plays a list of columns and stops at
// the first rejected drop or when the game ends, returning a per-step
// trace and a stop reason code. Every mutating call saves the session.
//
// Usage:
//
//	configs, _ := config.NewManager("configs")
//	svc := service.NewGameService(session.NewManager(), configs)
//
//	info, err := svc.CreateSession(ctx, "powerups")
//	if err != nil {
//		return err
//	}
//	result, err := svc.Drop(ctx, info.ID, 3, false)
package service
