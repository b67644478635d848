// Package engine provides the rules engine for Power Four, a Connect-Four
// variant with power-ups and a one-time board expansion.
//
// The engine package implements the game mechanics including:
//   - Gravity placement with obstacle rules
//   - Four-in-a-row detection with a fixed tie-break order
//   - Bomb, skip and obstacle-spawner power-ups
//   - Growing a full board from 6x7 to 10x10 once
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents one game; row 0 of its
// board is the bottom row. GameConfig defines the rules and messages and is
// loaded from JSON or YAML preset files.
//
// Usage:
//
//	gameEngine := engine.New(true)
//
//	if _, err := gameEngine.DropPiece(3); err != nil {
//		// errors.Is(err, engine.ErrColumnFull) etc.
//	}
//	if winner, ok := gameEngine.CheckWinner(); ok {
//		fmt.Println(winner, "wins")
//	}
//	gameEngine.SwitchPlayer()
//
// PlayTurn runs the whole drop, check, expand and switch sequence in one call.
package engine
