package engine

// PlayTurn runs one complete turn for the current player: drop, winner
// check, expansion or draw on a full board, then the turn switch. The player
// whose drop filled the board moves first on the expanded board; a pending
// skip waits for the next regular switch.
func (e *GameEngine) PlayTurn(col int) (TurnResult, error) {
	drop, err := e.DropPiece(col)
	if err != nil {
		return TurnResult{}, err
	}

	result := TurnResult{Drop: drop}

	if winner, ok := e.CheckWinner(); ok {
		result.Winner = winner
		result.NextPlayer = e.state.CurrentPlayer
		return result, nil
	}

	if e.IsFull() {
		if !e.ExpandBoard() {
			result.Draw = true
			result.NextPlayer = e.state.CurrentPlayer
			return result, nil
		}
		result.Expanded = true
		result.NextPlayer = e.state.CurrentPlayer
		e.churn()
		return result, nil
	}

	result.Skipped = e.state.SkipNextTurn
	e.SwitchPlayer()
	result.NextPlayer = e.state.CurrentPlayer
	e.churn()

	return result, nil
}

func (e *GameEngine) churn() {
	if e.config.PowerUpChurn {
		e.ChurnPowerUps()
	}
}
