package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/power-four/game/config"
	"github.com/wricardo/power-four/game/engine"
	"github.com/wricardo/power-four/game/service"
	"github.com/wricardo/power-four/game/session"
)

// runPlay plays a game at the terminal. Players type the key printed under
// a column; "r" starts a new round and "q" (or end of input) quits.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, configDir, preset string) error {
	configs, err := config.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("failed to create config manager: %w", err)
	}

	game := service.NewGameService(session.NewManager(), configs)
	info, err := game.CreateSession(ctx, preset)
	if err != nil {
		return err
	}

	state := info.GameState
	fmt.Fprintf(out, "%s - %s\n%s\n\n", AppName, info.ConfigName, state.Message)
	fmt.Fprint(out, engine.RenderBoard(state))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt(state))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(input) {
		case "":
			continue
		case "q", "quit":
			fmt.Fprintln(out, "Bye!")
			return nil
		case "r", "reset":
			state, err = game.Reset(ctx, info.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "New round.\n%s", engine.RenderBoard(state))
			continue
		}

		col, ok := parseColumn(input, state)
		if !ok {
			fmt.Fprintf(out, "Invalid input. Enter a key between %s.\n", keyRange(state.Cols))
			continue
		}

		result, err := game.Drop(ctx, info.ID, col, false)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		state = result.GameState

		for _, event := range result.Events {
			if event.Type == "turn" || event.Type == "drop" {
				continue
			}
			fmt.Fprintln(out, event.Message)
		}
		fmt.Fprint(out, result.Board)
	}
}

func prompt(state *engine.GameState) string {
	switch state.Status {
	case engine.Won, engine.Draw:
		return "Game over. r to play again, q to quit: "
	}
	return fmt.Sprintf("Player %s's turn. Enter column (%s): ", state.CurrentPlayer, keyRange(state.Cols))
}

func parseColumn(input string, state *engine.GameState) (int, bool) {
	runes := []rune(input)
	if len(runes) != 1 {
		return 0, false
	}
	col, ok := engine.ColumnForKey(runes[0])
	if !ok || col >= state.Cols {
		return 0, false
	}
	return col, true
}

// keyRange describes the valid keys, e.g. "1-7" or "1-9, 0"
func keyRange(cols int) string {
	if cols <= 9 {
		return fmt.Sprintf("1-%d", cols)
	}
	return "1-9, 0"
}
