// Command analyze plays many random games on each preset and prints how
// they end: win rates per side, draws, how often the board expands, which
// power-ups fire, and how long games last. Games are seeded, so two runs with
// the same flags print the same numbers.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"runtime"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/power-four/game/config"
	"github.com/wricardo/power-four/game/engine"
)

// maxTurns stops a game that keeps clearing itself with bombs
const maxTurns = 10 * engine.ExpandedRows * engine.ExpandedCols

// Stats summarizes the random games played on one preset
type Stats struct {
	Preset     string
	Games      int
	XWins      int
	OWins      int
	Draws      int
	Unfinished int
	Expansions int
	Skips      int
	PowerUps   map[engine.PowerUpKind]int
	TotalTurns int
	Longest    int
}

// AverageTurns is the mean number of turns per game
func (s Stats) AverageTurns() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.TotalTurns) / float64(s.Games)
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return 100 * float64(n) / float64(of)
}

// gameOutcome is what one random game did
type gameOutcome struct {
	status   engine.Status
	winner   engine.Player
	turns    int
	expanded bool
	skips    int
	powerUps map[engine.PowerUpKind]int
}

// playRandomGame drops pieces into random playable columns until the game ends
func playRandomGame(cfg *engine.GameConfig, rng *rand.Rand) (gameOutcome, error) {
	gameEngine, err := engine.NewEngine(cfg)
	if err != nil {
		return gameOutcome{}, err
	}

	outcome := gameOutcome{powerUps: make(map[engine.PowerUpKind]int)}
	for !gameEngine.IsGameOver() && outcome.turns < maxTurns {
		state := gameEngine.GetState()
		playable := make([]int, 0, state.Cols)
		for col := 0; col < state.Cols; col++ {
			if _, err := state.LandingRow(col); err == nil {
				playable = append(playable, col)
			}
		}
		if len(playable) == 0 {
			break
		}

		turn, err := gameEngine.PlayTurn(playable[rng.IntN(len(playable))])
		if err != nil {
			return outcome, fmt.Errorf("turn %d: %w", outcome.turns+1, err)
		}
		outcome.turns++
		if turn.Drop.PowerUp != "" {
			outcome.powerUps[turn.Drop.PowerUp]++
		}
		if turn.Skipped {
			outcome.skips++
		}
		if turn.Expanded {
			outcome.expanded = true
		}
	}

	state := gameEngine.GetState()
	outcome.status = state.Status
	outcome.winner = state.Winner
	return outcome, nil
}

// simulate plays games random games on cfg. Game i uses seed+i for both the
// engine and the column choices.
func simulate(preset string, cfg *engine.GameConfig, games int, seed uint64) (Stats, error) {
	stats := Stats{Preset: preset, PowerUps: make(map[engine.PowerUpKind]int)}

	for i := 0; i < games; i++ {
		gameSeed := seed + uint64(i)
		gameConfig := *cfg
		gameConfig.Seed = gameSeed

		outcome, err := playRandomGame(&gameConfig, rand.New(rand.NewPCG(gameSeed, ^gameSeed)))
		if err != nil {
			return stats, fmt.Errorf("%s game %d: %w", preset, i+1, err)
		}

		stats.Games++
		stats.TotalTurns += outcome.turns
		if outcome.turns > stats.Longest {
			stats.Longest = outcome.turns
		}
		switch outcome.status {
		case engine.Won:
			if outcome.winner == engine.X {
				stats.XWins++
			} else {
				stats.OWins++
			}
		case engine.Draw:
			stats.Draws++
		default:
			stats.Unfinished++
		}
		if outcome.expanded {
			stats.Expansions++
		}
		stats.Skips += outcome.skips
		for kind, n := range outcome.powerUps {
			stats.PowerUps[kind] += n
		}
	}

	return stats, nil
}

// analyze simulates the named presets in parallel, or every preset when
// none are named. Results keep the order of presets.
func analyze(ctx context.Context, configs *config.Manager, presets []string, games int, seed uint64) ([]Stats, error) {
	if len(presets) == 0 {
		infos, err := configs.ListConfigs()
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			presets = append(presets, info.ConfigID)
		}
	}

	results := make([]Stats, len(presets))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, preset := range presets {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			cfg, err := configs.LoadConfig(preset)
			if err != nil {
				return err
			}
			stats, err := simulate(preset, cfg, games, seed)
			if err != nil {
				return err
			}
			results[i] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printStats(w io.Writer, results []Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRESET\tGAMES\tX WINS\tO WINS\tDRAWS\tUNFINISHED\tEXPANDED\tAVG TURNS\tLONGEST\tBOMB\tSKIP\tOBSTACLE\tSKIPPED TURNS")
	for _, s := range results {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t%.1f%%\t%.1f%%\t%d\t%.1f%%\t%.1f\t%d\t%d\t%d\t%d\t%d\n",
			s.Preset, s.Games,
			percent(s.XWins, s.Games), percent(s.OWins, s.Games), percent(s.Draws, s.Games),
			s.Unfinished, percent(s.Expansions, s.Games),
			s.AverageTurns(), s.Longest,
			s.PowerUps[engine.Bomb], s.PowerUps[engine.Skip], s.PowerUps[engine.ObstacleSpawner],
			s.Skips)
	}
	return tw.Flush()
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "simulate random games on each preset and print statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing game presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringSliceFlag{
				Name:  "preset",
				Usage: "preset to simulate (repeatable, default: all)",
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 1000,
				Usage: "games per preset",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "seed of the first game",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Int("games") < 1 {
				return fmt.Errorf("--games must be at least 1")
			}
			if cmd.Uint64("seed") == 0 {
				return fmt.Errorf("--seed must be at least 1")
			}

			configs, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}

			results, err := analyze(ctx, configs, cmd.StringSlice("preset"), cmd.Int("games"), cmd.Uint64("seed"))
			if err != nil {
				return err
			}
			return printStats(cmd.Root().Writer, results)
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
