// Command validate checks every game preset (*.json, *.yaml, *.yml) in a
// configuration directory. It checks:
//   - the file decodes as JSON or YAML according to its extension
//   - the rules pass engine validation (board sizes, power-up counts, messages)
//   - power-up presets carry the bomb, skip and obstacle messages
//   - a fresh game can be started and seeds the configured power-ups
//
// It exits with a non-zero status if any preset is invalid.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/power-four/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors lists the problems of an invalid file; Info describes a valid one.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(filePath, data)
	if err != nil {
		result.fail("Invalid %s: %v", strings.ToUpper(strings.TrimPrefix(filepath.Ext(filePath), ".")), err)
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	// Power-up messages are shown as events, so empty ones would be silent
	if config.PowerUpsEnabled {
		messages := map[string]string{
			"bomb":      config.Messages.Bomb,
			"skip":      config.Messages.Skip,
			"obstacles": config.Messages.Obstacles,
		}
		for _, key := range []string{"bomb", "skip", "obstacles"} {
			if messages[key] == "" {
				result.fail("Missing message for power-up preset: %s", key)
			}
		}
		if config.PowerUpCount == 0 && !config.PowerUpChurn {
			result.fail("power_ups_enabled but power_up_count is 0 and power_up_churn is off")
		}
	}
	if !result.Valid {
		return result
	}

	seeded, err := seededPowerUps(config)
	if err != nil {
		result.fail("Cannot start a game: %v", err)
		return result
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Board: %dx%d", config.Rows, config.Cols),
	)
	if config.AllowExpansion {
		result.Info = append(result.Info, fmt.Sprintf("✓ Expands to: %dx%d", config.ExpandedRows, config.ExpandedCols))
	} else {
		result.Info = append(result.Info, "✓ Expansion: off (full board is a draw)")
	}
	if config.PowerUpsEnabled {
		result.Info = append(result.Info, fmt.Sprintf("✓ Power-ups: %d seeded", seeded))
		if config.PowerUpChurn {
			result.Info = append(result.Info, "✓ Power-up churn: on")
		}
	} else {
		result.Info = append(result.Info, "✓ Power-ups: off")
	}

	return result
}

// seededPowerUps starts a game from config and counts the power-ups on its board
func seededPowerUps(config *engine.GameConfig) (int, error) {
	gameEngine, err := engine.NewEngine(config)
	if err != nil {
		return 0, err
	}
	state := gameEngine.GetState()
	if state.Rows != config.Rows || state.Cols != config.Cols {
		return 0, fmt.Errorf("board is %dx%d, expected %dx%d", state.Rows, state.Cols, config.Rows, config.Cols)
	}
	return engine.CountCellType(state.Board, engine.PowerUp), nil
}

// presetFiles lists the preset files of dir in name order
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// validateDir validates every preset in dir, printing a report to out.
// It returns false if any preset is invalid or none were found.
func validateDir(out io.Writer, dir string) (bool, error) {
	files, err := presetFiles(dir)
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "❌ No presets found in %s\n", dir)
		return false, nil
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check the game presets in a directory",
		ArgsUsage: "[config-dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := "../configs"
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}

			ok, err := validateDir(cmd.Root().Writer, dir)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("validation failed")
			}
			return nil
		},
	}
}

// main validates ../configs unless another directory is given
func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
