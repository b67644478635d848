// Package config provides preset management for Power Four.
//
// The config package handles:
//   - Loading game presets from JSON and YAML files
//   - Configuration validation
//   - Default preset selection
//   - Preset discovery and listing
//
// Configuration Format:
//
// Presets live in a config directory as .json, .yaml or .yml files. The
// file name without extension is the config ID used to create sessions.
// Each preset defines:
//   - Base and expanded board dimensions
//   - Whether the board may expand once
//   - Power-up seeding and per-turn churn
//   - Messages shown to the players
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("powerups")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default preset is "classic" when present, otherwise the first valid
// preset in the directory, otherwise engine.DefaultConfig.
package config
