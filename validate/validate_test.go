package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
	"name": "Test Config",
	"description": "Test configuration",
	"rows": 6,
	"cols": 7,
	"expanded_rows": 10,
	"expanded_cols": 10,
	"allow_expansion": true,
	"power_ups_enabled": true,
	"power_up_count": 4,
	"expansion_power_up_divisor": 10,
	"seed": 3,
	"messages": {
		"welcome": "Welcome!",
		"turn": "Player %s to move",
		"victory": "Player %s wins!",
		"draw": "Draw!",
		"expanded": "Bigger board!",
		"bomb": "Boom!",
		"skip": "Skip!",
		"obstacles": "Rocks!"
	}
}`

const validYAML = `name: Small
description: Small board without expansion
rows: 4
cols: 4
expanded_rows: 4
expanded_cols: 4
allow_expansion: false
power_ups_enabled: false
messages:
  welcome: Hi
  victory: Player %s wins!
  draw: Draw!
`

func writePreset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateConfig_ValidJSON(t *testing.T) {
	path := writePreset(t, t.TempDir(), "test.json", validJSON)

	result := validateConfig(path)
	require.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Equal(t, "test.json", result.File)
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Info, "✓ Name: Test Config")
	assert.Contains(t, result.Info, "✓ Board: 6x7")
	assert.Contains(t, result.Info, "✓ Expands to: 10x10")
	assert.Contains(t, result.Info, "✓ Power-ups: 4 seeded")
}

func TestValidateConfig_ValidYAML(t *testing.T) {
	path := writePreset(t, t.TempDir(), "small.yml", validYAML)

	result := validateConfig(path)
	require.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Contains(t, result.Info, "✓ Expansion: off (full board is a draw)")
	assert.Contains(t, result.Info, "✓ Power-ups: off")
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{
			name:     "broken json",
			file:     "broken.json",
			content:  `{"name": "test", invalid json}`,
			contains: "Invalid JSON",
		},
		{
			name:     "broken yaml",
			file:     "broken.yaml",
			content:  "name: [unterminated",
			contains: "Invalid YAML",
		},
		{
			name:     "too few rows",
			file:     "rows.json",
			content:  strings.Replace(validJSON, `"rows": 6`, `"rows": 2`, 1),
			contains: "rows must be at least 4",
		},
		{
			name:     "missing power-up message",
			file:     "bomb.json",
			content:  strings.Replace(validJSON, `"bomb": "Boom!"`, `"bomb": ""`, 1),
			contains: "Missing message for power-up preset: bomb",
		},
		{
			name:     "power-ups with nothing to seed",
			file:     "empty.json",
			content:  strings.Replace(validJSON, `"power_up_count": 4`, `"power_up_count": 0`, 1),
			contains: "power_up_count is 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePreset(t, t.TempDir(), tt.file, tt.content)

			result := validateConfig(path)
			assert.False(t, result.Valid)
			assert.Empty(t, result.Info)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, strings.Join(result.Errors, "\n"), tt.contains)
		})
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json")
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "Failed to read file")
}

func TestPresetFiles(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "b.yml", validYAML)
	writePreset(t, dir, "a.json", validJSON)
	writePreset(t, dir, "c.yaml", validYAML)
	writePreset(t, dir, "notes.txt", "not a preset")

	files, err := presetFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"a.json", "b.yml", "c.yaml"}, names)
}

func TestValidateDir(t *testing.T) {
	t.Run("shipped presets", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := validateDir(&out, "../configs")
		require.NoError(t, err)
		assert.True(t, ok, out.String())
		assert.Contains(t, out.String(), "classic.json")
		assert.Contains(t, out.String(), "chaos.yaml")
		assert.Contains(t, out.String(), "✅ All configurations are valid!")
	})

	t.Run("one bad preset", func(t *testing.T) {
		dir := t.TempDir()
		writePreset(t, dir, "good.json", validJSON)
		writePreset(t, dir, "bad.json", `{}`)

		var out bytes.Buffer
		ok, err := validateDir(&out, dir)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, out.String(), "❌ INVALID")
		assert.Contains(t, out.String(), "❌ Some configurations have errors")
	})

	t.Run("empty dir", func(t *testing.T) {
		var out bytes.Buffer
		ok, err := validateDir(&out, t.TempDir())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, out.String(), "No presets found")
	})
}

func TestApp(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run(context.Background(), []string{"validate", "../configs"}))

	dir := t.TempDir()
	writePreset(t, dir, "bad.json", `{}`)
	app = newApp()
	app.Writer = &out
	assert.Error(t, app.Run(context.Background(), []string{"validate", dir}))
}
