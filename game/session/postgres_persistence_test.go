package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/power-four/game/config"
)

// Runs only when POWERFOUR_TEST_DATABASE_URL points at a scratch database.
func TestPostgresPersistence(t *testing.T) {
	dbURL := os.Getenv("POWERFOUR_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("POWERFOUR_TEST_DATABASE_URL not set")
	}

	configs, err := config.NewManager(filepath.Join("..", "..", "configs"))
	require.NoError(t, err)

	persistence, err := NewPostgresPersistence(context.Background(), dbURL, configs)
	require.NoError(t, err)
	t.Cleanup(persistence.Close)

	session := newPresetSession(t, configs, "PgTest", "powerups")
	_, err = session.Engine.PlayTurn(2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = persistence.Delete("pgtest") })

	require.NoError(t, persistence.Save(session))
	assert.True(t, persistence.Exists("pgtest"))

	// upsert
	_, err = session.Engine.PlayTurn(2)
	require.NoError(t, err)
	require.NoError(t, persistence.Save(session))

	loaded, err := persistence.Load("PGTEST")
	require.NoError(t, err)
	assert.Equal(t, "powerups", loaded.ConfigID)
	assert.Equal(t, session.Engine.GetState().Board, loaded.Engine.GetState().Board)
	assert.Len(t, loaded.Engine.GetMoveHistory(), 2)

	ids, err := persistence.ListAll()
	require.NoError(t, err)
	assert.Contains(t, ids, "pgtest")

	require.NoError(t, persistence.Delete("pgtest"))
	assert.False(t, persistence.Exists("pgtest"))
	assert.ErrorIs(t, persistence.Delete("pgtest"), ErrSessionNotFound)

	_, err = persistence.Load("pgtest")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
