package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/power-four/game/config"
	"github.com/wricardo/power-four/game/engine"
	"github.com/wricardo/power-four/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, *config.Manager, string) {
	t.Helper()

	dir := t.TempDir()
	configManager, err := config.NewManager(filepath.Join("..", "..", "configs"))
	require.NoError(t, err)

	persistence, err := NewFilePersistence(dir, configManager)
	require.NoError(t, err)
	return persistence, configManager, dir
}

func newPresetSession(t *testing.T, configs *config.Manager, id, configID string) *service.Session {
	t.Helper()

	gameConfig, err := configs.LoadConfig(configID)
	require.NoError(t, err)
	gameEngine, err := engine.NewEngine(gameConfig)
	require.NoError(t, err)

	now := time.Now()
	return &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

func TestFilePersistence_SaveAndLoad(t *testing.T) {
	persistence, configs, dir := newTestPersistence(t)
	session := newPresetSession(t, configs, "Test1", "powerups")

	_, err := session.Engine.PlayTurn(3)
	require.NoError(t, err)
	_, err = session.Engine.PlayTurn(4)
	require.NoError(t, err)

	require.NoError(t, persistence.Save(session))
	assert.FileExists(t, filepath.Join(dir, "test1.json"))
	assert.NoFileExists(t, filepath.Join(dir, "test1.json.tmp"))
	assert.True(t, persistence.Exists("TEST1"))

	loaded, err := persistence.Load("test1")
	require.NoError(t, err)

	assert.Equal(t, "Test1", loaded.ID)
	assert.Equal(t, "powerups", loaded.ConfigID)
	assert.Equal(t, session.Config.Name, loaded.Config.Name)
	assert.WithinDuration(t, session.CreatedAt, loaded.CreatedAt, time.Second)

	want := session.Engine.GetState()
	got := loaded.Engine.GetState()
	assert.Equal(t, want.Board, got.Board)
	assert.Equal(t, want.CurrentPlayer, got.CurrentPlayer)
	assert.Equal(t, want.TotalMoves, got.TotalMoves)
	assert.Len(t, got.MoveHistory, 2)
}

func TestFilePersistence_DefaultConfigSession(t *testing.T) {
	persistence, configs, _ := newTestPersistence(t)

	gameEngine, err := engine.NewEngine(configs.GetDefault())
	require.NoError(t, err)
	session := &service.Session{
		ID:     "dflt",
		Engine: gameEngine,
		Config: configs.GetDefault(),
	}
	require.NoError(t, persistence.Save(session))

	loaded, err := persistence.Load("dflt")
	require.NoError(t, err)
	assert.Empty(t, loaded.ConfigID)
	assert.Equal(t, configs.GetDefault().Name, loaded.Config.Name)
}

func TestFilePersistence_ContinuesGame(t *testing.T) {
	persistence, configs, _ := newTestPersistence(t)
	session := newPresetSession(t, configs, "cont", "classic")

	for _, col := range []int{0, 1, 0, 1, 0, 1} {
		_, err := session.Engine.PlayTurn(col)
		require.NoError(t, err)
	}
	require.NoError(t, persistence.Save(session))

	loaded, err := persistence.Load("cont")
	require.NoError(t, err)

	turn, err := loaded.Engine.PlayTurn(0)
	require.NoError(t, err)
	assert.Equal(t, engine.X, turn.Winner)
	assert.Equal(t, engine.Won, loaded.Engine.Status())
}

func TestFilePersistence_LoadErrors(t *testing.T) {
	persistence, _, dir := newTestPersistence(t)

	t.Run("missing", func(t *testing.T) {
		_, err := persistence.Load("nope")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("corrupt", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644))
		_, err := persistence.Load("bad")
		assert.Error(t, err)
	})

	t.Run("no game state", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{"id":"empty"}`), 0644))
		_, err := persistence.Load("empty")
		assert.Error(t, err)
	})

	t.Run("unknown config", func(t *testing.T) {
		data := `{"id":"gone","config_name":"deleted-preset","game_state":{"board":[]}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "gone.json"), []byte(data), 0644))
		_, err := persistence.Load("gone")
		assert.ErrorIs(t, err, config.ErrConfigNotFound)
	})
}

func TestFilePersistence_DeleteAndList(t *testing.T) {
	persistence, configs, dir := newTestPersistence(t)

	for _, id := range []string{"aa01", "aa02", "aa03"} {
		require.NoError(t, persistence.Save(newPresetSession(t, configs, id, "classic")))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	ids, err := persistence.ListAll()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aa01", "aa02", "aa03"}, ids)

	require.NoError(t, persistence.Delete("AA02"))
	assert.False(t, persistence.Exists("aa02"))
	assert.ErrorIs(t, persistence.Delete("aa02"), ErrSessionNotFound)

	ids, err = persistence.ListAll()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"aa01", "aa03"}, ids)
}

func TestFilePersistence_PathIsConfinedToDirectory(t *testing.T) {
	persistence, configs, dir := newTestPersistence(t)

	session := newPresetSession(t, configs, "../../escape", "classic")
	require.NoError(t, persistence.Save(session))
	assert.FileExists(t, filepath.Join(dir, "escape.json"))
}

func TestFilePersistence_SaveNil(t *testing.T) {
	persistence, _, _ := newTestPersistence(t)
	assert.Error(t, persistence.Save(nil))
}
