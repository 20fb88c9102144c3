package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m3m/internal/storage/config"
)

func TestStore_Load_SeedsDefaults(t *testing.T) {
	store := config.NewStore(t.TempDir())

	settings, err := store.Load()
	require.NoError(t, err)

	require.Len(t, settings.Games, 5)
	assert.Equal(t, []string{"eldenring", "nightreign", "sekiro", "darksouls3", "armoredcore6"}, settings.GameOrder)

	er := settings.Games["eldenring"]
	assert.Equal(t, "Elden Ring", er.Name)
	assert.Equal(t, "eldenring-mods", er.ModsDir)
	assert.Equal(t, "elden-ring", er.CliID)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := config.NewStore(dir)

	settings, err := store.Load()
	require.NoError(t, err)
	settings.ActiveProfiles["eldenring"] = "coop"
	settings.TrackedExternal["eldenring"] = []string{"/ext/Weapons"}
	require.NoError(t, store.Save(settings))

	again, err := config.NewStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "coop", again.ActiveProfiles["eldenring"])
	assert.Equal(t, []string{"/ext/Weapons"}, again.TrackedExternal["eldenring"])
	assert.Equal(t, settings.GameOrder, again.GameOrder)
}

func TestStore_Load_PrunesGameOrder(t *testing.T) {
	dir := t.TempDir()
	store := config.NewStore(dir)

	settings, err := store.Load()
	require.NoError(t, err)
	settings.GameOrder = []string{"sekiro", "ghost-game", "sekiro", "eldenring"}
	require.NoError(t, store.Save(settings))

	again, err := store.Load()
	require.NoError(t, err)
	// Duplicates and removed games drop out; missing games are appended.
	assert.Equal(t, []string{"sekiro", "eldenring", "armoredcore6", "darksouls3", "nightreign"}, again.GameOrder)
}

func TestStore_Load_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manager_settings.yaml"), []byte("{not yaml"), 0o644))

	_, err := config.NewStore(dir).Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "parsing settings")
}

func TestGameConfig_DomainRoundTrip(t *testing.T) {
	store := config.NewStore(t.TempDir())
	settings, err := store.Load()
	require.NoError(t, err)

	game := settings.Games["eldenring"].Game("eldenring")
	assert.Equal(t, "eldenring", game.ID)
	assert.Equal(t, "eldenring-mods", game.ModsDirName)

	game.ExePath = "/games/er/eldenring.exe"
	back := config.FromGame(game)
	assert.Equal(t, "/games/er/eldenring.exe", back.ExePath)
	assert.Equal(t, settings.Games["eldenring"].ModsDir, back.ModsDir)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	require.NoError(t, config.WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, config.WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.txt", entries[0].Name())
}
