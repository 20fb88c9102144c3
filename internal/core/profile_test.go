package core_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m3m/internal/core"
	"m3m/internal/domain"
	"m3m/internal/storage/config"
)

func setupProfileStore(t *testing.T) (*core.ProfileStore, domain.Game) {
	t.Helper()
	store := config.NewStore(t.TempDir())
	ps := core.NewProfileStore(store)
	game := testGame()
	require.NoError(t, ps.Create(game, "default"))
	return ps, game
}

func TestProfileStore_Create(t *testing.T) {
	ps, game := setupProfileStore(t)

	profiles, err := ps.List(game.ID)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "default", profiles[0].Name)
	assert.FileExists(t, profiles[0].File)

	// The first profile becomes active automatically.
	active, err := ps.Active(game.ID)
	require.NoError(t, err)
	assert.Equal(t, "default", active)
}

func TestProfileStore_Create_DuplicateName(t *testing.T) {
	ps, game := setupProfileStore(t)

	err := ps.Create(game, "default")
	assert.ErrorIs(t, err, domain.ErrProfileExists)
}

func TestProfileStore_Delete_LastProfile(t *testing.T) {
	ps, game := setupProfileStore(t)

	err := ps.Delete(game, "default")
	assert.ErrorIs(t, err, domain.ErrLastProfile)
}

func TestProfileStore_Delete_SwitchesActive(t *testing.T) {
	ps, game := setupProfileStore(t)
	require.NoError(t, ps.Create(game, "coop"))
	require.NoError(t, ps.SetActive(game, "coop"))

	require.NoError(t, ps.Delete(game, "coop"))

	active, err := ps.Active(game.ID)
	require.NoError(t, err)
	assert.Equal(t, "default", active)

	_, _, err = ps.Load(game, "coop")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileStore_Rename(t *testing.T) {
	ps, game := setupProfileStore(t)

	require.NoError(t, ps.Rename(game, "default", "main"))

	active, err := ps.Active(game.ID)
	require.NoError(t, err)
	assert.Equal(t, "main", active)

	profiles, err := ps.List(game.ID)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "main", profiles[0].Name)
	assert.FileExists(t, profiles[0].File)
}

func TestProfileStore_Rename_TargetExists(t *testing.T) {
	ps, game := setupProfileStore(t)
	require.NoError(t, ps.Create(game, "coop"))

	err := ps.Rename(game, "default", "coop")
	assert.ErrorIs(t, err, domain.ErrProfileExists)
}

func TestProfileStore_Duplicate(t *testing.T) {
	ps, game := setupProfileStore(t)

	doc, _, err := ps.Load(game, "default")
	require.NoError(t, err)
	doc.Unknown = map[string]any{"note": "keep me"}
	require.NoError(t, ps.Save(game, "default", doc))

	require.NoError(t, ps.Duplicate(game, "default", "copy"))

	copied, _, err := ps.Load(game, "copy")
	require.NoError(t, err)
	assert.Equal(t, "keep me", copied.Unknown["note"])
}

func TestProfileStore_Duplicate_MissingSource(t *testing.T) {
	ps, game := setupProfileStore(t)

	err := ps.Duplicate(game, "ghost", "copy")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileStore_SetActive_Unknown(t *testing.T) {
	ps, game := setupProfileStore(t)

	err := ps.SetActive(game, "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestProfileStore_SaveIsSynchronous(t *testing.T) {
	ps, game := setupProfileStore(t)

	doc, _, err := ps.Load(game, "default")
	require.NoError(t, err)
	doc.Game.Savefile = "alt.sl2"
	require.NoError(t, ps.Save(game, "default", doc))

	// A fresh store over the same directory sees the change immediately.
	profiles, err := ps.List(game.ID)
	require.NoError(t, err)
	data, err := os.ReadFile(profiles[0].File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `savefile = "alt.sl2"`)
}
