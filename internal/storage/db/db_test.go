package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m3m/internal/source"
	"m3m/internal/storage/db"
)

func setupDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestDB_Open_RunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, database.Close())

	// Reopening an already-migrated database is fine.
	database, err = db.Open(path)
	require.NoError(t, err)
	require.NoError(t, database.Close())
}

func TestDB_ModLinks_CRUD(t *testing.T) {
	database := setupDB(t)

	link := db.ModLink{
		GameID:   "eldenring",
		ModID:    "Overhaul",
		SourceID: "nexus",
		RemoteID: "4825",
	}
	require.NoError(t, database.SaveModLink(link))

	got, err := database.GetModLink("eldenring", "Overhaul")
	require.NoError(t, err)
	assert.Equal(t, "nexus", got.SourceID)
	assert.Equal(t, "4825", got.RemoteID)
	assert.False(t, got.LinkedAt.IsZero())

	// Saving again replaces the remote ID.
	link.RemoteID = "9999"
	require.NoError(t, database.SaveModLink(link))
	got, err = database.GetModLink("eldenring", "Overhaul")
	require.NoError(t, err)
	assert.Equal(t, "9999", got.RemoteID)

	links, err := database.GetModLinks("eldenring")
	require.NoError(t, err)
	require.Len(t, links, 1)

	require.NoError(t, database.DeleteModLink("eldenring", "Overhaul"))
	_, err = database.GetModLink("eldenring", "Overhaul")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, database.DeleteModLink("eldenring", "Overhaul"), db.ErrNotFound)
}

func TestDB_GetModLinks_ScopedToGame(t *testing.T) {
	database := setupDB(t)

	require.NoError(t, database.SaveModLink(db.ModLink{GameID: "eldenring", ModID: "A", SourceID: "nexus", RemoteID: "1"}))
	require.NoError(t, database.SaveModLink(db.ModLink{GameID: "sekiro", ModID: "B", SourceID: "nexus", RemoteID: "2"}))

	links, err := database.GetModLinks("eldenring")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "A", links[0].ModID)
}

func TestDB_Metadata_Cache(t *testing.T) {
	database := setupDB(t)

	meta := source.Metadata{
		Source:   "nexus",
		RemoteID: "4825",
		GameSlug: "eldenring",
		Name:     "Seamless Co-op",
		Author:   "somebody",
		Version:  "1.7.8",
		PageURL:  "https://www.nexusmods.com/eldenring/mods/4825",
	}
	require.NoError(t, database.SaveMetadata(meta))

	got, fetchedAt, err := database.GetMetadata("nexus", "4825")
	require.NoError(t, err)
	assert.Equal(t, meta, got)
	assert.False(t, fetchedAt.IsZero())

	meta.Version = "1.8.0"
	require.NoError(t, database.SaveMetadata(meta))
	got, _, err = database.GetMetadata("nexus", "4825")
	require.NoError(t, err)
	assert.Equal(t, "1.8.0", got.Version)

	_, _, err = database.GetMetadata("nexus", "0")
	assert.ErrorIs(t, err, db.ErrNotFound)
}
