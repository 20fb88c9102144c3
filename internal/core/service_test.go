package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"m3m/internal/core"
	"m3m/internal/domain"
	"m3m/internal/storage/config"
)

func setupEngine(t *testing.T) (*core.Engine, domain.Game, string) {
	t.Helper()
	root := t.TempDir()
	engine, err := core.NewEngine(zaptest.NewLogger(t), config.NewStore(root))
	require.NoError(t, err)

	game, err := engine.Game("eldenring")
	require.NoError(t, err)

	modsDir := engine.Paths().ModsDir(game)
	require.NoError(t, os.MkdirAll(modsDir, 0o755))
	require.NoError(t, engine.Profiles().Create(game, "default"))
	return engine, game, modsDir
}

func TestEngine_Game_Aliases(t *testing.T) {
	engine, _, _ := setupEngine(t)

	for _, slug := range []string{"eldenring", "elden-ring", "Elden Ring"} {
		game, err := engine.Game(slug)
		require.NoError(t, err, slug)
		assert.Equal(t, "eldenring", game.ID)
	}

	_, err := engine.Game("half-life-3")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestEngine_Games_SeedsDefaults(t *testing.T) {
	engine, _, _ := setupEngine(t)

	games, err := engine.Games()
	require.NoError(t, err)
	require.Len(t, games, 5)
	assert.Equal(t, "eldenring", games[0].ID)
}

func TestEngine_EnableDisableMod(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	writeFile(t, filepath.Join(modsDir, "hook.dll"), "bin")
	writeFile(t, filepath.Join(modsDir, "Overhaul", "file"), "data")

	require.NoError(t, engine.EnableMod(game, "default", "hook.dll"))
	require.NoError(t, engine.EnableMod(game, "default", "Overhaul"))

	prof, _, err := engine.LoadProfile(game, "default")
	require.NoError(t, err)
	assert.True(t, prof.IsEnabled("hook.dll"))
	assert.True(t, prof.IsEnabled("Overhaul"))

	require.NoError(t, engine.DisableMod(game, "default", "Overhaul"))
	prof, _, err = engine.LoadProfile(game, "default")
	require.NoError(t, err)
	assert.False(t, prof.IsEnabled("Overhaul"))
}

func TestEngine_EnableMod_Unknown(t *testing.T) {
	engine, game, _ := setupEngine(t)

	err := engine.EnableMod(game, "default", "Ghost")
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestEngine_EnableRegulationMod_SwitchesOverride(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	writeFile(t, filepath.Join(modsDir, "Reg1", "regulation.bin"), "one")
	writeFile(t, filepath.Join(modsDir, "Reg2", "regulation.bin.disabled"), "two")

	require.NoError(t, engine.EnableMod(game, "default", "Reg2"))

	active, ok, err := engine.ActiveRegulation(game)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Reg2", active.ID)
	assert.NoFileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin"))
}

func TestEngine_DisableRegulationMod_Quiesces(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	writeFile(t, filepath.Join(modsDir, "Reg1", "regulation.bin"), "one")

	require.NoError(t, engine.EnableMod(game, "default", "Reg1"))
	require.NoError(t, engine.DisableMod(game, "default", "Reg1"))

	_, ok, err := engine.ActiveRegulation(game)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.FileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin.disabled"))
}

func TestEngine_EnableRegulationMod_FailedSwitchKeepsProfile(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	payload := filepath.Join(modsDir, "Reg1", "regulation.bin.disabled")
	writeFile(t, payload, "one")

	// Prime the snapshot, then pull the payload out from under it.
	_, err := engine.Mods(game)
	require.NoError(t, err)
	require.NoError(t, os.Remove(payload))

	err = engine.EnableMod(game, "default", "Reg1")
	assert.ErrorIs(t, err, domain.ErrNoRegulation)

	prof, _, err := engine.LoadProfile(game, "default")
	require.NoError(t, err)
	assert.False(t, prof.IsEnabled("Reg1"))
}

func TestEngine_ActivateRegulation_ExternalTakesOver(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	writeFile(t, filepath.Join(modsDir, "Reg1", "regulation.bin"), "one")
	external := filepath.Join(t.TempDir(), "RegPack")
	writeFile(t, filepath.Join(external, "regulation.bin.disabled"), "two")
	require.NoError(t, engine.AddExternal(game, external))

	extID := domain.NormalizePath(external)
	require.NoError(t, engine.ActivateRegulation(game, "Reg1"))
	require.NoError(t, engine.ActivateRegulation(game, extID))

	active, ok, err := engine.ActiveRegulation(game)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, extID, active.ID)
	assert.FileExists(t, filepath.Join(external, "regulation.bin"))
	assert.NoFileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin"))
	assert.FileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin.disabled"))
}

func TestEngine_MissingModKeptInProfile(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	writeFile(t, filepath.Join(modsDir, "Overhaul", "file"), "data")

	require.NoError(t, engine.EnableMod(game, "default", "Overhaul"))
	require.NoError(t, os.RemoveAll(filepath.Join(modsDir, "Overhaul")))
	_, _, err := engine.Refresh(game)
	require.NoError(t, err)

	prof, _, err := engine.LoadProfile(game, "default")
	require.NoError(t, err)
	require.Len(t, prof.Enabled, 1)
	assert.Equal(t, "Overhaul", prof.Enabled[0].ModID)
	assert.True(t, prof.Enabled[0].Missing)
	assert.Equal(t, domain.StatusMissing, engine.ModStatus(prof, "Overhaul"))

	// The folder coming back clears the flag without any profile edit.
	writeFile(t, filepath.Join(modsDir, "Overhaul", "file"), "data")
	_, _, err = engine.Refresh(game)
	require.NoError(t, err)

	prof, _, err = engine.LoadProfile(game, "default")
	require.NoError(t, err)
	assert.False(t, prof.Enabled[0].Missing)
}

func TestEngine_LoadOrder(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	writeFile(t, filepath.Join(modsDir, "hook.dll"), "bin")
	writeFile(t, filepath.Join(modsDir, "Overhaul", "file"), "data")

	require.NoError(t, engine.EnableMod(game, "default", "Overhaul"))
	require.NoError(t, engine.EnableMod(game, "default", "hook.dll"))

	order, err := engine.LoadOrder(game, "default")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hook.dll", "Overhaul"}, order)
}

func TestEngine_Reorder(t *testing.T) {
	engine, game, modsDir := setupEngine(t)
	writeFile(t, filepath.Join(modsDir, "One", "file"), "data")
	writeFile(t, filepath.Join(modsDir, "Two", "file"), "data")

	require.NoError(t, engine.EnableMod(game, "default", "One"))
	require.NoError(t, engine.EnableMod(game, "default", "Two"))
	require.NoError(t, engine.Reorder(game, "default", []string{"Two", "One"}))

	prof, _, err := engine.LoadProfile(game, "default")
	require.NoError(t, err)
	assert.Equal(t, []string{"Two", "One"}, prof.EnabledIDs())

	err = engine.Reorder(game, "default", []string{"Ghost"})
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestEngine_ExternalMods(t *testing.T) {
	engine, game, _ := setupEngine(t)
	external := filepath.Join(t.TempDir(), "Weapons")
	writeFile(t, filepath.Join(external, "file"), "data")

	require.NoError(t, engine.AddExternal(game, external))

	snap, err := engine.Mods(game)
	require.NoError(t, err)
	extID := domain.NormalizePath(external)
	mod, ok := snap.Lookup(extID)
	require.True(t, ok)
	assert.True(t, mod.External)

	// External mods participate in profiles like any other.
	require.NoError(t, engine.EnableMod(game, "default", extID))
	prof, _, err := engine.LoadProfile(game, "default")
	require.NoError(t, err)
	assert.True(t, prof.IsEnabled(extID))

	require.NoError(t, engine.RemoveExternal(game, external))
	snap, err = engine.Mods(game)
	require.NoError(t, err)
	_, ok = snap.Lookup(extID)
	assert.False(t, ok)
}

func TestEngine_RemoveExternal_Unknown(t *testing.T) {
	engine, game, _ := setupEngine(t)

	err := engine.RemoveExternal(game, "/nowhere/Weapons")
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestEngine_UpdateSettings(t *testing.T) {
	engine, game, _ := setupEngine(t)

	set := domain.ProfileSettings{Savefile: "alt.sl2", StartOnline: true}
	require.NoError(t, engine.UpdateSettings(game, "default", set))

	prof, _, err := engine.LoadProfile(game, "default")
	require.NoError(t, err)
	assert.Equal(t, "alt.sl2", prof.Settings.Savefile)
	assert.True(t, prof.Settings.StartOnline)
	assert.False(t, prof.Settings.DisableArxan)
}

func TestEngine_Watch_CoversModsAndExternals(t *testing.T) {
	engine, game, _ := setupEngine(t)
	external := filepath.Join(t.TempDir(), "Weapons")
	writeFile(t, filepath.Join(external, "file"), "data")
	require.NoError(t, engine.AddExternal(game, external))

	require.NoError(t, engine.Watch(game))

	// Watching a game whose mods directory does not exist yet creates it.
	sekiro, err := engine.Game("sekiro")
	require.NoError(t, err)
	require.NoError(t, engine.Watch(sekiro))
	assert.DirExists(t, engine.Paths().ModsDir(sekiro))
}

func TestEngine_SetGameExecutable(t *testing.T) {
	engine, game, _ := setupEngine(t)

	require.NoError(t, engine.SetGameExecutable(game, "/games/er/eldenring.exe"))
	game, err := engine.Game("eldenring")
	require.NoError(t, err)
	assert.Equal(t, "/games/er/eldenring.exe", game.ExePath)
}
