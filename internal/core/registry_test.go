package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m3m/internal/core"
	"m3m/internal/domain"
)

func testGame() domain.Game {
	return domain.Game{
		ID:          "eldenring",
		Name:        "Elden Ring",
		ModsDirName: "eldenring-mods",
		ProfileName: "eldenring-default",
		CliID:       "elden-ring",
	}
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func setupModsDir(t *testing.T) string {
	t.Helper()
	modsDir := filepath.Join(t.TempDir(), "eldenring-mods")
	require.NoError(t, os.MkdirAll(modsDir, 0o755))
	return modsDir
}

func TestRegistry_Scan_Classification(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "hook.dll"), "bin")
	writeFile(t, filepath.Join(modsDir, "Overhaul", "parts", "armor.partsbnd.dcx"), "data")
	writeFile(t, filepath.Join(modsDir, "Rebalance", "regulation.bin"), "params")
	writeFile(t, filepath.Join(modsDir, "OldRebalance", "regulation.bin.disabled"), "params")
	writeFile(t, filepath.Join(modsDir, "readme.txt"), "not a mod")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	snap := reg.Scan()

	require.Empty(t, snap.Warnings)
	require.Len(t, snap.Mods, 4)

	native, ok := snap.Lookup("hook.dll")
	require.True(t, ok)
	assert.Equal(t, domain.KindNative, native.Kind)
	assert.Equal(t, "hook", native.Name)
	assert.False(t, native.External)

	pkg, ok := snap.Lookup("Overhaul")
	require.True(t, ok)
	assert.Equal(t, domain.KindPackage, pkg.Kind)

	active, ok := snap.Lookup("Rebalance")
	require.True(t, ok)
	assert.Equal(t, domain.KindRegulation, active.Kind)
	assert.True(t, active.RegulationActive)

	inactive, ok := snap.Lookup("OldRebalance")
	require.True(t, ok)
	assert.Equal(t, domain.KindRegulation, inactive.Kind)
	assert.False(t, inactive.RegulationActive)

	_, ok = snap.Lookup("readme.txt")
	assert.False(t, ok)
}

func TestRegistry_Scan_Idempotent(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "hook.dll"), "bin")
	writeFile(t, filepath.Join(modsDir, "Overhaul", "file"), "data")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	first := reg.Scan()
	second := reg.Scan()

	assert.Equal(t, first.Mods, second.Mods)
	assert.Equal(t, first.Order, second.Order)
}

func TestRegistry_Scan_MissingModsDir(t *testing.T) {
	reg := core.NewRegistry(testGame(), filepath.Join(t.TempDir(), "nope"), nil)
	snap := reg.Scan()

	assert.Empty(t, snap.Mods)
	assert.Empty(t, snap.Warnings)
}

func TestRegistry_Scan_ExternalLinks(t *testing.T) {
	modsDir := setupModsDir(t)
	external := filepath.Join(t.TempDir(), "SomewhereElse")
	writeFile(t, filepath.Join(external, "file"), "data")

	links := []domain.ExternalPackageLink{{GameID: "eldenring", Path: external}}
	reg := core.NewRegistry(testGame(), modsDir, links)
	snap := reg.Scan()

	mod, ok := snap.Lookup(domain.NormalizePath(external))
	require.True(t, ok)
	assert.True(t, mod.External)
	assert.Equal(t, domain.KindPackage, mod.Kind)
}

func TestRegistry_Scan_BrokenExternalLinkWarns(t *testing.T) {
	modsDir := setupModsDir(t)
	gone := filepath.Join(t.TempDir(), "deleted")

	links := []domain.ExternalPackageLink{{GameID: "eldenring", Path: gone}}
	reg := core.NewRegistry(testGame(), modsDir, links)
	snap := reg.Scan()

	assert.Empty(t, snap.Mods)
	require.Len(t, snap.Warnings, 1)
	assert.Equal(t, gone, snap.Warnings[0].Path)
}

func TestRegistry_Refresh_Diff(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "hook.dll"), "bin")
	writeFile(t, filepath.Join(modsDir, "Overhaul", "file"), "data")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	reg.Scan()

	require.NoError(t, os.RemoveAll(filepath.Join(modsDir, "Overhaul")))
	writeFile(t, filepath.Join(modsDir, "NewMod", "file"), "data")

	_, diff := reg.Refresh()
	assert.Equal(t, []string{"NewMod"}, diff.Added)
	assert.Equal(t, []string{"Overhaul"}, diff.Removed)
	assert.Empty(t, diff.Changed)
}

func TestRegistry_Refresh_RegulationFlip(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "Rebalance", "regulation.bin"), "params")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	reg.Scan()

	require.NoError(t, os.Rename(
		filepath.Join(modsDir, "Rebalance", "regulation.bin"),
		filepath.Join(modsDir, "Rebalance", "regulation.bin.disabled"),
	))

	snap, diff := reg.Refresh()
	assert.Equal(t, []string{"Rebalance"}, diff.Changed)
	mod, _ := snap.Lookup("Rebalance")
	assert.False(t, mod.RegulationActive)
}
