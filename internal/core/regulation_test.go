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

func TestRegulationGuard_Activate_SwitchesActive(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "Reg1", "regulation.bin"), "one")
	writeFile(t, filepath.Join(modsDir, "Reg2", "regulation.bin.disabled"), "two")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	snap := reg.Scan()

	guard := core.NewRegulationGuard()
	require.NoError(t, guard.Activate(snap.List(), "Reg2"))

	// Only Reg2's file is live afterwards.
	assert.NoFileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin"))
	assert.FileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin.disabled"))
	assert.FileExists(t, filepath.Join(modsDir, "Reg2", "regulation.bin"))
	assert.NoFileExists(t, filepath.Join(modsDir, "Reg2", "regulation.bin.disabled"))

	snap = reg.Scan()
	active, ok := guard.ActiveRegulation(snap.List())
	require.True(t, ok)
	assert.Equal(t, "Reg2", active.ID)
}

func TestRegulationGuard_Activate_AlreadyActive(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "Reg1", "regulation.bin"), "one")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	snap := reg.Scan()

	guard := core.NewRegulationGuard()
	require.NoError(t, guard.Activate(snap.List(), "Reg1"))
	assert.FileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin"))
}

func TestRegulationGuard_Activate_UnknownMod(t *testing.T) {
	guard := core.NewRegulationGuard()
	err := guard.Activate(nil, "Ghost")
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestRegulationGuard_Activate_NotRegulation(t *testing.T) {
	guard := core.NewRegulationGuard()
	mods := []domain.Mod{{ID: "Overhaul", Kind: domain.KindPackage}}
	err := guard.Activate(mods, "Overhaul")
	assert.ErrorIs(t, err, domain.ErrNoRegulation)
}

func TestRegulationGuard_Activate_LostPayload(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "Reg1", "regulation.bin"), "one")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	snap := reg.Scan()

	// The payload disappears between scan and activation.
	require.NoError(t, os.Remove(filepath.Join(modsDir, "Reg1", "regulation.bin")))

	guard := core.NewRegulationGuard()
	err := guard.Activate(snap.List(), "Reg1")
	require.Error(t, err)

	var conflict *domain.RegulationConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Reg1", conflict.ModID)
	assert.ErrorIs(t, err, domain.ErrNoRegulation)
}

func TestRegulationGuard_DeactivateAll(t *testing.T) {
	modsDir := setupModsDir(t)
	writeFile(t, filepath.Join(modsDir, "Reg1", "regulation.bin"), "one")
	writeFile(t, filepath.Join(modsDir, "Reg2", "regulation.bin"), "two")

	reg := core.NewRegistry(testGame(), modsDir, nil)
	snap := reg.Scan()

	guard := core.NewRegulationGuard()
	require.NoError(t, guard.DeactivateAll(snap.List()))

	assert.NoFileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin"))
	assert.NoFileExists(t, filepath.Join(modsDir, "Reg2", "regulation.bin"))
	assert.FileExists(t, filepath.Join(modsDir, "Reg1", "regulation.bin.disabled"))
	assert.FileExists(t, filepath.Join(modsDir, "Reg2", "regulation.bin.disabled"))

	snap = reg.Scan()
	_, ok := guard.ActiveRegulation(snap.List())
	assert.False(t, ok)
}
