package core

import (
	"fmt"
	"os"
	"path/filepath"

	"m3m/internal/domain"
)

// RegulationGuard enforces the single-active-regulation invariant: across a
// game's internal and external regulation mods, at most one may carry a live
// regulation override file at a time. Activation is transactional; if any
// rename fails the target is never activated, so the invariant cannot be
// weakened by a partial switch.
type RegulationGuard struct{}

// NewRegulationGuard creates a regulation guard.
func NewRegulationGuard() *RegulationGuard {
	return &RegulationGuard{}
}

// Activate makes targetID the sole active regulation mod among mods. Every
// other regulation mod is deactivated first; only when all of them are
// quiesced does the target's override file go live.
func (g *RegulationGuard) Activate(mods []domain.Mod, targetID string) error {
	var target *domain.Mod
	for i := range mods {
		if mods[i].ID == targetID {
			target = &mods[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("activate regulation %s: %w", targetID, domain.ErrModNotFound)
	}
	if target.Kind != domain.KindRegulation {
		return fmt.Errorf("activate regulation: %s: %w", targetID, domain.ErrNoRegulation)
	}

	for _, m := range mods {
		if m.Kind != domain.KindRegulation || m.ID == targetID {
			continue
		}
		if err := deactivate(m.Path); err != nil {
			return &domain.RegulationConflictError{GameID: m.GameID, ModID: m.ID, Cause: err}
		}
	}

	if err := activate(target.Path); err != nil {
		return &domain.RegulationConflictError{GameID: target.GameID, ModID: target.ID, Cause: err}
	}
	return nil
}

// DeactivateAll quiesces every regulation mod in the set. The first rename
// failure aborts the sweep.
func (g *RegulationGuard) DeactivateAll(mods []domain.Mod) error {
	for _, m := range mods {
		if m.Kind != domain.KindRegulation {
			continue
		}
		if err := deactivate(m.Path); err != nil {
			return &domain.RegulationConflictError{GameID: m.GameID, ModID: m.ID, Cause: err}
		}
	}
	return nil
}

// ActiveRegulation returns the currently active regulation mod, if any.
func (g *RegulationGuard) ActiveRegulation(mods []domain.Mod) (domain.Mod, bool) {
	for _, m := range mods {
		if m.Kind == domain.KindRegulation && m.RegulationActive {
			return m, true
		}
	}
	return domain.Mod{}, false
}

// activate renames the disabled override file into place. Already-active is
// a no-op; neither file present means the mod lost its regulation payload.
func activate(dir string) error {
	live := filepath.Join(dir, domain.RegulationFile)
	if fileExists(live) {
		return nil
	}
	disabled := filepath.Join(dir, domain.RegulationFileDisabled)
	if !fileExists(disabled) {
		return fmt.Errorf("%s: %w", dir, domain.ErrNoRegulation)
	}
	if err := os.Rename(disabled, live); err != nil {
		return fmt.Errorf("enabling regulation file: %w", err)
	}
	return nil
}

// deactivate renames a live override file out of the way. Missing live file
// is a no-op.
func deactivate(dir string) error {
	live := filepath.Join(dir, domain.RegulationFile)
	if !fileExists(live) {
		return nil
	}
	disabled := filepath.Join(dir, domain.RegulationFileDisabled)
	if err := os.Rename(live, disabled); err != nil {
		return fmt.Errorf("disabling regulation file: %w", err)
	}
	return nil
}
