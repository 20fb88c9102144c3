package domain

import "time"

// EnabledMod is one entry in a profile's ordered enabled sequence.
// The entry is a weak reference: deleting the mod from disk marks it
// Missing but never removes it from the sequence, so transient disk
// state cannot destroy user intent.
type EnabledMod struct {
	ModID   string
	Missing bool
}

// ProfileSettings are the per-profile launch options handed to the
// external runtime through the profile document's [game] table.
type ProfileSettings struct {
	Savefile     string
	StartOnline  bool
	DisableArxan bool
	SkipLogos    bool
}

// Profile is a named, persisted set of enabled mods, their order and
// launch settings for one game.
type Profile struct {
	GameID   string
	Name     string
	Enabled  []EnabledMod // Load-order overrides layered on resolver output
	Settings ProfileSettings

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEnabled reports whether the profile enables the given mod.
func (p *Profile) IsEnabled(modID string) bool {
	for _, e := range p.Enabled {
		if e.ModID == modID {
			return true
		}
	}
	return false
}

// EnabledIDs returns the enabled sequence as a plain ID slice, preserving order.
func (p *Profile) EnabledIDs() []string {
	ids := make([]string, len(p.Enabled))
	for i, e := range p.Enabled {
		ids[i] = e.ModID
	}
	return ids
}

// Clone returns a deep copy so published snapshots stay immutable.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Enabled = make([]EnabledMod, len(p.Enabled))
	copy(cp.Enabled, p.Enabled)
	return &cp
}
