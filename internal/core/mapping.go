package core

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"m3m/internal/domain"
	"m3m/internal/storage/profiledoc"
)

// Mapping between profile documents and the mod identity space. A document
// references internal mods as "<mods-dir-name>/<relative-id>" and external
// mods by absolute path; the registry keys internal mods by their relative
// ID and external ones by normalized absolute path.

// ModIDFromDocPath derives the registry identity of a document entry.
func ModIDFromDocPath(game domain.Game, docPath string) string {
	p := domain.NormalizePath(docPath)
	if rest, ok := strings.CutPrefix(p, game.ModsDirName+"/"); ok {
		return rest
	}
	return p
}

// DocPathForMod derives the document path that references a mod.
func DocPathForMod(game domain.Game, m domain.Mod) string {
	if m.External {
		return domain.NormalizePath(m.Path)
	}
	return path.Join(game.ModsDirName, m.ID)
}

// ProfileFromDocument projects a decoded document onto the current mod set.
// The enabled sequence lists natives in document order, then packages in
// document order. Entries whose mod is absent from the snapshot are kept and
// flagged missing rather than dropped, so a temporarily unplugged drive or a
// mid-rename folder never silently rewrites the profile.
func ProfileFromDocument(game domain.Game, name string, doc *profiledoc.Document, snap Snapshot) domain.Profile {
	prof := domain.Profile{GameID: game.ID, Name: name}
	for _, n := range doc.Natives {
		if !entryEnabled(n.Enabled) {
			continue
		}
		id := ModIDFromDocPath(game, n.Path)
		_, ok := snap.Lookup(id)
		prof.Enabled = append(prof.Enabled, domain.EnabledMod{ModID: id, Missing: !ok})
	}
	for _, pkg := range doc.Packages {
		if !entryEnabled(pkg.Enabled) {
			continue
		}
		id := ModIDFromDocPath(game, pkg.Path)
		_, ok := snap.Lookup(id)
		prof.Enabled = append(prof.Enabled, domain.EnabledMod{ModID: id, Missing: !ok})
	}
	prof.Settings = domain.ProfileSettings{
		Savefile:     doc.Game.Savefile,
		StartOnline:  boolValue(doc.Game.StartOnline),
		DisableArxan: boolValue(doc.Game.DisableArxan),
		SkipLogos:    boolValue(doc.Game.SkipLogos),
	}
	return prof
}

// EnabledMods resolves the document's enabled entries against the snapshot
// and overlays the per-entry load flags and dependency edges that only the
// document knows. Missing mods are excluded; callers that need them use
// ProfileFromDocument.
func EnabledMods(game domain.Game, doc *profiledoc.Document, snap Snapshot) []domain.Mod {
	var mods []domain.Mod
	for _, n := range doc.Natives {
		if !entryEnabled(n.Enabled) {
			continue
		}
		m, ok := snap.Lookup(ModIDFromDocPath(game, n.Path))
		if !ok {
			continue
		}
		m.LoadEarly = boolValue(n.LoadEarly)
		m.Dependencies = dependentIDs(game, n.LoadAfter)
		mods = append(mods, m)
	}
	for _, pkg := range doc.Packages {
		if !entryEnabled(pkg.Enabled) {
			continue
		}
		m, ok := snap.Lookup(ModIDFromDocPath(game, pkg.Path))
		if !ok {
			continue
		}
		m.Dependencies = dependentIDs(game, pkg.LoadAfter)
		mods = append(mods, m)
	}
	return mods
}

// EnableMod appends a document entry for the mod if none exists. Natives get
// a [[natives]] entry, packages and regulation mods a [[packages]] entry.
func EnableMod(game domain.Game, doc *profiledoc.Document, m domain.Mod) {
	docPath := DocPathForMod(game, m)
	if m.Kind == domain.KindNative {
		for i := range doc.Natives {
			if ModIDFromDocPath(game, doc.Natives[i].Path) == m.ID {
				doc.Natives[i].Enabled = nil
				return
			}
		}
		doc.Natives = append(doc.Natives, profiledoc.Native{Path: docPath})
		return
	}
	for i := range doc.Packages {
		if ModIDFromDocPath(game, doc.Packages[i].Path) == m.ID {
			doc.Packages[i].Enabled = nil
			return
		}
	}
	doc.Packages = append(doc.Packages, profiledoc.Package{ID: m.Name, Path: docPath})
}

// DisableMod removes the mod's entry from the document. Absence from the
// document is what disabled means, so unknown per-entry keys of a removed
// entry are gone for good; that matches how the format treats membership.
func DisableMod(game domain.Game, doc *profiledoc.Document, id string) bool {
	for i := range doc.Natives {
		if ModIDFromDocPath(game, doc.Natives[i].Path) == id {
			doc.Natives = append(doc.Natives[:i], doc.Natives[i+1:]...)
			return true
		}
	}
	for i := range doc.Packages {
		if ModIDFromDocPath(game, doc.Packages[i].Path) == id {
			doc.Packages = append(doc.Packages[:i], doc.Packages[i+1:]...)
			return true
		}
	}
	return false
}

// ReorderEntries rearranges the document's enabled sequence to follow ids.
// Natives and packages live in separate arrays, so each array is reordered
// independently; entries not named in ids keep their relative order after
// the named ones. An ID with no entry in the document is an error.
func ReorderEntries(game domain.Game, doc *profiledoc.Document, ids []string) error {
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}

	present := map[string]bool{}
	for _, n := range doc.Natives {
		present[ModIDFromDocPath(game, n.Path)] = true
	}
	for _, p := range doc.Packages {
		present[ModIDFromDocPath(game, p.Path)] = true
	}
	for _, id := range ids {
		if !present[id] {
			return fmt.Errorf("reorder: mod %s: %w", id, domain.ErrModNotFound)
		}
	}

	pos := func(id string, fallback int) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(ids) + fallback
	}
	sort.SliceStable(doc.Natives, func(i, j int) bool {
		return pos(ModIDFromDocPath(game, doc.Natives[i].Path), i) <
			pos(ModIDFromDocPath(game, doc.Natives[j].Path), j)
	})
	sort.SliceStable(doc.Packages, func(i, j int) bool {
		return pos(ModIDFromDocPath(game, doc.Packages[i].Path), i) <
			pos(ModIDFromDocPath(game, doc.Packages[j].Path), j)
	})
	return nil
}

// ApplySettings writes the profile's game settings into the document. The
// launch target and any unknown keys the document already carries stay
// untouched.
func ApplySettings(doc *profiledoc.Document, set domain.ProfileSettings) {
	doc.Game.Savefile = set.Savefile
	doc.Game.StartOnline = boolPtr(set.StartOnline)
	doc.Game.DisableArxan = boolPtr(set.DisableArxan)
	doc.Game.SkipLogos = boolPtr(set.SkipLogos)
}

func dependentIDs(game domain.Game, deps []profiledoc.Dependent) []string {
	if len(deps) == 0 {
		return nil
	}
	ids := make([]string, 0, len(deps))
	for _, d := range deps {
		ids = append(ids, ModIDFromDocPath(game, d.ID))
	}
	return ids
}

// entryEnabled reports whether a document entry counts as enabled. Presence
// implies enabled; only an explicit enabled = false opts out.
func entryEnabled(b *bool) bool {
	return b == nil || *b
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

func boolPtr(b bool) *bool {
	if !b {
		return nil
	}
	v := true
	return &v
}
