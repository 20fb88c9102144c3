package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"m3m/internal/domain"
)

// Snapshot is an immutable view of a game's mod set produced by one scan.
// Consumers read the last published snapshot; only Refresh replaces it.
type Snapshot struct {
	Mods     map[string]domain.Mod // keyed by mod ID
	Order    []string              // discovery order of IDs
	Warnings []domain.ScanWarning
}

// Lookup returns the mod with the given ID, if present.
func (s Snapshot) Lookup(id string) (domain.Mod, bool) {
	m, ok := s.Mods[id]
	return m, ok
}

// List returns the snapshot's mods in discovery order.
func (s Snapshot) List() []domain.Mod {
	mods := make([]domain.Mod, 0, len(s.Order))
	for _, id := range s.Order {
		mods = append(mods, s.Mods[id])
	}
	return mods
}

// RegulationMods returns the regulation-kind subset in discovery order.
func (s Snapshot) RegulationMods() []domain.Mod {
	var regs []domain.Mod
	for _, id := range s.Order {
		if m := s.Mods[id]; m.Kind == domain.KindRegulation {
			regs = append(regs, m)
		}
	}
	return regs
}

// Diff describes how one snapshot differs from the previous one, by mod ID.
type Diff struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty reports whether the diff carries no changes.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Registry discovers and tracks the mods of a single game: the managed mods
// directory plus any registered external package links. Scans never fail as
// a whole; unreadable entries are reported as warnings and skipped, since
// partial visibility beats total failure when the filesystem changes
// underneath us.
type Registry struct {
	game    domain.Game
	modsDir string

	mu       sync.RWMutex
	links    []domain.ExternalPackageLink
	snapshot Snapshot
}

// NewRegistry creates a registry for one game's mods directory.
func NewRegistry(game domain.Game, modsDir string, links []domain.ExternalPackageLink) *Registry {
	return &Registry{game: game, modsDir: modsDir, links: links}
}

// SetLinks replaces the registered external package links. The next scan
// picks them up.
func (r *Registry) SetLinks(links []domain.ExternalPackageLink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = links
}

// Snapshot returns the last published scan result.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Scan walks the mods directory one level deep plus every external link,
// classifies each entry and publishes the resulting snapshot. Scanning an
// unchanged directory twice yields an identical mod set.
func (r *Registry) Scan() Snapshot {
	r.mu.RLock()
	links := r.links
	r.mu.RUnlock()

	snap := Snapshot{Mods: map[string]domain.Mod{}}

	entries, err := os.ReadDir(r.modsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			snap.Warnings = append(snap.Warnings, domain.ScanWarning{Path: r.modsDir, Err: err})
		}
	}
	for _, entry := range entries {
		full := filepath.Join(r.modsDir, entry.Name())
		mod, warn, ok := classifyEntry(r.game.ID, r.modsDir, full, false)
		if warn != nil {
			snap.Warnings = append(snap.Warnings, *warn)
		}
		if ok {
			snap.Mods[mod.ID] = mod
			snap.Order = append(snap.Order, mod.ID)
		}
	}

	for _, link := range links {
		mod, warn, ok := classifyEntry(r.game.ID, r.modsDir, link.Path, true)
		if warn != nil {
			snap.Warnings = append(snap.Warnings, *warn)
		}
		if ok {
			if _, dup := snap.Mods[mod.ID]; dup {
				snap.Warnings = append(snap.Warnings, domain.ScanWarning{
					Path: link.Path,
					Err:  fmt.Errorf("duplicate mod identity %s", mod.ID),
				})
				continue
			}
			snap.Mods[mod.ID] = mod
			snap.Order = append(snap.Order, mod.ID)
		}
	}

	r.mu.Lock()
	r.snapshot = snap
	r.mu.Unlock()
	return snap
}

// Refresh re-scans and reports what changed relative to the previous
// snapshot, for the watcher and profile reconciliation to consume.
func (r *Registry) Refresh() (Snapshot, Diff) {
	old := r.Snapshot()
	snap := r.Scan()

	var diff Diff
	for _, id := range snap.Order {
		prev, ok := old.Mods[id]
		if !ok {
			diff.Added = append(diff.Added, id)
			continue
		}
		if modChanged(prev, snap.Mods[id]) {
			diff.Changed = append(diff.Changed, id)
		}
	}
	for _, id := range old.Order {
		if _, ok := snap.Mods[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}
	return snap, diff
}

func modChanged(a, b domain.Mod) bool {
	return a.Kind != b.Kind || a.Name != b.Name || a.External != b.External ||
		a.RegulationActive != b.RegulationActive || a.Path != b.Path
}

// classifyEntry inspects one top-level entry and classifies it by content
// signature: a recognized native-module file is a native, a directory with a
// regulation override file is a regulation mod, any other directory is a
// package. Other plain files are not mods and are skipped without warning.
func classifyEntry(gameID, modsDir, path string, external bool) (domain.Mod, *domain.ScanWarning, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Mod{}, &domain.ScanWarning{Path: path, Err: err}, false
	}

	id := modID(modsDir, path, external)
	name := filepath.Base(path)

	if !info.IsDir() {
		if strings.EqualFold(filepath.Ext(path), domain.NativeExt) {
			return domain.Mod{
				GameID:   gameID,
				ID:       id,
				Path:     path,
				Name:     strings.TrimSuffix(name, filepath.Ext(name)),
				Kind:     domain.KindNative,
				External: external,
			}, nil, true
		}
		return domain.Mod{}, nil, false
	}

	// Directory: the read itself can fail (permissions, broken mount); that
	// is a warning, not a scan abort.
	if _, err := os.ReadDir(path); err != nil {
		return domain.Mod{}, &domain.ScanWarning{Path: path, Err: err}, false
	}

	kind := domain.KindPackage
	active := false
	if fileExists(filepath.Join(path, domain.RegulationFile)) {
		kind = domain.KindRegulation
		active = true
	} else if fileExists(filepath.Join(path, domain.RegulationFileDisabled)) {
		kind = domain.KindRegulation
	}

	return domain.Mod{
		GameID:           gameID,
		ID:               id,
		Path:             path,
		Name:             name,
		Kind:             kind,
		External:         external,
		RegulationActive: active,
	}, nil, true
}

// modID derives the identity key: mods-root-relative for internal entries,
// normalized absolute path for external ones.
func modID(modsDir, path string, external bool) string {
	if external {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		return domain.NormalizePath(abs)
	}
	rel, err := filepath.Rel(modsDir, path)
	if err != nil {
		return domain.NormalizePath(path)
	}
	return domain.NormalizePath(rel)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
