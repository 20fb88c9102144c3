package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"m3m/internal/domain"
	"m3m/internal/storage/config"
	"m3m/internal/storage/profiledoc"
)

// defaultDebounce is how long a game's mods directory must stay quiet before
// a filesystem burst triggers one reconciliation.
const defaultDebounce = 500 * time.Millisecond

// Engine wires the manager together: the settings store, one registry per
// game, the profile store, the load-order resolver and the regulation
// guard. All mutating operations on a game serialize on that game's lock.
type Engine struct {
	log      *zap.Logger
	settings *config.Store
	paths    config.Paths
	profiles *ProfileStore
	resolver *Resolver
	guard    *RegulationGuard
	watcher  *Watcher

	mu         sync.Mutex
	registries map[string]*Registry
	locks      map[string]*sync.Mutex
	reconcile  chan string
}

// NewEngine builds an engine over the given settings store. Registries are
// created lazily per game; the watcher is started by Run.
func NewEngine(log *zap.Logger, settings *config.Store) (*Engine, error) {
	e := &Engine{
		log:        log,
		settings:   settings,
		paths:      config.Paths{Root: settings.Root()},
		profiles:   NewProfileStore(settings),
		resolver:   NewResolver(),
		guard:      NewRegulationGuard(),
		registries: map[string]*Registry{},
		locks:      map[string]*sync.Mutex{},
		reconcile:  make(chan string, 16),
	}
	w, err := NewWatcher(log, defaultDebounce, e.enqueueReconcile)
	if err != nil {
		return nil, err
	}
	e.watcher = w
	return e, nil
}

// Profiles returns the engine's profile store.
func (e *Engine) Profiles() *ProfileStore { return e.profiles }

// Paths returns the engine's path layout.
func (e *Engine) Paths() config.Paths { return e.paths }

// Games returns the configured games in display order.
func (e *Engine) Games() ([]domain.Game, error) {
	s, err := e.settings.Load()
	if err != nil {
		return nil, err
	}
	games := make([]domain.Game, 0, len(s.GameOrder))
	for _, id := range s.GameOrder {
		games = append(games, s.Games[id].Game(id))
	}
	return games, nil
}

// Game resolves a user-supplied game name or alias to its configuration.
func (e *Engine) Game(slug string) (domain.Game, error) {
	s, err := e.settings.Load()
	if err != nil {
		return domain.Game{}, err
	}
	id := domain.CanonicalGameSlug(slug)
	gc, ok := s.Games[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("game %q: %w", slug, domain.ErrGameNotFound)
	}
	return gc.Game(id), nil
}

// SetGameExecutable pins or clears a game's executable path override.
func (e *Engine) SetGameExecutable(game domain.Game, exePath string) error {
	s, err := e.settings.Load()
	if err != nil {
		return err
	}
	gc, ok := s.Games[game.ID]
	if !ok {
		return fmt.Errorf("game %s: %w", game.ID, domain.ErrGameNotFound)
	}
	gc.ExePath = exePath
	s.Games[game.ID] = gc
	return e.settings.Save(s)
}

// Registry returns the game's registry, scanning on first use.
func (e *Engine) Registry(game domain.Game) (*Registry, error) {
	e.mu.Lock()
	reg, ok := e.registries[game.ID]
	e.mu.Unlock()
	if ok {
		return reg, nil
	}

	s, err := e.settings.Load()
	if err != nil {
		return nil, err
	}
	links := externalLinks(game.ID, s.TrackedExternal[game.ID])
	reg = NewRegistry(game, e.paths.ModsDir(game), links)

	e.mu.Lock()
	if existing, ok := e.registries[game.ID]; ok {
		reg = existing
	} else {
		e.registries[game.ID] = reg
	}
	e.mu.Unlock()

	reg.Scan()
	return reg, nil
}

// Mods returns the game's current mod snapshot.
func (e *Engine) Mods(game domain.Game) (Snapshot, error) {
	reg, err := e.Registry(game)
	if err != nil {
		return Snapshot{}, err
	}
	return reg.Snapshot(), nil
}

// Refresh re-scans a game's mods and returns the snapshot with its diff.
func (e *Engine) Refresh(game domain.Game) (Snapshot, Diff, error) {
	reg, err := e.Registry(game)
	if err != nil {
		return Snapshot{}, Diff{}, err
	}
	snap, diff := reg.Refresh()
	return snap, diff, nil
}

// ActiveProfile loads the game's active profile projected onto the current
// mod set. Mods referenced by the profile but absent on disk come back
// flagged missing, with status decided by presence in the document.
func (e *Engine) ActiveProfile(game domain.Game) (domain.Profile, []profiledoc.Warning, error) {
	name, err := e.profiles.Active(game.ID)
	if err != nil {
		return domain.Profile{}, nil, err
	}
	return e.LoadProfile(game, name)
}

// LoadProfile loads a named profile projected onto the current mod set.
func (e *Engine) LoadProfile(game domain.Game, name string) (domain.Profile, []profiledoc.Warning, error) {
	doc, warns, err := e.profiles.Load(game, name)
	if err != nil {
		return domain.Profile{}, nil, err
	}
	snap, err := e.Mods(game)
	if err != nil {
		return domain.Profile{}, nil, err
	}
	return ProfileFromDocument(game, name, doc, snap), warns, nil
}

// ModStatus reports a mod's state under the named profile.
func (e *Engine) ModStatus(prof domain.Profile, id string) domain.ModStatus {
	for _, em := range prof.Enabled {
		if em.ModID != id {
			continue
		}
		if em.Missing {
			return domain.StatusMissing
		}
		return domain.StatusEnabled
	}
	return domain.StatusDisabled
}

// EnableMod adds a mod to the named profile. Enabling a regulation mod also
// makes it the sole active regulation override.
func (e *Engine) EnableMod(game domain.Game, profileName, modID string) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	snap, err := e.Mods(game)
	if err != nil {
		return err
	}
	mod, ok := snap.Lookup(modID)
	if !ok {
		return fmt.Errorf("mod %s: %w", modID, domain.ErrModNotFound)
	}

	doc, _, err := e.profiles.Load(game, profileName)
	if err != nil {
		return err
	}

	// Switch the override before touching the profile so a failed rename
	// never leaves the doc claiming an enabled but inactive regulation.
	if mod.Kind == domain.KindRegulation {
		if err := e.guard.Activate(snap.List(), modID); err != nil {
			return err
		}
		if reg, rerr := e.Registry(game); rerr == nil {
			reg.Scan()
		}
	}

	EnableMod(game, doc, mod)
	if err := e.profiles.Save(game, profileName, doc); err != nil {
		return err
	}
	e.log.Info("mod enabled", zap.String("game", game.ID), zap.String("profile", profileName), zap.String("mod", modID))
	return nil
}

// DisableMod removes a mod from the named profile. Disabling the active
// regulation mod also quiesces its override file.
func (e *Engine) DisableMod(game domain.Game, profileName, modID string) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	doc, _, err := e.profiles.Load(game, profileName)
	if err != nil {
		return err
	}
	if !DisableMod(game, doc, modID) {
		return fmt.Errorf("mod %s: %w", modID, domain.ErrModNotFound)
	}
	if err := e.profiles.Save(game, profileName, doc); err != nil {
		return err
	}

	snap, err := e.Mods(game)
	if err != nil {
		return err
	}
	if mod, ok := snap.Lookup(modID); ok && mod.Kind == domain.KindRegulation && mod.RegulationActive {
		if err := e.guard.DeactivateAll([]domain.Mod{mod}); err != nil {
			return err
		}
		if reg, rerr := e.Registry(game); rerr == nil {
			reg.Scan()
		}
	}
	e.log.Info("mod disabled", zap.String("game", game.ID), zap.String("profile", profileName), zap.String("mod", modID))
	return nil
}

// ActivateRegulation makes modID the game's only active regulation override.
func (e *Engine) ActivateRegulation(game domain.Game, modID string) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	reg, err := e.Registry(game)
	if err != nil {
		return err
	}
	if err := e.guard.Activate(reg.Snapshot().List(), modID); err != nil {
		return err
	}
	reg.Scan()
	return nil
}

// DeactivateRegulations quiesces every regulation override of the game.
func (e *Engine) DeactivateRegulations(game domain.Game) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	reg, err := e.Registry(game)
	if err != nil {
		return err
	}
	if err := e.guard.DeactivateAll(reg.Snapshot().List()); err != nil {
		return err
	}
	reg.Scan()
	return nil
}

// ActiveRegulation returns the game's active regulation mod, if any.
func (e *Engine) ActiveRegulation(game domain.Game) (domain.Mod, bool, error) {
	snap, err := e.Mods(game)
	if err != nil {
		return domain.Mod{}, false, err
	}
	m, ok := e.guard.ActiveRegulation(snap.List())
	return m, ok, nil
}

// UpdateSettings replaces the named profile's launch settings.
func (e *Engine) UpdateSettings(game domain.Game, profileName string, set domain.ProfileSettings) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	doc, _, err := e.profiles.Load(game, profileName)
	if err != nil {
		return err
	}
	ApplySettings(doc, set)
	return e.profiles.Save(game, profileName, doc)
}

// Reorder rearranges the named profile's enabled sequence to match ids and
// persists the result.
func (e *Engine) Reorder(game domain.Game, profileName string, ids []string) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	doc, _, err := e.profiles.Load(game, profileName)
	if err != nil {
		return err
	}
	if err := ReorderEntries(game, doc, ids); err != nil {
		return err
	}
	return e.profiles.Save(game, profileName, doc)
}

// LoadOrder computes the launch order for the named profile's enabled mods.
func (e *Engine) LoadOrder(game domain.Game, profileName string) ([]string, error) {
	doc, _, err := e.profiles.Load(game, profileName)
	if err != nil {
		return nil, err
	}
	snap, err := e.Mods(game)
	if err != nil {
		return nil, err
	}
	enabled := EnabledMods(game, doc, snap)
	explicit := make([]string, 0, len(enabled))
	for _, m := range enabled {
		explicit = append(explicit, m.ID)
	}
	known := func(id string) bool {
		_, ok := snap.Lookup(id)
		return ok
	}
	return e.resolver.Resolve(enabled, explicit, known)
}

// AddExternal registers a mod living outside the managed mods directory.
func (e *Engine) AddExternal(game domain.Game, path string) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	s, err := e.settings.Load()
	if err != nil {
		return err
	}
	norm := domain.NormalizePath(path)
	for _, existing := range s.TrackedExternal[game.ID] {
		if existing == norm {
			return nil
		}
	}
	s.TrackedExternal[game.ID] = append(s.TrackedExternal[game.ID], norm)
	sort.Strings(s.TrackedExternal[game.ID])
	if err := e.settings.Save(s); err != nil {
		return err
	}
	return e.refreshLinks(game, s.TrackedExternal[game.ID])
}

// RemoveExternal unregisters an external mod path.
func (e *Engine) RemoveExternal(game domain.Game, path string) error {
	unlock := e.lockGame(game.ID)
	defer unlock()

	s, err := e.settings.Load()
	if err != nil {
		return err
	}
	norm := domain.NormalizePath(path)
	tracked := s.TrackedExternal[game.ID]
	kept := tracked[:0]
	for _, existing := range tracked {
		if existing != norm {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(tracked) {
		return fmt.Errorf("external mod %s: %w", path, domain.ErrModNotFound)
	}
	s.TrackedExternal[game.ID] = kept
	if err := e.settings.Save(s); err != nil {
		return err
	}
	return e.refreshLinks(game, kept)
}

func (e *Engine) refreshLinks(game domain.Game, paths []string) error {
	reg, err := e.Registry(game)
	if err != nil {
		return err
	}
	reg.SetLinks(externalLinks(game.ID, paths))
	reg.Scan()
	return nil
}

// Watch starts observing a game's mods directory, its profile documents
// and the parent directories of its tracked external mods.
func (e *Engine) Watch(game domain.Game) error {
	modsDir := e.paths.ModsDir(game)
	if err := os.MkdirAll(modsDir, 0o755); err != nil {
		return fmt.Errorf("creating mods directory: %w", err)
	}
	if err := e.watcher.WatchGame(game.ID, modsDir); err != nil {
		return err
	}
	if err := e.watcher.WatchGame(game.ID, e.paths.ProfilesDir(game)); err != nil {
		e.log.Debug("profiles directory not watchable", zap.String("game", game.ID), zap.Error(err))
	}
	s, err := e.settings.Load()
	if err != nil {
		return err
	}
	for _, p := range s.TrackedExternal[game.ID] {
		parent := filepath.Dir(p)
		if err := e.watcher.WatchGame(game.ID, parent); err != nil {
			e.log.Debug("external parent not watchable", zap.String("dir", parent), zap.Error(err))
		}
	}
	return nil
}

// Run drives the watcher and the reconciliation queue until ctx is
// canceled.
func (e *Engine) Run(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case gameID := <-e.reconcile:
				e.reconcileGame(gameID)
			}
		}
	}()
	defer e.watcher.Close()
	return e.watcher.Run(ctx)
}

func (e *Engine) enqueueReconcile(gameID string) {
	select {
	case e.reconcile <- gameID:
	default:
		// Queue full means a reconcile for some game is already pending;
		// the next scan picks up everything anyway.
	}
}

func (e *Engine) reconcileGame(gameID string) {
	game, err := e.Game(gameID)
	if err != nil {
		e.log.Warn("reconcile for unknown game", zap.String("game", gameID))
		return
	}
	snap, diff, err := e.Refresh(game)
	if err != nil {
		e.log.Warn("reconcile failed", zap.String("game", gameID), zap.Error(err))
		return
	}
	if diff.Empty() {
		return
	}
	e.log.Info("mods changed on disk",
		zap.String("game", gameID),
		zap.Strings("added", diff.Added),
		zap.Strings("removed", diff.Removed),
		zap.Strings("changed", diff.Changed),
		zap.Int("total", len(snap.Order)),
	)
}

func (e *Engine) lockGame(gameID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[gameID] = lock
	}
	e.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func externalLinks(gameID string, paths []string) []domain.ExternalPackageLink {
	links := make([]domain.ExternalPackageLink, 0, len(paths))
	for _, p := range paths {
		links = append(links, domain.ExternalPackageLink{GameID: gameID, Path: p})
	}
	return links
}
