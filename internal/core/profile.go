package core

import (
	"fmt"
	"os"
	"time"

	"m3m/internal/domain"
	"m3m/internal/storage/config"
	"m3m/internal/storage/profiledoc"
)

// ProfileStore manages the named profile documents of each game: creation,
// deletion, renaming, duplication and the active-profile pointer. Every
// mutation persists synchronously before returning, so a crash immediately
// after a call never loses the change.
type ProfileStore struct {
	settings *config.Store
	paths    config.Paths
}

// NewProfileStore creates a profile store over the given settings store.
func NewProfileStore(settings *config.Store) *ProfileStore {
	return &ProfileStore{
		settings: settings,
		paths:    config.Paths{Root: settings.Root()},
	}
}

// List returns the profiles registered for a game, in creation order.
func (p *ProfileStore) List(gameID string) ([]config.ProfileConfig, error) {
	s, err := p.settings.Load()
	if err != nil {
		return nil, err
	}
	return s.Profiles[gameID], nil
}

// Active returns the name of the game's active profile.
func (p *ProfileStore) Active(gameID string) (string, error) {
	s, err := p.settings.Load()
	if err != nil {
		return "", err
	}
	name, ok := s.ActiveProfiles[gameID]
	if !ok || name == "" {
		return "", fmt.Errorf("active profile for %s: %w", gameID, domain.ErrProfileNotFound)
	}
	return name, nil
}

// SetActive switches the game's active profile to an existing profile.
func (p *ProfileStore) SetActive(game domain.Game, name string) error {
	s, err := p.settings.Load()
	if err != nil {
		return err
	}
	if findProfile(s.Profiles[game.ID], name) < 0 {
		return fmt.Errorf("profile %s: %w", name, domain.ErrProfileNotFound)
	}
	s.ActiveProfiles[game.ID] = name
	return p.settings.Save(s)
}

// Create registers a new empty profile and writes its document to disk.
func (p *ProfileStore) Create(game domain.Game, name string) error {
	s, err := p.settings.Load()
	if err != nil {
		return err
	}
	if findProfile(s.Profiles[game.ID], name) >= 0 {
		return fmt.Errorf("profile %s: %w", name, domain.ErrProfileExists)
	}

	doc := profiledoc.NewDocument()
	doc.Supports = append(doc.Supports, profiledoc.Support{Game: game.ID})
	file := p.paths.ProfileFile(game, name)
	if err := config.WriteFileAtomic(file, profiledoc.Encode(doc), 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", name, err)
	}

	now := time.Now().UTC()
	s.Profiles[game.ID] = append(s.Profiles[game.ID], config.ProfileConfig{
		Name:      name,
		File:      file,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if s.ActiveProfiles[game.ID] == "" {
		s.ActiveProfiles[game.ID] = name
	}
	return p.settings.Save(s)
}

// Delete removes a profile and its document. The last remaining profile of a
// game cannot be deleted; if the active profile is deleted the first
// remaining one becomes active.
func (p *ProfileStore) Delete(game domain.Game, name string) error {
	s, err := p.settings.Load()
	if err != nil {
		return err
	}
	profiles := s.Profiles[game.ID]
	idx := findProfile(profiles, name)
	if idx < 0 {
		return fmt.Errorf("profile %s: %w", name, domain.ErrProfileNotFound)
	}
	if len(profiles) == 1 {
		return fmt.Errorf("profile %s: %w", name, domain.ErrLastProfile)
	}

	if err := os.Remove(p.paths.ProfileFile(game, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing profile %s: %w", name, err)
	}
	s.Profiles[game.ID] = append(profiles[:idx], profiles[idx+1:]...)
	if s.ActiveProfiles[game.ID] == name {
		s.ActiveProfiles[game.ID] = s.Profiles[game.ID][0].Name
	}
	return p.settings.Save(s)
}

// Rename changes a profile's name and moves its document.
func (p *ProfileStore) Rename(game domain.Game, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	s, err := p.settings.Load()
	if err != nil {
		return err
	}
	profiles := s.Profiles[game.ID]
	idx := findProfile(profiles, oldName)
	if idx < 0 {
		return fmt.Errorf("profile %s: %w", oldName, domain.ErrProfileNotFound)
	}
	if findProfile(profiles, newName) >= 0 {
		return fmt.Errorf("profile %s: %w", newName, domain.ErrProfileExists)
	}

	oldFile := p.paths.ProfileFile(game, oldName)
	newFile := p.paths.ProfileFile(game, newName)
	if err := os.Rename(oldFile, newFile); err != nil {
		return fmt.Errorf("renaming profile %s: %w", oldName, err)
	}
	profiles[idx].Name = newName
	profiles[idx].File = newFile
	profiles[idx].UpdatedAt = time.Now().UTC()
	if s.ActiveProfiles[game.ID] == oldName {
		s.ActiveProfiles[game.ID] = newName
	}
	return p.settings.Save(s)
}

// Duplicate copies an existing profile document under a new name.
func (p *ProfileStore) Duplicate(game domain.Game, srcName, dstName string) error {
	s, err := p.settings.Load()
	if err != nil {
		return err
	}
	profiles := s.Profiles[game.ID]
	if findProfile(profiles, srcName) < 0 {
		return fmt.Errorf("profile %s: %w", srcName, domain.ErrProfileNotFound)
	}
	if findProfile(profiles, dstName) >= 0 {
		return fmt.Errorf("profile %s: %w", dstName, domain.ErrProfileExists)
	}

	data, err := os.ReadFile(p.paths.ProfileFile(game, srcName))
	if err != nil {
		return fmt.Errorf("reading profile %s: %w", srcName, err)
	}
	dstFile := p.paths.ProfileFile(game, dstName)
	if err := config.WriteFileAtomic(dstFile, data, 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", dstName, err)
	}

	now := time.Now().UTC()
	s.Profiles[game.ID] = append(profiles, config.ProfileConfig{
		Name:      dstName,
		File:      dstFile,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return p.settings.Save(s)
}

// Load reads and decodes a profile's document. Entry-level problems the
// decoder recovered from are returned as warnings.
func (p *ProfileStore) Load(game domain.Game, name string) (*profiledoc.Document, []profiledoc.Warning, error) {
	s, err := p.settings.Load()
	if err != nil {
		return nil, nil, err
	}
	if findProfile(s.Profiles[game.ID], name) < 0 {
		return nil, nil, fmt.Errorf("profile %s: %w", name, domain.ErrProfileNotFound)
	}
	data, err := os.ReadFile(p.paths.ProfileFile(game, name))
	if err != nil {
		return nil, nil, fmt.Errorf("reading profile %s: %w", name, err)
	}
	return profiledoc.Decode(data)
}

// Save encodes and atomically writes a profile's document, bumping its
// modification timestamp.
func (p *ProfileStore) Save(game domain.Game, name string, doc *profiledoc.Document) error {
	s, err := p.settings.Load()
	if err != nil {
		return err
	}
	profiles := s.Profiles[game.ID]
	idx := findProfile(profiles, name)
	if idx < 0 {
		return fmt.Errorf("profile %s: %w", name, domain.ErrProfileNotFound)
	}
	if err := config.WriteFileAtomic(p.paths.ProfileFile(game, name), profiledoc.Encode(doc), 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", name, err)
	}
	profiles[idx].UpdatedAt = time.Now().UTC()
	return p.settings.Save(s)
}

func findProfile(profiles []config.ProfileConfig, name string) int {
	for i, pc := range profiles {
		if pc.Name == name {
			return i
		}
	}
	return -1
}
