// Package config persists the manager's own settings: the game registry,
// tracked external mods, and the profile index. The profile documents
// themselves use the external runtime's format and live in profiledoc.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"m3m/internal/domain"
)

const settingsFileName = "manager_settings.yaml"

// GameConfig is the YAML representation of a game
type GameConfig struct {
	Name       string `yaml:"name"`
	ModsDir    string `yaml:"mods_dir"`
	Profile    string `yaml:"profile"`
	CliID      string `yaml:"cli_id"`
	Executable string `yaml:"executable"`
	ExePath    string `yaml:"exe_path,omitempty"`
}

// ProfileConfig is the YAML index entry for one profile. The enabled mods
// and launch settings live in the profile document the entry points at.
type ProfileConfig struct {
	Name      string    `yaml:"name"`
	File      string    `yaml:"file"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Settings is the full manager_settings.yaml structure
type Settings struct {
	Games           map[string]GameConfig      `yaml:"games"`
	GameOrder       []string                   `yaml:"game_order"`
	Profiles        map[string][]ProfileConfig `yaml:"profiles"`
	ActiveProfiles  map[string]string          `yaml:"active_profiles"`
	TrackedExternal map[string][]string        `yaml:"tracked_external_mods"`
}

// Store loads and saves Settings under a config root directory.
type Store struct {
	root string
}

// NewStore creates a settings store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the config root directory.
func (s *Store) Root() string { return s.root }

// Load reads settings from disk, seeding the built-in game set when no
// settings file exists yet.
func (s *Store) Load() (*Settings, error) {
	settings := &Settings{
		Games:           map[string]GameConfig{},
		Profiles:        map[string][]ProfileConfig{},
		ActiveProfiles:  map[string]string{},
		TrackedExternal: map[string][]string{},
	}

	data, err := os.ReadFile(filepath.Join(s.root, settingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			seedDefaults(settings)
			return settings, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	if settings.Games == nil {
		settings.Games = map[string]GameConfig{}
	}
	if settings.Profiles == nil {
		settings.Profiles = map[string][]ProfileConfig{}
	}
	if settings.ActiveProfiles == nil {
		settings.ActiveProfiles = map[string]string{}
	}
	if settings.TrackedExternal == nil {
		settings.TrackedExternal = map[string][]string{}
	}
	if len(settings.Games) == 0 {
		seedDefaults(settings)
	}
	pruneGameOrder(settings)

	return settings, nil
}

// Save writes settings to disk atomically.
func (s *Store) Save(settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	if err := WriteFileAtomic(filepath.Join(s.root, settingsFileName), data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func seedDefaults(settings *Settings) {
	for _, g := range domain.DefaultGames() {
		settings.Games[g.ID] = GameConfig{
			Name:       g.Name,
			ModsDir:    g.ModsDirName,
			Profile:    g.ProfileName,
			CliID:      g.CliID,
			Executable: g.Executable,
		}
		settings.GameOrder = append(settings.GameOrder, g.ID)
	}
}

// pruneGameOrder drops ordering entries for removed games and appends any
// game missing from the order, preserving user arrangement otherwise.
func pruneGameOrder(settings *Settings) {
	seen := map[string]bool{}
	var order []string
	for _, id := range settings.GameOrder {
		if _, ok := settings.Games[id]; ok && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	var missing []string
	for id := range settings.Games {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	// Deterministic append for games added outside the order list
	sort.Strings(missing)
	settings.GameOrder = append(order, missing...)
}

// Game converts a stored game config to its domain form.
func (c GameConfig) Game(id string) domain.Game {
	return domain.Game{
		ID:          id,
		Name:        c.Name,
		ModsDirName: c.ModsDir,
		ProfileName: c.Profile,
		CliID:       c.CliID,
		Executable:  c.Executable,
		ExePath:     c.ExePath,
	}
}

// FromGame converts a domain game to its stored form.
func FromGame(g domain.Game) GameConfig {
	return GameConfig{
		Name:       g.Name,
		ModsDir:    g.ModsDirName,
		Profile:    g.ProfileName,
		CliID:      g.CliID,
		Executable: g.Executable,
		ExePath:    g.ExePath,
	}
}
