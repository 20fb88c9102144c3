package config

import (
	"path/filepath"

	"m3m/internal/domain"
)

// Paths derives the on-disk layout under the config root: one managed mods
// directory per game plus a profiles tree holding the .me3 documents.
type Paths struct {
	Root string
}

// ModsDir returns the managed mods directory for a game.
func (p Paths) ModsDir(g domain.Game) string {
	return filepath.Join(p.Root, g.ModsDirName)
}

// ProfileFile returns the path of a named profile's document.
func (p Paths) ProfileFile(g domain.Game, profileName string) string {
	return filepath.Join(p.Root, "profiles", g.ID, profileName+".me3")
}

// ProfilesDir returns the directory holding a game's profile documents.
func (p Paths) ProfilesDir(g domain.Game) string {
	return filepath.Join(p.Root, "profiles", g.ID)
}
