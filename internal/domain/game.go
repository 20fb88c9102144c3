package domain

import "strings"

// Game represents one supported moddable game
type Game struct {
	ID          string // Stable slug, e.g. "eldenring"
	Name        string // Display name
	ModsDirName string // Managed mods directory name, e.g. "eldenring-mods"
	ProfileName string // Default profile document name, e.g. "eldenring-default.me3"
	CliID       string // Identifier passed to the external runtime
	Executable  string // Default game executable name
	ExePath     string // Optional custom executable override (absolute)
}

// DefaultGames returns the built-in game set seeded at first run.
// User-added games follow the same shape.
func DefaultGames() []Game {
	return []Game{
		{ID: "eldenring", Name: "Elden Ring", ModsDirName: "eldenring-mods", ProfileName: "eldenring-default.me3", CliID: "elden-ring", Executable: "eldenring.exe"},
		{ID: "nightreign", Name: "Nightreign", ModsDirName: "nightreign-mods", ProfileName: "nightreign-default.me3", CliID: "nightreign", Executable: "nightreign.exe"},
		{ID: "sekiro", Name: "Sekiro", ModsDirName: "sekiro-mods", ProfileName: "sekiro-default.me3", CliID: "sekiro", Executable: "sekiro.exe"},
		{ID: "darksouls3", Name: "Dark Souls 3", ModsDirName: "darksouls3-mods", ProfileName: "darksouls3-default.me3", CliID: "ds3", Executable: "DarkSoulsIII.exe"},
		{ID: "armoredcore6", Name: "Armored Core 6", ModsDirName: "armoredcore6-mods", ProfileName: "armoredcore6-default.me3", CliID: "armoredcore6", Executable: "armoredcore6.exe"},
	}
}

// gameSlugAliases maps legacy identifiers (display names, old CLI ids) to
// canonical slugs. Older profile documents used these forms.
var gameSlugAliases = map[string]string{
	"elden ring":     "eldenring",
	"elden-ring":     "eldenring",
	"ds3":            "darksouls3",
	"dark souls 3":   "darksouls3",
	"armoredcore6":   "armoredcore6",
	"armored core 6": "armoredcore6",
}

// CanonicalGameSlug normalizes any game identifier form found in profile
// documents to the canonical slug: known aliases are mapped directly,
// everything else is lowercased with non-alphanumerics stripped.
func CanonicalGameSlug(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if slug, ok := gameSlugAliases[key]; ok {
		return slug
	}
	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
