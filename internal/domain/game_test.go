package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"m3m/internal/domain"
)

func TestCanonicalGameSlug(t *testing.T) {
	cases := map[string]string{
		"eldenring":      "eldenring",
		"Elden Ring":     "eldenring",
		"elden-ring":     "eldenring",
		"ELDEN RING":     "eldenring",
		"ds3":            "darksouls3",
		"Dark Souls 3":   "darksouls3",
		"Armored Core 6": "armoredcore6",
		"Sekiro":         "sekiro",
		"nightreign":     "nightreign",
	}
	for input, want := range cases {
		assert.Equal(t, want, domain.CanonicalGameSlug(input), input)
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "mods/hook.dll", domain.NormalizePath(`mods\hook.dll`))
	assert.Equal(t, "mods/hook.dll", domain.NormalizePath("mods/hook.dll"))
}

func TestDefaultGames_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, g := range domain.DefaultGames() {
		assert.False(t, seen[g.ID], g.ID)
		seen[g.ID] = true
		assert.NotEmpty(t, g.ModsDirName)
		assert.NotEmpty(t, g.CliID)
		// Every default game's identifiers resolve back to itself.
		assert.Equal(t, g.ID, domain.CanonicalGameSlug(g.Name), g.ID)
		assert.Equal(t, g.ID, domain.CanonicalGameSlug(g.CliID), g.ID)
	}
}

func TestProfile_EnabledHelpers(t *testing.T) {
	p := &domain.Profile{
		Enabled: []domain.EnabledMod{
			{ModID: "hook.dll"},
			{ModID: "Overhaul", Missing: true},
		},
	}

	assert.True(t, p.IsEnabled("hook.dll"))
	assert.False(t, p.IsEnabled("Ghost"))
	assert.Equal(t, []string{"hook.dll", "Overhaul"}, p.EnabledIDs())

	clone := p.Clone()
	clone.Enabled[0].ModID = "other"
	assert.Equal(t, "hook.dll", p.Enabled[0].ModID)
}
