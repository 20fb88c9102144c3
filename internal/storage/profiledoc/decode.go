package profiledoc

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"m3m/internal/domain"
)

var (
	nativeKnownKeys = map[string]bool{
		"path": true, "enabled": true, "optional": true, "load_early": true,
		"initializer": true, "finalizer": true, "config": true,
		"load_before": true, "load_after": true,
	}
	packageKnownKeys = map[string]bool{
		"id": true, "path": true, "source": true, "enabled": true,
		"load_before": true, "load_after": true,
	}
	gameKnownKeys = map[string]bool{
		"launch": true, "savefile": true, "start_online": true,
		"disable_arxan": true, "skip_logos": true,
	}
	rootKnownKeys = map[string]bool{
		"profileVersion": true, "natives": true, "packages": true,
		"supports": true, "game": true, "mods": true,
	}
)

// Decode parses a profile document and normalizes it to canonical form.
// Structural errors (invalid TOML, wrongly typed sections) return a
// *domain.MalformedConfigError; entry-level problems become warnings.
func Decode(data []byte) (*Document, []Warning, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, _ := de.Position()
			return nil, nil, &domain.MalformedConfigError{Line: row, Msg: "invalid TOML", Err: err}
		}
		return nil, nil, &domain.MalformedConfigError{Msg: "invalid TOML", Err: err}
	}

	doc := NewDocument()
	var warns []Warning

	if v, ok := raw["profileVersion"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, nil, &domain.MalformedConfigError{Key: "profileVersion", Msg: "must be a string"}
		}
		doc.ProfileVersion = s
	}

	if v, ok := raw["game"]; ok {
		tbl, ok := v.(map[string]any)
		if !ok {
			return nil, nil, &domain.MalformedConfigError{Key: "game", Msg: "must be a table"}
		}
		warns = append(warns, decodeGameSettings(doc, tbl)...)
	}

	// v2 documents keep every mod in a flexible [mods] table. Normalize it
	// first: v1 sections in the same file are then merged on top.
	if v, ok := raw["mods"]; ok {
		tbl, ok := v.(map[string]any)
		if !ok {
			return nil, nil, &domain.MalformedConfigError{Key: "mods", Msg: "must be a table"}
		}
		warns = append(warns, decodeModsTable(doc, tbl)...)
	}

	if v, ok := raw["natives"]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, nil, &domain.MalformedConfigError{Key: "natives", Msg: "must be an array"}
		}
		for i, item := range list {
			nat, w, ok := decodeNative(fmt.Sprintf("natives[%d]", i), item)
			warns = append(warns, w...)
			if ok {
				doc.Natives = append(doc.Natives, nat)
			}
		}
	}

	if v, ok := raw["packages"]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, nil, &domain.MalformedConfigError{Key: "packages", Msg: "must be an array"}
		}
		for i, item := range list {
			pkg, w, ok := decodePackage(fmt.Sprintf("packages[%d]", i), item)
			warns = append(warns, w...)
			if ok {
				doc.Packages = append(doc.Packages, pkg)
			}
		}
	}

	if v, ok := raw["supports"]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, nil, &domain.MalformedConfigError{Key: "supports", Msg: "must be an array"}
		}
		for i, item := range list {
			switch s := item.(type) {
			case string:
				doc.Supports = append(doc.Supports, Support{Game: domain.CanonicalGameSlug(s)})
			case map[string]any:
				g, _ := s["game"].(string)
				if g == "" {
					warns = append(warns, Warning{Key: fmt.Sprintf("supports[%d]", i), Msg: "entry has no game, skipped"})
					continue
				}
				doc.Supports = append(doc.Supports, Support{Game: domain.CanonicalGameSlug(g)})
			default:
				warns = append(warns, Warning{Key: fmt.Sprintf("supports[%d]", i), Msg: "entry is not a table or string, skipped"})
			}
		}
	}

	for k, v := range raw {
		if rootKnownKeys[k] {
			continue
		}
		if doc.Unknown == nil {
			doc.Unknown = map[string]any{}
		}
		doc.Unknown[k] = v
	}

	return doc, warns, nil
}

// decodeGameSettings lifts known [game] keys. A nested table keyed by a game
// identifier is the deprecated per-game section form; it is upgraded in
// place and the slug recorded as the launch target.
func decodeGameSettings(doc *Document, tbl map[string]any) []Warning {
	var warns []Warning
	for k, v := range tbl {
		if gameKnownKeys[k] {
			switch k {
			case "launch":
				if s, ok := v.(string); ok {
					doc.Game.Launch = domain.CanonicalGameSlug(s)
				}
			case "savefile":
				if s, ok := v.(string); ok {
					doc.Game.Savefile = s
				}
			case "start_online":
				doc.Game.StartOnline = asBool(v)
			case "disable_arxan":
				doc.Game.DisableArxan = asBool(v)
			case "skip_logos":
				doc.Game.SkipLogos = asBool(v)
			}
			continue
		}
		if nested, ok := v.(map[string]any); ok && isLegacyGameSection(nested) {
			doc.Game.Launch = domain.CanonicalGameSlug(k)
			warns = append(warns, Warning{Key: "game." + k, Msg: "migrated legacy per-game section to canonical form"})
			for nk, nv := range nested {
				switch nk {
				case "savefile":
					if s, ok := nv.(string); ok {
						doc.Game.Savefile = s
					}
				case "start_online":
					doc.Game.StartOnline = asBool(nv)
				case "disable_arxan":
					doc.Game.DisableArxan = asBool(nv)
				case "skip_logos":
					doc.Game.SkipLogos = asBool(nv)
				}
			}
			continue
		}
		if doc.Game.Unknown == nil {
			doc.Game.Unknown = map[string]any{}
		}
		doc.Game.Unknown[k] = v
	}
	return warns
}

// isLegacyGameSection reports whether every key in the nested table is a
// recognized game setting, which is how deprecated [game."Elden Ring"]
// sections are told apart from genuinely unknown nested keys.
func isLegacyGameSection(tbl map[string]any) bool {
	if len(tbl) == 0 {
		return false
	}
	for k := range tbl {
		if !gameKnownKeys[k] || k == "launch" {
			return false
		}
	}
	return true
}

func decodeNative(key string, item any) (Native, []Warning, bool) {
	switch e := item.(type) {
	case string:
		return Native{Path: domain.NormalizePath(e)}, nil, true
	case map[string]any:
		p, _ := e["path"].(string)
		if p == "" {
			return Native{}, []Warning{{Key: key, Msg: "entry has no path, skipped"}}, false
		}
		nat := Native{Path: domain.NormalizePath(p)}
		nat.Enabled = asBool(e["enabled"])
		nat.Optional = asBool(e["optional"])
		nat.LoadEarly = asBool(e["load_early"])
		nat.Initializer = e["initializer"]
		nat.Finalizer = e["finalizer"]
		if c, ok := e["config"].(string); ok {
			nat.Config = c
		}
		nat.LoadBefore = parseDependents(e["load_before"])
		nat.LoadAfter = parseDependents(e["load_after"])
		for k, v := range e {
			if nativeKnownKeys[k] {
				continue
			}
			if nat.Unknown == nil {
				nat.Unknown = map[string]any{}
			}
			nat.Unknown[k] = v
		}
		return nat, nil, true
	default:
		return Native{}, []Warning{{Key: key, Msg: "entry is not a table or string, skipped"}}, false
	}
}

func decodePackage(key string, item any) (Package, []Warning, bool) {
	e, ok := item.(map[string]any)
	if !ok {
		return Package{}, []Warning{{Key: key, Msg: "entry is not a table, skipped"}}, false
	}
	var warns []Warning
	pkg := Package{}
	pkg.ID, _ = e["id"].(string)
	if p, ok := e["path"].(string); ok {
		pkg.Path = domain.NormalizePath(p)
	} else if src, ok := e["source"].(string); ok {
		// Deprecated field name, upgraded on the next encode.
		pkg.Path = domain.NormalizePath(src)
		warns = append(warns, Warning{Key: key, Msg: "migrated legacy source field to path"})
	}
	if pkg.ID == "" && pkg.Path != "" {
		pkg.ID = path.Base(pkg.Path)
	}
	if pkg.ID == "" {
		warns = append(warns, Warning{Key: key, Msg: "entry has neither id nor path, skipped"})
		return Package{}, warns, false
	}
	pkg.Enabled = asBool(e["enabled"])
	pkg.LoadBefore = parseDependents(e["load_before"])
	pkg.LoadAfter = parseDependents(e["load_after"])
	for k, v := range e {
		if packageKnownKeys[k] {
			continue
		}
		if pkg.Unknown == nil {
			pkg.Unknown = map[string]any{}
		}
		pkg.Unknown[k] = v
	}
	return pkg, warns, true
}

// decodeModsTable normalizes a v2 [mods] table. Keys are mod identifiers
// with either inline tables or dotted field paths ("my_dll.initializer.function");
// .dll paths classify as natives, everything else as packages.
func decodeModsTable(doc *Document, tbl map[string]any) []Warning {
	var warns []Warning
	accum := map[string]map[string]any{}
	for key, val := range tbl {
		ident := key
		rest := ""
		if i := strings.IndexByte(key, '.'); i >= 0 {
			ident, rest = key[:i], key[i+1:]
		}
		entry := accum[ident]
		if entry == nil {
			entry = map[string]any{}
			accum[ident] = entry
		}
		if rest != "" {
			assignDotted(entry, rest, val)
			continue
		}
		nested, ok := val.(map[string]any)
		if !ok {
			warns = append(warns, Warning{Key: "mods." + key, Msg: "entry is not a table, skipped"})
			continue
		}
		for k, v := range nested {
			if strings.IndexByte(k, '.') >= 0 {
				assignDotted(entry, k, v)
			} else {
				entry[k] = v
			}
		}
	}

	idents := make([]string, 0, len(accum))
	for ident := range accum {
		idents = append(idents, ident)
	}
	sort.Strings(idents)

	for _, ident := range idents {
		entry := accum[ident]
		p, _ := entry["path"].(string)
		if p == "" {
			warns = append(warns, Warning{Key: "mods." + ident, Msg: "entry has no path, skipped"})
			continue
		}
		if strings.HasSuffix(strings.ToLower(p), domain.NativeExt) {
			nat, w, ok := decodeNative("mods."+ident, any(entry))
			warns = append(warns, w...)
			if ok {
				doc.Natives = append(doc.Natives, nat)
			}
			continue
		}
		entry["id"] = ident
		pkg, w, ok := decodePackage("mods."+ident, any(entry))
		warns = append(warns, w...)
		if ok {
			doc.Packages = append(doc.Packages, pkg)
		}
	}
	return warns
}

// assignDotted writes a dotted key path like "initializer.delay.ms" into a
// nested map structure.
func assignDotted(target map[string]any, dotted string, value any) {
	parts := strings.Split(dotted, ".")
	current := target
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func parseDependents(v any) []Dependent {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var deps []Dependent
	for _, item := range list {
		switch e := item.(type) {
		case string:
			deps = append(deps, Dependent{ID: e})
		case map[string]any:
			id, _ := e["id"].(string)
			if id == "" {
				continue
			}
			d := Dependent{ID: id}
			if b := asBool(e["optional"]); b != nil {
				d.Optional = *b
			}
			deps = append(deps, d)
		}
	}
	return deps
}

func asBool(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}
