// Package profiledoc reads and writes the .me3 profile document shared with
// the external mod-loading runtime. Decoding accepts every historical schema
// (v1 inline arrays, v2 [mods] dotted keys, legacy "source" package fields)
// and normalizes to the canonical form; encoding is deterministic so that a
// decode/encode cycle with no semantic change is byte-identical. Keys this
// engine does not model are preserved and round-tripped, since the runtime
// may define fields we do not know about.
package profiledoc

// Dependent is one entry of a load_before/load_after ordering constraint.
type Dependent struct {
	ID       string
	Optional bool
}

// Native describes a native module entry ([[natives]]).
type Native struct {
	Path        string
	Enabled     *bool
	Optional    *bool
	LoadEarly   *bool
	Initializer any // string, or nested table like {function = "..."} / {delay = {ms = N}}
	Finalizer   any
	Config      string
	LoadBefore  []Dependent
	LoadAfter   []Dependent
	Unknown     map[string]any
}

// Package describes a folder package entry ([[packages]]).
type Package struct {
	ID         string
	Path       string
	Enabled    *bool
	LoadBefore []Dependent
	LoadAfter  []Dependent
	Unknown    map[string]any
}

// Support declares a game the profile supports ([[supports]]).
type Support struct {
	Game string // Canonical slug
}

// GameSettings is the [game] table: per-profile launch options.
type GameSettings struct {
	Launch       string
	Savefile     string
	StartOnline  *bool
	DisableArxan *bool
	SkipLogos    *bool
	Unknown      map[string]any
}

func (g GameSettings) Empty() bool {
	return g.Launch == "" && g.Savefile == "" && g.StartOnline == nil &&
		g.DisableArxan == nil && g.SkipLogos == nil && len(g.Unknown) == 0
}

// Document is the canonical in-memory form of a profile document.
type Document struct {
	ProfileVersion string
	Game           GameSettings
	Natives        []Native
	Supports       []Support
	Packages       []Package
	Unknown        map[string]any // Unknown root keys, round-tripped verbatim
}

// NewDocument returns an empty canonical document.
func NewDocument() *Document {
	return &Document{ProfileVersion: "v1"}
}

// Warning is a non-fatal issue found while decoding, such as an entry
// skipped for lacking a path. The rest of the document is still usable.
type Warning struct {
	Key string
	Msg string
}

func (w Warning) String() string {
	if w.Key == "" {
		return w.Msg
	}
	return w.Key + ": " + w.Msg
}
