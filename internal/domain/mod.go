package domain

import "strings"

// ModKind classifies a discovered mod by its on-disk shape
type ModKind int

const (
	KindNative     ModKind = iota // Single native module file (.dll)
	KindPackage                   // Directory of game content overrides
	KindRegulation                // Package carrying a regulation.bin override
)

func (k ModKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindPackage:
		return "package"
	case KindRegulation:
		return "regulation"
	default:
		return "unknown"
	}
}

// ModStatus is a mod's state as seen from a profile
type ModStatus int

const (
	StatusDisabled ModStatus = iota
	StatusEnabled
	StatusMissing // Enabled in a profile but no longer present on disk
)

func (s ModStatus) String() string {
	switch s {
	case StatusEnabled:
		return "enabled"
	case StatusMissing:
		return "missing"
	default:
		return "disabled"
	}
}

// NativeExt is the file extension recognized as a native module
const NativeExt = ".dll"

// Regulation override filenames inside a package directory
const (
	RegulationFile         = "regulation.bin"
	RegulationFileDisabled = "regulation.bin.disabled"
)

// NormalizePath converts a mod path to the forward-slash form used as its
// identity and in profile documents. Enable, disable and lookup must all go
// through this or internal and external callers disagree on identity.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// Mod is a unit of game content tracked by the registry. Identity is
// (GameID, ID) where ID is the normalized mods-root-relative path for
// internal mods and the normalized absolute path for external ones.
// Enable state is profile-scoped and never stored here.
type Mod struct {
	GameID   string
	ID       string // Normalized path, unique per game
	Path     string // Absolute filesystem path
	Name     string // Display name (file stem or folder name)
	Kind     ModKind
	External bool // Tracked via an external package link

	// Declared load hints, parsed from the profile document
	LoadEarly    bool
	Dependencies []string // IDs of mods this one must load after

	// Regulation state, meaningful when Kind == KindRegulation
	RegulationActive bool
}

// ScanWarning reports a single unreadable or invalid entry encountered
// during a registry scan. Warnings never abort the scan.
type ScanWarning struct {
	Path string
	Err  error
}

func (w ScanWarning) String() string {
	if w.Err == nil {
		return w.Path
	}
	return w.Path + ": " + w.Err.Error()
}

// ExternalPackageLink is a user-registered mod source outside the managed
// mods directory. Linked paths are scanned, ordered and regulation-checked
// exactly like internal mods.
type ExternalPackageLink struct {
	GameID string `yaml:"game_id"`
	Path   string `yaml:"path"` // Absolute, normalized
}
