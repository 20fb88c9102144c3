package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrModNotFound     = errors.New("mod not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrLastProfile     = errors.New("cannot delete the last profile for a game")
	ErrNoRegulation    = errors.New("mod has no regulation override file")
)

// CycleError is returned when the enabled mods' dependency graph contains a
// cycle. Resolution produces no partial order; the user must break the cycle.
type CycleError struct {
	Cycle []string // Mod IDs participating in the cycle, in graph order
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// MissingDependencyError is returned when an enabled mod depends on a mod
// that is unknown or currently disabled. Dependencies on disabled mods are
// reported, never silently ignored.
type MissingDependencyError struct {
	ModID    string // The dependent mod
	DepID    string // The dependency that could not be satisfied
	Disabled bool   // True when the dependency exists but is not enabled
}

func (e *MissingDependencyError) Error() string {
	if e.Disabled {
		return fmt.Sprintf("mod %s depends on %s, which is disabled", e.ModID, e.DepID)
	}
	return fmt.Sprintf("mod %s requires missing dependency %s", e.ModID, e.DepID)
}

// RegulationConflictError is returned when a regulation activation cannot
// guarantee the at-most-one-active invariant. No override is newly
// activated when this is returned.
type RegulationConflictError struct {
	GameID string
	ModID  string // The activation target
	Cause  error  // The deactivation failure that aborted the transaction
}

func (e *RegulationConflictError) Error() string {
	return fmt.Sprintf("cannot activate regulation override %s for %s: %v", e.ModID, e.GameID, e.Cause)
}

func (e *RegulationConflictError) Unwrap() error { return e.Cause }

// MalformedConfigError is returned when a profile document is structurally
// invalid (as opposed to merely containing unknown keys, which round-trip).
// Key and Line give the user enough context to hand-fix the file.
type MalformedConfigError struct {
	Key  string // Offending key or section, when known
	Line int    // 1-based line, 0 when unknown
	Msg  string
	Err  error
}

func (e *MalformedConfigError) Error() string {
	var b strings.Builder
	b.WriteString("malformed profile document")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " (key %q)", e.Key)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedConfigError) Unwrap() error { return e.Err }
