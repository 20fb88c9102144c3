package profiledoc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Encode serializes a document in canonical form. Output is a pure function
// of the document: key order, quoting and nesting are fixed, so re-encoding
// a decoded document with no semantic changes is byte-identical. The
// external runtime reads the same file, which is why stability matters.
func Encode(doc *Document) []byte {
	var b strings.Builder

	version := doc.ProfileVersion
	if version == "" {
		version = "v1"
	}
	fmt.Fprintf(&b, "profileVersion = %s\n", quoteBasic(version))

	// Empty sections stay visible as empty arrays; array-of-tables syntax
	// cannot express them.
	if len(doc.Natives) == 0 {
		b.WriteString("natives = []\n")
	}
	if len(doc.Supports) == 0 {
		b.WriteString("supports = []\n")
	}
	if len(doc.Packages) == 0 {
		b.WriteString("packages = []\n")
	}

	writeAssignments(&b, "", doc.Unknown)

	if !doc.Game.Empty() {
		b.WriteString("\n[game]\n")
		if doc.Game.Launch != "" {
			fmt.Fprintf(&b, "launch = %s\n", quoteBasic(doc.Game.Launch))
		}
		if doc.Game.Savefile != "" {
			fmt.Fprintf(&b, "savefile = %s\n", quoteBasic(doc.Game.Savefile))
		}
		if doc.Game.StartOnline != nil {
			fmt.Fprintf(&b, "start_online = %t\n", *doc.Game.StartOnline)
		}
		if doc.Game.DisableArxan != nil {
			fmt.Fprintf(&b, "disable_arxan = %t\n", *doc.Game.DisableArxan)
		}
		if doc.Game.SkipLogos != nil {
			fmt.Fprintf(&b, "skip_logos = %t\n", *doc.Game.SkipLogos)
		}
		writeAssignments(&b, "", doc.Game.Unknown)
	}

	for _, nat := range doc.Natives {
		b.WriteString("\n[[natives]]\n")
		fmt.Fprintf(&b, "path = %s\n", quotePath(nat.Path))
		if nat.Enabled != nil {
			fmt.Fprintf(&b, "enabled = %t\n", *nat.Enabled)
		}
		if nat.Optional != nil {
			fmt.Fprintf(&b, "optional = %t\n", *nat.Optional)
		}
		if nat.LoadEarly != nil {
			fmt.Fprintf(&b, "load_early = %t\n", *nat.LoadEarly)
		}
		if nat.Initializer != nil {
			fmt.Fprintf(&b, "initializer = %s\n", inlineValue(nat.Initializer))
		}
		if nat.Finalizer != nil {
			fmt.Fprintf(&b, "finalizer = %s\n", inlineValue(nat.Finalizer))
		}
		if nat.Config != "" {
			fmt.Fprintf(&b, "config = %s\n", quoteBasic(nat.Config))
		}
		writeDependents(&b, "load_before", nat.LoadBefore)
		writeDependents(&b, "load_after", nat.LoadAfter)
		writeAssignments(&b, "", nat.Unknown)
	}

	for _, sup := range doc.Supports {
		b.WriteString("\n[[supports]]\n")
		fmt.Fprintf(&b, "game = %s\n", quoteBasic(sup.Game))
	}

	for _, pkg := range doc.Packages {
		b.WriteString("\n[[packages]]\n")
		fmt.Fprintf(&b, "id = %s\n", quoteBasic(pkg.ID))
		if pkg.Path != "" {
			fmt.Fprintf(&b, "path = %s\n", quotePath(pkg.Path))
		}
		if pkg.Enabled != nil {
			fmt.Fprintf(&b, "enabled = %t\n", *pkg.Enabled)
		}
		writeDependents(&b, "load_before", pkg.LoadBefore)
		writeDependents(&b, "load_after", pkg.LoadAfter)
		writeAssignments(&b, "", pkg.Unknown)
	}

	return []byte(b.String())
}

func writeDependents(b *strings.Builder, key string, deps []Dependent) {
	if len(deps) == 0 {
		return
	}
	items := make([]string, len(deps))
	for i, d := range deps {
		items[i] = fmt.Sprintf("{id = %s, optional = %t}", quoteBasic(d.ID), d.Optional)
	}
	fmt.Fprintf(b, "%s = [%s]\n", key, strings.Join(items, ", "))
}

// writeAssignments emits unknown keys in sorted order. Nested tables are
// flattened to dotted-key form, the canonical nesting style of the document.
func writeAssignments(b *strings.Builder, prefix string, unknown map[string]any) {
	keys := make([]string, 0, len(unknown))
	for k := range unknown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		full := prefix + encodeKey(k)
		v := unknown[k]
		if tbl, ok := v.(map[string]any); ok && len(tbl) > 0 {
			writeAssignments(b, full+".", tbl)
			continue
		}
		fmt.Fprintf(b, "%s = %s\n", full, inlineValue(v))
	}
}

func inlineValue(v any) string {
	switch x := v.(type) {
	case string:
		return quoteBasic(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	// Datetime values are first-class in the format and stay unquoted.
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case toml.LocalDateTime:
		return x.String()
	case toml.LocalDate:
		return x.String()
	case toml.LocalTime:
		return x.String()
	case []any:
		items := make([]string, len(x))
		for i, item := range x {
			items[i] = inlineValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]string, len(keys))
		for i, k := range keys {
			items[i] = fmt.Sprintf("%s = %s", encodeKey(k), inlineValue(x[k]))
		}
		return "{" + strings.Join(items, ", ") + "}"
	default:
		return quoteBasic(fmt.Sprint(v))
	}
}

// quotePath renders filesystem paths as literal strings, the style the
// runtime's own examples use, falling back to basic quoting when the path
// itself contains a single quote.
func quotePath(s string) string {
	if strings.ContainsAny(s, "'\n") {
		return quoteBasic(s)
	}
	return "'" + s + "'"
}

func quoteBasic(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func encodeKey(k string) string {
	if k == "" {
		return `""`
	}
	for _, r := range k {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '_' && r != '-' {
			return quoteBasic(k)
		}
	}
	return k
}
