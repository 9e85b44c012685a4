package script

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ziadkadry99/docvars/internal/vars"
)

// ErrNoTable is returned when a script has no MODELS object.
var ErrNoTable = errors.New("no MODELS table found")

var (
	tableStart = regexp.MustCompile(`\bMODELS\s*=\s*\{`)
	tableEnd   = regexp.MustCompile(`^(?:\s+|//[^\n]*|(?s:/\*.*?\*/))*\}`)
	tableEntry = regexp.MustCompile(`^(?:\s+|//[^\n]*|(?s:/\*.*?\*/))*` +
		`(?:(\w+)|"(\w+)"|'(\w+)')\s*:\s*` +
		`("(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|` + "`[^`$\\\\]*`" + `)\s*,?`)
)

// ExtractTable reads the NAME: "value" entries of the first MODELS = {...}
// object literal in src. Only string values are understood.
func ExtractTable(src []byte) (map[string]string, error) {
	loc := tableStart.FindIndex(src)
	if loc == nil {
		return nil, ErrNoTable
	}

	out := make(map[string]string)
	rest := src[loc[1]:]
	for {
		if tableEnd.Match(rest) {
			return out, nil
		}
		m := tableEntry.FindSubmatch(rest)
		if m == nil {
			offset := len(src) - len(rest)
			return nil, fmt.Errorf("unsupported MODELS entry at offset %d", offset)
		}
		name := string(m[1]) + string(m[2]) + string(m[3])
		value, err := unquote(string(m[4]))
		if err != nil {
			return nil, fmt.Errorf("value of %s: %w", name, err)
		}
		out[name] = value
		rest = rest[len(m[0]):]
	}
}

func unquote(lit string) (string, error) {
	inner := lit[1 : len(lit)-1]
	switch lit[0] {
	case '`':
		return inner, nil
	case '\'':
		inner = strings.ReplaceAll(inner, `\'`, `'`)
		inner = strings.ReplaceAll(inner, `"`, `\"`)
		lit = `"` + inner + `"`
	}
	return strconv.Unquote(lit)
}

// DriftKind classifies a difference between two tables.
type DriftKind string

const (
	// Missing: defined in the table but absent from the script.
	Missing DriftKind = "missing"
	// Extra: present in the script but not in the table.
	Extra DriftKind = "extra"
	// Changed: present in both with different values.
	Changed DriftKind = "changed"
)

// Drift is one per-name difference.
type Drift struct {
	Name  string
	Kind  DriftKind
	Want  string
	Found string
}

func (d Drift) String() string {
	switch d.Kind {
	case Missing:
		return fmt.Sprintf("%s: missing (want %q)", d.Name, d.Want)
	case Extra:
		return fmt.Sprintf("%s: extra (found %q)", d.Name, d.Found)
	default:
		return fmt.Sprintf("%s: changed (want %q, found %q)", d.Name, d.Want, d.Found)
	}
}

// Diff compares table against other, typically the result of ExtractTable,
// and returns the differences sorted by name.
func Diff(table *vars.Table, other map[string]string) []Drift {
	var drifts []Drift
	for _, name := range table.Names() {
		want, _ := table.Lookup(name)
		found, ok := other[name]
		switch {
		case !ok:
			drifts = append(drifts, Drift{Name: name, Kind: Missing, Want: want})
		case found != want:
			drifts = append(drifts, Drift{Name: name, Kind: Changed, Want: want, Found: found})
		}
	}
	for name, found := range other {
		if _, ok := table.Lookup(name); !ok {
			drifts = append(drifts, Drift{Name: name, Kind: Extra, Found: found})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Name < drifts[j].Name })
	return drifts
}
