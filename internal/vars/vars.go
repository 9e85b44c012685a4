// Package vars implements the replacement table and {{NAME}} token expansion
// shared by every docvars component.
package vars

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// ErrInvalidName is returned when a table key cannot appear inside a token.
var ErrInvalidName = errors.New("invalid variable name")

var (
	tokenPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)
	namePattern  = regexp.MustCompile(`^\w+$`)
)

// ValidName reports whether name can appear inside a {{NAME}} token.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Table maps token names to their literal replacement values. A Table is
// immutable once constructed and safe for concurrent reads.
type Table struct {
	values map[string]string
}

// NewTable builds a Table from the given mapping. The map is copied, so later
// changes to it do not affect the table.
func NewTable(values map[string]string) (*Table, error) {
	t := &Table{values: make(map[string]string, len(values))}
	for name, value := range values {
		if !ValidName(name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		t.values[name] = value
	}
	return t, nil
}

// MustTable is like NewTable but panics on an invalid name.
func MustTable(values map[string]string) *Table {
	t, err := NewTable(values)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the value for name and whether it is defined.
func (t *Table) Lookup(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.values)
}

// Names returns the defined names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.values))
	for name := range t.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns a copy of the underlying mapping.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// Expand replaces every {{NAME}} token whose NAME is defined in the table.
// Unknown tokens are left as they are. Replacement values are not rescanned.
func (t *Table) Expand(s string) string {
	out, _ := t.ExpandCount(s)
	return out
}

// ExpandCount is Expand that also reports how many tokens were replaced.
func (t *Table) ExpandCount(s string) (string, int) {
	count := 0
	out := tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
		// match is "{{" + name + "}}"
		if v, ok := t.values[match[2:len(match)-2]]; ok {
			count++
			return v
		}
		return match
	})
	return out, count
}

// Tokens returns the names of all tokens in s in order of appearance,
// whether or not they are defined in any table.
func Tokens(s string) []string {
	matches := tokenPattern.FindAllStringSubmatch(s, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
