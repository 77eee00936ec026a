package jssource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when no symbol matches a lookup path.
var ErrNotFound = errors.New("no JavaScript symbol found")

// AmbiguousError is returned when a lookup path matches several symbols.
type AmbiguousError struct {
	Path       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("path %q is ambiguous; it matches %s", e.Path, strings.Join(e.Candidates, ", "))
}

// Index holds scanned symbols keyed by longname.
type Index struct {
	byLongname map[string]*Symbol
	ordered    []*Symbol
}

// NewIndex allocates an empty index.
func NewIndex() *Index {
	return &Index{byLongname: map[string]*Symbol{}}
}

// Add records symbols. When a longname is seen twice the documented
// definition wins; between two documented ones, the first one is kept.
func (ix *Index) Add(symbols ...*Symbol) {
	for _, sym := range symbols {
		existing, ok := ix.byLongname[sym.Longname]
		if !ok {
			ix.byLongname[sym.Longname] = sym
			ix.ordered = append(ix.ordered, sym)
			continue
		}
		if !existing.Documented() && sym.Documented() {
			ix.byLongname[sym.Longname] = sym
			for i, s := range ix.ordered {
				if s == existing {
					ix.ordered[i] = sym
				}
			}
		}
	}
}

// Len returns the number of indexed symbols.
func (ix *Index) Len() int {
	return len(ix.ordered)
}

// Symbols returns all symbols in scan order.
func (ix *Index) Symbols() []*Symbol {
	out := make([]*Symbol, len(ix.ordered))
	copy(out, ix.ordered)
	return out
}

// Members returns the direct members of the given longname in source order.
func (ix *Index) Members(longname string) []*Symbol {
	var members []*Symbol
	for _, sym := range ix.ordered {
		if sym.MemberOf == longname {
			members = append(members, sym)
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].File != members[j].File {
			return members[i].File < members[j].File
		}
		return members[i].Line < members[j].Line
	})
	return members
}

// Lookup resolves a path to a symbol. Resolution tries, in order, the exact
// longname, the longname with "#" and "." treated alike, and finally a
// unique suffix match on a "." boundary.
func (ix *Index) Lookup(path string) (*Symbol, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if sym, ok := ix.byLongname[path]; ok {
		return sym, nil
	}

	want := Dotted(path)
	if sym, err := ix.unique(path, func(s *Symbol) bool { return Dotted(s.Longname) == want }); sym != nil || err != nil {
		return sym, err
	}
	if sym, err := ix.unique(path, func(s *Symbol) bool { return strings.HasSuffix(Dotted(s.Longname), "."+want) }); sym != nil || err != nil {
		return sym, err
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

func (ix *Index) unique(path string, match func(*Symbol) bool) (*Symbol, error) {
	var found []*Symbol
	for _, sym := range ix.ordered {
		if match(sym) {
			found = append(found, sym)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	}
	names := make([]string, len(found))
	for i, s := range found {
		names[i] = s.Longname
	}
	sort.Strings(names)
	return nil, &AmbiguousError{Path: path, Candidates: names}
}

// Dotted is the display form of a longname: ContainingClass#someMethod
// becomes ContainingClass.someMethod.
func Dotted(longname string) string {
	return strings.ReplaceAll(longname, "#", ".")
}
