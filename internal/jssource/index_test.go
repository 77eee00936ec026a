package jssource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/autojs/internal/jsdoc"
)

func testIndex() *Index {
	ix := NewIndex()
	ix.Add(
		&Symbol{Name: "linkDensity", Longname: "linkDensity", Kind: KindFunction, File: "a.js", Line: 1},
		&Symbol{Name: "ContainingClass", Longname: "ContainingClass", Kind: KindClass, File: "a.js", Line: 10},
		&Symbol{Name: "someMethod", Longname: "ContainingClass#someMethod", MemberOf: "ContainingClass", Scope: ScopeInstance, File: "a.js", Line: 20},
		&Symbol{Name: "create", Longname: "ContainingClass.create", MemberOf: "ContainingClass", Scope: ScopeStatic, File: "a.js", Line: 15},
		&Symbol{Name: "draw", Longname: "Shape#draw", MemberOf: "Shape", Scope: ScopeInstance, File: "b.js", Line: 3},
		&Symbol{Name: "draw", Longname: "Sprite#draw", MemberOf: "Sprite", Scope: ScopeInstance, File: "b.js", Line: 9},
	)
	return ix
}

func TestIndexLookup(t *testing.T) {
	ix := testIndex()

	tests := []struct {
		name string
		path string
		want string
	}{
		{"exact", "ContainingClass#someMethod", "ContainingClass#someMethod"},
		{"dotted instance", "ContainingClass.someMethod", "ContainingClass#someMethod"},
		{"hash static", "ContainingClass#create", "ContainingClass.create"},
		{"unique suffix", "someMethod", "ContainingClass#someMethod"},
		{"surrounding space", "  linkDensity ", "linkDensity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, err := ix.Lookup(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sym.Longname)
		})
	}
}

func TestIndexLookup_NotFound(t *testing.T) {
	ix := testIndex()

	for _, path := range []string{"missing", "", "Density"} {
		_, err := ix.Lookup(path)
		assert.True(t, errors.Is(err, ErrNotFound), "path %q: %v", path, err)
	}
}

func TestIndexLookup_Ambiguous(t *testing.T) {
	ix := testIndex()

	_, err := ix.Lookup("draw")
	require.Error(t, err)

	var amb *AmbiguousError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, []string{"Shape#draw", "Sprite#draw"}, amb.Candidates)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestIndexMembers(t *testing.T) {
	ix := testIndex()

	var names []string
	for _, m := range ix.Members("ContainingClass") {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"create", "someMethod"}, names)
	assert.Empty(t, ix.Members("linkDensity"))
}

func TestIndexAdd_DocumentedWins(t *testing.T) {
	ix := NewIndex()
	bare := &Symbol{Name: "f", Longname: "f"}
	documented := &Symbol{Name: "f", Longname: "f", Comment: &jsdoc.Comment{Description: "Doc."}}
	later := &Symbol{Name: "f", Longname: "f", Comment: &jsdoc.Comment{Description: "Later."}}

	ix.Add(bare, documented, later)

	require.Equal(t, 1, ix.Len())
	sym, err := ix.Lookup("f")
	require.NoError(t, err)
	assert.Same(t, documented, sym)
	assert.Same(t, documented, ix.Symbols()[0])
}

func TestDotted(t *testing.T) {
	assert.Equal(t, "ContainingClass.someMethod", Dotted("ContainingClass#someMethod"))
	assert.Equal(t, "linkDensity", Dotted("linkDensity"))
}
