package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/autojs/internal/autodoc"
	"github.com/example/autojs/internal/directive"
	"github.com/example/autojs/internal/jssource"
)

var projectDir = filepath.Join("..", "..", "testdata", "project")

// pageFor resolves the single directive of a fixture docs file.
func pageFor(t *testing.T, name string) *autodoc.Page {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(projectDir, "code.js"))
	require.NoError(t, err)
	s, err := jssource.NewScanner(nil)
	require.NoError(t, err)
	symbols, err := s.ScanSource(context.Background(), "code.js", content)
	require.NoError(t, err)
	ix := jssource.NewIndex()
	ix.Add(symbols...)

	doc, err := directive.ParseFile(filepath.Join(projectDir, "docs", name+".rst"), name)
	require.NoError(t, err)
	d := doc.Directives()[0]

	path, _, err := directive.SplitArgument(d.Argument)
	require.NoError(t, err)
	sym, err := ix.Lookup(path)
	require.NoError(t, err)

	e := autodoc.FromSymbol(sym)
	require.NoError(t, autodoc.Apply(e, d))
	return &autodoc.Page{Name: name, Blocks: []autodoc.Block{{Kind: autodoc.BlockEntry, Entry: e}}}
}

func TestText_Golden(t *testing.T) {
	for _, name := range []string{
		"autofunction_minimal",
		"autofunction_explicit",
		"autofunction_short",
		"autofunction_long",
		"autoclass",
	} {
		t.Run(name, func(t *testing.T) {
			want, err := os.ReadFile(filepath.Join(projectDir, "golden", name+".txt"))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Text{}.Render(&buf, pageFor(t, name)))
			assert.Equal(t, string(want), buf.String())
		})
	}
}

func TestText_ProseAndFields(t *testing.T) {
	page := &autodoc.Page{Blocks: []autodoc.Block{
		{Kind: autodoc.BlockTitle, Text: "Guide", Underline: '='},
		{Kind: autodoc.BlockParagraph, Text: "Some\nintro."},
		{Kind: autodoc.BlockEntry, Entry: &autodoc.Entry{
			Name:   "f",
			Formal: []string{"a", "b"},
			Params: []autodoc.Param{
				{Name: "a", Types: []string{"string", "null"}, Documented: true},
				{Name: "b", Description: "The b.", Documented: true},
			},
			Throws: []autodoc.Field{
				{Types: []string{"TypeError"}, Description: "Bad type."},
				{Description: "Anything else."},
			},
			Returns: &autodoc.Field{Description: "Nothing useful."},
			Members: []*autodoc.Entry{{Name: "inner", Description: []string{"Nested."}}},
		}},
	}}

	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, page))
	assert.Equal(t, `Guide
=====

Some intro.

f(a, b)

   Arguments:
      * **a** (*string|null*)

      * **b** -- The b.

   Throws:
      * **TypeError** -- Bad type.

      * Anything else.

   Returns:
      Nothing useful.

   inner()

      Nested.
`, buf.String())
}

func TestRender_NonASCIITitleUnderline(t *testing.T) {
	page := &autodoc.Page{Blocks: []autodoc.Block{{Kind: autodoc.BlockTitle, Text: "Café", Underline: '-'}}}

	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, page))
	assert.Equal(t, "Café\n----\n", buf.String())

	buf.Reset()
	require.NoError(t, RST{}.Render(&buf, page))
	assert.Equal(t, "Café\n----\n", buf.String())
}

func TestText_Wraps(t *testing.T) {
	long := strings.Repeat("word ", 30)
	page := &autodoc.Page{Blocks: []autodoc.Block{
		{Kind: autodoc.BlockBullet, Text: long},
	}}

	var buf bytes.Buffer
	require.NoError(t, Text{Width: 30}.Render(&buf, page))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Greater(t, len(lines), 1)
	assert.True(t, strings.HasPrefix(lines[0], "* word"))
	for _, l := range lines[1:] {
		assert.True(t, strings.HasPrefix(l, "  word"), l)
		assert.LessOrEqual(t, len(l), 30)
	}
}

func TestRST_Entry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RST{}.Render(&buf, pageFor(t, "autofunction_minimal")))
	assert.Equal(t, `.. js:function:: linkDensity(node)

   Return the ratio of the inline text length of the links in an element to
   the inline text length of the entire element.

   :param Node node: Something of a single type
   :throws PartyError|FartyError: Something with multiple types
   :returns Number: What a thing
`, buf.String())

	buf.Reset()
	require.NoError(t, RST{}.Render(&buf, pageFor(t, "autoclass")))
	assert.True(t, strings.HasPrefix(buf.String(), ".. js:class:: ContainingClass(ho)\n"))
	assert.Contains(t, buf.String(), "   :param ho: A thing\n")
}

func TestMarkdown_Entry(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Markdown{}.Render(&buf, pageFor(t, "autofunction_explicit")))
	assert.Equal(t, "## `linkDensity2(snorko, borko[, forko])`\n\n"+
		"Return the ratio of the inline text length of the links in an element to the inline text length of the entire element.\n\n"+
		"**Arguments:**\n\n- `node` (*Node*): Something of a single type\n\n"+
		"**Throws:**\n\n- `PartyError|FartyError`: Something with multiple types\n\n"+
		"**Returns:** `Number`: What a thing\n\n"+
		"Things are \"neat\".\n\nOff the beat.\n\n- Sweet\n\n- Fleet\n", buf.String())
}

func TestMarkdown_TitleLevels(t *testing.T) {
	page := &autodoc.Page{Blocks: []autodoc.Block{
		{Kind: autodoc.BlockTitle, Text: "Top", Underline: '='},
		{Kind: autodoc.BlockTitle, Text: "Sub", Underline: '-'},
		{Kind: autodoc.BlockTitle, Text: "Again", Underline: '='},
	}}
	var buf bytes.Buffer
	require.NoError(t, Markdown{}.Render(&buf, page))
	assert.Equal(t, "# Top\n\n## Sub\n\n# Again\n", buf.String())
}

func TestNew(t *testing.T) {
	for name, ext := range map[string]string{"text": "txt", "rst": "rst", "markdown": "md"} {
		r, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, ext, r.Extension())
	}

	_, err := New("html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markdown, rst, text")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriteError(t *testing.T) {
	err := Text{}.Render(failingWriter{}, pageFor(t, "autofunction_short"))
	assert.EqualError(t, err, "disk full")
}

func TestRender_EmptyPage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text{}.Render(&buf, &autodoc.Page{}))
	assert.Empty(t, buf.String())
}
