package render

import (
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/example/autojs/internal/autodoc"
	"github.com/example/autojs/internal/jssource"
)

// RST renders Sphinx JavaScript-domain directives, so the output can be fed
// to a regular Sphinx build.
type RST struct{}

func (RST) Extension() string { return "rst" }

func (r RST) Render(w io.Writer, page *autodoc.Page) error {
	return writeBlocks(w, r.blocks(page.Blocks, 0))
}

func (r RST) blocks(blocks []autodoc.Block, indent int) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case autodoc.BlockParagraph:
			out = append(out, indentLines(b.Text, indent))
		case autodoc.BlockBullet:
			out = append(out, indentLines("* "+strings.ReplaceAll(b.Text, "\n", "\n  "), indent))
		case autodoc.BlockTitle:
			out = append(out, indentLines(b.Text+"\n"+strings.Repeat(string(b.Underline), utf8.RuneCountInString(b.Text)), indent))
		case autodoc.BlockEntry:
			out = append(out, r.entry(b.Entry, indent))
		case autodoc.BlockDirective:
			d := b.Directive
			s := ".. " + d.Name + ":: " + d.Argument
			names := make([]string, 0, len(d.Options))
			for name := range d.Options {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				s += "\n   :" + name + ":"
				if v := d.Options[name]; v != "" {
					s += " " + v
				}
			}
			if len(d.Content) > 0 {
				s += "\n\n" + indentLines(strings.Join(d.Content, "\n"), indentStep)
			}
			out = append(out, indentLines(s, indent))
		}
	}
	return out
}

func (r RST) entry(e *autodoc.Entry, indent int) string {
	name := "js:function"
	if e.Kind == jssource.KindClass {
		name = "js:class"
	}
	body := indent + indentStep
	parts := []string{pad(indent) + ".. " + name + ":: " + e.Name + e.Signature()}

	for _, p := range e.Description {
		parts = append(parts, indentLines(p, body))
	}
	if e.Deprecated != nil {
		parts = append(parts, indentLines(strings.TrimSpace(".. deprecated::\n\n   "+*e.Deprecated), body))
	}

	var fields []string
	for _, p := range e.DocumentedParams() {
		f := ":param "
		if len(p.Types) > 0 {
			f += strings.Join(p.Types, "|") + " "
		}
		fields = append(fields, strings.TrimSpace(f+p.Name+": "+oneLine(p.Description)))
	}
	for _, t := range e.Throws {
		fields = append(fields, strings.TrimSpace(fieldWithType("throws", t)))
	}
	if e.Returns != nil {
		fields = append(fields, strings.TrimSpace(fieldWithType("returns", *e.Returns)))
	}
	if len(fields) > 0 {
		parts = append(parts, indentLines(strings.Join(fields, "\n"), body))
	}

	for _, ex := range e.Examples {
		parts = append(parts, indentLines(".. code-block:: javascript\n\n"+indentLines(ex, indentStep), body))
	}
	for _, s := range e.See {
		parts = append(parts, indentLines(".. seealso:: "+s, body))
	}
	parts = append(parts, r.blocks(e.Content, body)...)
	for _, m := range e.Members {
		parts = append(parts, r.entry(m, body))
	}
	return strings.Join(parts, "\n\n")
}

func fieldWithType(name string, f autodoc.Field) string {
	if len(f.Types) > 0 {
		name += " " + f.TypeString()
	}
	return ":" + name + ": " + oneLine(f.Description)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
