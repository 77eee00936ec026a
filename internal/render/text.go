package render

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/example/autojs/internal/autodoc"
)

// Text renders plain text in the layout of a Sphinx text build.
type Text struct {
	// Width is the column limit; zero means DefaultWidth.
	Width int
}

func (Text) Extension() string { return "txt" }

func (t Text) Render(w io.Writer, page *autodoc.Page) error {
	return writeBlocks(w, t.blocks(page.Blocks, 0))
}

func (t Text) width() int {
	if t.Width <= 0 {
		return DefaultWidth
	}
	return t.Width
}

func (t Text) blocks(blocks []autodoc.Block, indent int) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case autodoc.BlockParagraph:
			out = append(out, fill(b.Text, indent, t.width()))
		case autodoc.BlockBullet:
			out = append(out, t.bullet(b.Text, indent))
		case autodoc.BlockTitle:
			out = append(out, pad(indent)+b.Text+"\n"+pad(indent)+strings.Repeat(string(b.Underline), utf8.RuneCountInString(b.Text)))
		case autodoc.BlockEntry:
			out = append(out, t.entry(b.Entry, indent))
		case autodoc.BlockDirective:
			out = append(out, pad(indent)+".. "+b.Directive.Name+":: "+b.Directive.Argument)
		}
	}
	return out
}

func (t Text) bullet(text string, indent int) string {
	return hang(text, pad(indent)+"* ", pad(indent+2), t.width())
}

func (t Text) entry(e *autodoc.Entry, indent int) string {
	body := indent + indentStep
	parts := []string{pad(indent) + e.Heading()}

	for _, p := range e.Description {
		parts = append(parts, fill(p, body, t.width()))
	}
	if e.Deprecated != nil {
		note := "Deprecated."
		if *e.Deprecated != "" {
			note = "Deprecated: " + *e.Deprecated
		}
		parts = append(parts, fill(note, body, t.width()))
	}
	parts = append(parts, t.fields(e, body)...)
	if len(e.Examples) > 0 {
		var ex []string
		for _, example := range e.Examples {
			ex = append(ex, indentLines(example, body+indentStep))
		}
		parts = append(parts, pad(body)+"Example:\n\n"+strings.Join(ex, "\n\n"))
	}
	if len(e.See) > 0 {
		items := make([]string, len(e.See))
		for i, s := range e.See {
			items[i] = t.bullet(s, body+indentStep)
		}
		parts = append(parts, pad(body)+"See also:\n"+strings.Join(items, "\n\n"))
	}
	parts = append(parts, t.blocks(e.Content, body)...)
	for _, m := range e.Members {
		parts = append(parts, t.entry(m, body))
	}
	return strings.Join(parts, "\n\n")
}

func (t Text) fields(e *autodoc.Entry, indent int) []string {
	var out []string
	item := indent + indentStep

	if params := e.DocumentedParams(); len(params) > 0 {
		bullets := make([]string, len(params))
		for i, p := range params {
			s := "**" + p.Name + "**"
			if len(p.Types) > 0 {
				s += " (*" + strings.Join(p.Types, "|") + "*)"
			}
			if p.Description != "" {
				s += " -- " + p.Description
			}
			bullets[i] = t.bullet(s, item)
		}
		out = append(out, pad(indent)+"Arguments:\n"+strings.Join(bullets, "\n\n"))
	}

	switch len(e.Throws) {
	case 0:
	case 1:
		out = append(out, pad(indent)+"Throws:\n"+fill(typed(e.Throws[0]), item, t.width()))
	default:
		bullets := make([]string, len(e.Throws))
		for i, f := range e.Throws {
			bullets[i] = t.bullet(typed(f), item)
		}
		out = append(out, pad(indent)+"Throws:\n"+strings.Join(bullets, "\n\n"))
	}

	if e.Returns != nil {
		if s := typed(*e.Returns); s != "" {
			out = append(out, pad(indent)+"Returns:\n"+fill(s, item, t.width()))
		}
	}
	return out
}

// typed renders "**A|B** -- description", leaving out whichever half is
// missing.
func typed(f autodoc.Field) string {
	switch {
	case len(f.Types) == 0:
		return f.Description
	case f.Description == "":
		return "**" + f.TypeString() + "**"
	}
	return "**" + f.TypeString() + "** -- " + f.Description
}
